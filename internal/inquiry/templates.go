package inquiry

// Template questions by exact domain name. A canned stand-in for question
// suggestion: unknown domains fall back to the generic three.
var templates = map[string][]string{
	"budget": {
		"Which assumptions in this budget have not been revisited this cycle?",
		"Who loses access to resources under this allocation?",
		"What would falsify the projected savings?",
	},
	"hiring": {
		"Which candidate pools were never sourced for this role?",
		"What signal is the current rubric unable to capture?",
		"Who reviewed the rejection reasons this quarter?",
	},
	"procurement": {
		"Which incumbent vendors faced no competing bid?",
		"What switching cost estimate justifies the renewal?",
		"Who benefits from the contract term length?",
	},
	"policy": {
		"Which affected groups were not consulted?",
		"What evidence would trigger a rollback?",
		"How does enforcement differ across regions?",
	},
}

var genericTemplates = []string{
	"What evidence would change this decision?",
	"Who is not in the room that this decision affects?",
	"When was the underlying assumption last tested?",
}

// TemplateQuestions returns the canned questions for a domain, exact-match
// only, with the generic fallback for unknown domains.
func TemplateQuestions(domain string) []string {
	if qs, ok := templates[domain]; ok {
		out := make([]string, len(qs))
		copy(out, qs)
		return out
	}
	out := make([]string, len(genericTemplates))
	copy(out, genericTemplates)
	return out
}
