package observers

// fatigueScore composes the four bucketed sub-scores into the 0-10 integer
// fatigue score.
func fatigueScore(auditsReviewed int, correctionRate, contradictionExposure, hoursSinceBreak float64) int {
	score := 0

	switch {
	case auditsReviewed > 20:
		score += 3
	case auditsReviewed > 10:
		score += 2
	case auditsReviewed > 5:
		score += 1
	}

	switch {
	case correctionRate > 0.5:
		score += 3
	case correctionRate > 0.25:
		score += 2
	case correctionRate > 0.1:
		score += 1
	}

	switch {
	case contradictionExposure > 0.7:
		score += 2
	case contradictionExposure > 0.4:
		score += 1
	}

	switch {
	case hoursSinceBreak > 48:
		score += 2
	case hoursSinceBreak > 24:
		score += 1
	}

	return score
}

// tierFor maps a fatigue score onto the derived risk tier.
func tierFor(score int, cfg Config) Tier {
	switch {
	case score >= cfg.CriticalThreshold:
		return TierCritical
	case score >= cfg.AlertThreshold:
		return TierHigh
	case score >= 4:
		return TierMedium
	default:
		return TierLow
	}
}
