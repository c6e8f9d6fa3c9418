package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vigil/internal/metric"
	"vigil/internal/monitor"
	"vigil/internal/observers"
	"vigil/internal/transport/http/shared"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

type observersHandler struct {
	monitor   *monitor.Service
	observers *observers.Service
	logger    *slog.Logger
}

func newObserversHandler(m *monitor.Service, o *observers.Service, logger *slog.Logger) *observersHandler {
	return &observersHandler{monitor: m, observers: o, logger: logger}
}

func (h *observersHandler) Register(r chi.Router) {
	r.Post("/observers/activity", h.handleActivity)
	r.Get("/observers/{id}/fatigue", h.handleFatigue)
	r.Post("/observers/redistribute", h.handleRedistribute)
}

type fatigueAssessmentResponse struct {
	metric.Report
	ObserverID domain.ActorID `json:"observer_id"`
	Score      int            `json:"score"`
	Tier       observers.Tier `json:"tier"`
}

func toFatigueResponse(a observers.Assessment) fatigueAssessmentResponse {
	return fatigueAssessmentResponse{
		Report:     a.Report,
		ObserverID: a.ObserverID,
		Score:      a.Score,
		Tier:       a.Tier,
	}
}

func (h *observersHandler) handleActivity(w http.ResponseWriter, r *http.Request) {
	var activity observers.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	assessment, err := h.monitor.RecordObserverActivity(r.Context(), activity)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toFatigueResponse(assessment))
}

func (h *observersHandler) handleFatigue(w http.ResponseWriter, r *http.Request) {
	id := domain.ActorID(chi.URLParam(r, "id"))
	if id.IsEmpty() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "observer id is required"))
		return
	}
	assessment, err := h.observers.Fatigue(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toFatigueResponse(assessment))
}

// handleRedistribute plans and applies a pending-audit redistribution. Only
// admins may trigger it.
func (h *observersHandler) handleRedistribute(w http.ResponseWriter, r *http.Request) {
	if requestcontext.Role(r.Context()) != domain.RoleAdmin {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "redistribution requires the admin role"))
		return
	}
	plan, err := h.observers.Redistribute(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"reassignments": plan,
	})
}
