package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vigil/internal/metric"
	"vigil/internal/monitor"
	"vigil/internal/purpose"
	"vigil/internal/transport/http/shared"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

type purposeHandler struct {
	monitor *monitor.Service
	purpose *purpose.Service
	logger  *slog.Logger
}

func newPurposeHandler(m *monitor.Service, p *purpose.Service, logger *slog.Logger) *purposeHandler {
	return &purposeHandler{monitor: m, purpose: p, logger: logger}
}

func (h *purposeHandler) Register(r chi.Router) {
	r.Post("/purposes", h.handleDeclare)
	r.Post("/purposes/{id}/usage", h.handleTrackUsage)
	r.Get("/purposes/{id}/drift", h.handleDrift)
	r.Post("/purposes/{id}/recommit", h.handleRecommit)
}

type driftAssessmentResponse struct {
	metric.Report
	PurposeID          domain.PurposeID `json:"purpose_id"`
	Trend              purpose.Trend    `json:"trend"`
	State              purpose.State    `json:"state"`
	SemanticDivergence float64          `json:"semantic_divergence"`
	UsagePatternShift  float64          `json:"usage_pattern_shift"`
	EventCount         int              `json:"event_count"`
}

func toDriftResponse(a purpose.Assessment) driftAssessmentResponse {
	return driftAssessmentResponse{
		Report:             a.Report,
		PurposeID:          a.PurposeID,
		Trend:              a.Trend,
		State:              a.State,
		SemanticDivergence: a.SemanticDivergence,
		UsagePatternShift:  a.UsagePatternShift,
		EventCount:         a.EventCount,
	}
}

func (h *purposeHandler) handleDeclare(w http.ResponseWriter, r *http.Request) {
	var p purpose.SystemPurpose
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	declared, err := h.purpose.Declare(r.Context(), p)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, declared)
}

func (h *purposeHandler) handleTrackUsage(w http.ResponseWriter, r *http.Request) {
	id := domain.PurposeID(chi.URLParam(r, "id"))
	var event purpose.UsageEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	event.PurposeID = id
	assessment, err := h.monitor.TrackPurposeUsage(r.Context(), event)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toDriftResponse(assessment))
}

func (h *purposeHandler) handleDrift(w http.ResponseWriter, r *http.Request) {
	id := domain.PurposeID(chi.URLParam(r, "id"))
	assessment, err := h.purpose.Drift(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toDriftResponse(assessment))
}

func (h *purposeHandler) handleRecommit(w http.ResponseWriter, r *http.Request) {
	id := domain.PurposeID(chi.URLParam(r, "id"))
	var req struct {
		Statement string `json:"statement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	recommitted, err := h.purpose.Recommit(r.Context(), id, req.Statement)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, recommitted)
}
