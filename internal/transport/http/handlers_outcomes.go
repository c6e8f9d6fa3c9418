package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vigil/internal/metric"
	"vigil/internal/monitor"
	"vigil/internal/outcomes"
	"vigil/internal/transport/http/shared"
	dErrors "vigil/pkg/domain-errors"
)

type outcomesHandler struct {
	monitor  *monitor.Service
	outcomes *outcomes.Service
	logger   *slog.Logger
}

func newOutcomesHandler(m *monitor.Service, o *outcomes.Service, logger *slog.Logger) *outcomesHandler {
	return &outcomesHandler{monitor: m, outcomes: o, logger: logger}
}

func (h *outcomesHandler) Register(r chi.Router) {
	r.Post("/outcomes", h.handleTrack)
	r.Get("/outcomes/risk", h.handleRisk)
}

type outcomeAssessmentResponse struct {
	metric.Report
	Beneficiary string  `json:"beneficiary"`
	Decisions   int     `json:"decisions"`
	AverageRisk float64 `json:"average_risk"`
	AverageLag  float64 `json:"average_lag_days"`
}

func toOutcomeResponse(a outcomes.Assessment) outcomeAssessmentResponse {
	return outcomeAssessmentResponse{
		Report:      a.Report,
		Beneficiary: a.Beneficiary,
		Decisions:   a.Decisions,
		AverageRisk: a.AverageRisk,
		AverageLag:  a.AverageLag,
	}
}

func (h *outcomesHandler) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req outcomes.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	outcome, assessment, err := h.monitor.TrackOutcome(r.Context(), req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"outcome":    outcome,
		"assessment": toOutcomeResponse(assessment),
	})
}

func (h *outcomesHandler) handleRisk(w http.ResponseWriter, r *http.Request) {
	beneficiary := r.URL.Query().Get("beneficiary")
	if beneficiary == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "beneficiary query parameter is required"))
		return
	}
	assessment, err := h.outcomes.BeneficiaryRisk(r.Context(), beneficiary)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toOutcomeResponse(assessment))
}
