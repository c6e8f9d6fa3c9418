package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vigil/internal/gate"
	"vigil/internal/monitor"
	"vigil/internal/platform/metrics"
	"vigil/internal/transport/http/shared"
	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

type systemHandler struct {
	monitor *monitor.Service
	gate    *gate.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func newSystemHandler(m *monitor.Service, g *gate.Service, pm *metrics.Metrics, logger *slog.Logger) *systemHandler {
	return &systemHandler{monitor: m, gate: g, metrics: pm, logger: logger}
}

func (h *systemHandler) Register(r chi.Router) {
	r.Get("/resilience", h.handleResilience)
	r.Post("/audits/complete", h.handleCompleteAudit)
	r.Get("/gate/{id}/status", h.handleGateStatus)
}

func (h *systemHandler) handleResilience(w http.ResponseWriter, r *http.Request) {
	summary, err := h.monitor.Resilience(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.metrics.SetResilienceScore(summary.Score)
	shared.WriteJSON(w, http.StatusOK, summary)
}

func (h *systemHandler) handleCompleteAudit(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.CompleteAudit(r.Context()); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *systemHandler) handleGateStatus(w http.ResponseWriter, r *http.Request) {
	id := domain.ActorID(chi.URLParam(r, "id"))
	if id.IsEmpty() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "actor id is required"))
		return
	}
	inFlight, cooldown, err := h.gate.Status(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"in_flight": inFlight,
		"cooldown":  cooldown,
	})
}
