package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vigil/internal/alerting"
	"vigil/internal/metric"
	"vigil/internal/transport/http/shared"
	dErrors "vigil/pkg/domain-errors"
)

type alertsHandler struct {
	alerts *alerting.Engine
	logger *slog.Logger
}

func newAlertsHandler(alerts *alerting.Engine, logger *slog.Logger) *alertsHandler {
	return &alertsHandler{alerts: alerts, logger: logger}
}

func (h *alertsHandler) Register(r chi.Router) {
	r.Get("/alerts", h.handleList)
	r.Post("/alerts/{id}/resolve", h.handleResolve)
}

func (h *alertsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	layer := metric.Layer(r.URL.Query().Get("layer"))
	if layer != "" && !layer.IsValid() {
		shared.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "unknown layer %q", layer))
		return
	}
	alerts, err := h.alerts.List(r.Context(), layer)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
	})
}

func (h *alertsHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid alert id"))
		return
	}
	if err := h.alerts.Resolve(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
