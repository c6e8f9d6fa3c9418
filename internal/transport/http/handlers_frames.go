package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vigil/internal/frames"
	"vigil/internal/metric"
	"vigil/internal/monitor"
	"vigil/internal/transport/http/shared"
	dErrors "vigil/pkg/domain-errors"
)

type framesHandler struct {
	monitor *monitor.Service
	frames  *frames.Service
	logger  *slog.Logger
}

func newFramesHandler(m *monitor.Service, f *frames.Service, logger *slog.Logger) *framesHandler {
	return &framesHandler{monitor: m, frames: f, logger: logger}
}

func (h *framesHandler) Register(r chi.Router) {
	r.Post("/frames", h.handleSubmit)
	r.Get("/frames/dominance", h.handleDominance)
	r.Post("/frames/rotation/drain", h.handleRotationDrain)
}

// frameAssessmentResponse is the magnitude-only wire shape plus the layer's
// non-narrative extras.
type frameAssessmentResponse struct {
	metric.Report
	DominantFramework string  `json:"dominant_framework,omitempty"`
	TotalWeight       float64 `json:"total_weight"`
	WindowSize        int     `json:"window_size"`
}

func toFrameResponse(a frames.Assessment) frameAssessmentResponse {
	return frameAssessmentResponse{
		Report:            a.Report,
		DominantFramework: a.DominantFramework,
		TotalWeight:       a.TotalWeight,
		WindowSize:        a.WindowSize,
	}
}

func (h *framesHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var use frames.FrameUse
	if err := json.NewDecoder(r.Body).Decode(&use); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	assessment, err := h.monitor.SubmitFrame(r.Context(), use)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toFrameResponse(assessment))
}

func (h *framesHandler) handleDominance(w http.ResponseWriter, r *http.Request) {
	domainKey := r.URL.Query().Get("domain")
	if domainKey == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "domain query parameter is required"))
		return
	}
	assessment, err := h.frames.Dominance(r.Context(), domainKey)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toFrameResponse(assessment))
}

func (h *framesHandler) handleRotationDrain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Max int `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if req.Max <= 0 {
		req.Max = 10
	}
	suggestions := h.frames.Rotation().Drain(req.Max)
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}
