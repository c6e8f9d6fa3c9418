package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vigil/internal/inquiry"
	"vigil/internal/metric"
	"vigil/internal/monitor"
	"vigil/internal/transport/http/shared"
	dErrors "vigil/pkg/domain-errors"
)

type inquiryHandler struct {
	monitor *monitor.Service
	inquiry *inquiry.Service
	logger  *slog.Logger
}

func newInquiryHandler(m *monitor.Service, i *inquiry.Service, logger *slog.Logger) *inquiryHandler {
	return &inquiryHandler{monitor: m, inquiry: i, logger: logger}
}

func (h *inquiryHandler) Register(r chi.Router) {
	r.Post("/questions", h.handleSubmit)
	r.Get("/questions/entropy", h.handleEntropy)
}

type inquiryAssessmentResponse struct {
	metric.Report
	CurrentRate    float64  `json:"current_rate"`
	HistoricalRate float64  `json:"historical_rate"`
	Suggested      []string `json:"suggested,omitempty"`
}

func toInquiryResponse(a inquiry.Assessment) inquiryAssessmentResponse {
	return inquiryAssessmentResponse{
		Report:         a.Report,
		CurrentRate:    a.CurrentRate,
		HistoricalRate: a.HistoricalRate,
		Suggested:      a.Suggested,
	}
}

func (h *inquiryHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var q inquiry.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	assessment, err := h.monitor.SubmitQuestion(r.Context(), q)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toInquiryResponse(assessment))
}

func (h *inquiryHandler) handleEntropy(w http.ResponseWriter, r *http.Request) {
	domainKey := r.URL.Query().Get("domain")
	if domainKey == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "domain query parameter is required"))
		return
	}
	assessment, err := h.inquiry.Gap(r.Context(), domainKey)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toInquiryResponse(assessment))
}
