// Package httptransport is the thin HTTP layer. Handlers delegate to the
// monitor facade and layer services without embedding business logic.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vigil/internal/alerting"
	"vigil/internal/frames"
	"vigil/internal/gate"
	"vigil/internal/inquiry"
	"vigil/internal/monitor"
	"vigil/internal/observers"
	"vigil/internal/outcomes"
	"vigil/internal/platform/metrics"
	"vigil/internal/platform/middleware"
	"vigil/internal/purpose"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Monitor   *monitor.Service
	Gate      *gate.Service
	Frames    *frames.Service
	Inquiry   *inquiry.Service
	Outcomes  *outcomes.Service
	Observers *observers.Service
	Purpose   *purpose.Service
	Alerts    *alerting.Engine

	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	JWTValidator middleware.JWTValidator
}

// NewRouter wires all endpoints. Everything except health and metrics sits
// behind authentication.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(d.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(d.JWTValidator, d.Logger))

		newFramesHandler(d.Monitor, d.Frames, d.Logger).Register(r)
		newInquiryHandler(d.Monitor, d.Inquiry, d.Logger).Register(r)
		newOutcomesHandler(d.Monitor, d.Outcomes, d.Logger).Register(r)
		newObserversHandler(d.Monitor, d.Observers, d.Logger).Register(r)
		newPurposeHandler(d.Monitor, d.Purpose, d.Logger).Register(r)
		newAlertsHandler(d.Alerts, d.Logger).Register(r)
		newSystemHandler(d.Monitor, d.Gate, d.Metrics, d.Logger).Register(r)
	})

	return r
}
