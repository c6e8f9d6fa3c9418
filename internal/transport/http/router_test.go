package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vigil/internal/alerting"
	"vigil/internal/frames"
	"vigil/internal/gate"
	"vigil/internal/inquiry"
	jwttoken "vigil/internal/jwt_token"
	"vigil/internal/metric"
	"vigil/internal/monitor"
	"vigil/internal/observers"
	"vigil/internal/outcomes"
	"vigil/internal/purpose"
	"vigil/internal/registry"
	"vigil/internal/resilience"
	"vigil/pkg/domain"
)

func jsonProvenance() map[string]any {
	return map[string]any{
		"data_scope":    "observed",
		"evidence_type": "direct",
		"origin":        "meeting-minutes",
	}
}

type RouterSuite struct {
	suite.Suite
	handler  http.Handler
	gate     *gate.Service
	alerts   *alerting.Engine
	counters *gate.MemoryCounterStore

	analystToken  string
	adminToken    string
	observerToken string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.alerts, err = alerting.New(alerting.NewMemoryStore(), alerting.DefaultConfig(), alerting.WithLogger(logger))
	s.Require().NoError(err)

	framesSvc, err := frames.New(registry.NewMemoryStore[frames.FrameUse](), frames.DefaultConfig(),
		frames.WithLogger(logger), frames.WithAlerts(s.alerts))
	s.Require().NoError(err)
	inquirySvc, err := inquiry.New(registry.NewMemoryStore[inquiry.Question](), inquiry.DefaultConfig(),
		inquiry.WithLogger(logger), inquiry.WithAlerts(s.alerts))
	s.Require().NoError(err)
	outcomesSvc, err := outcomes.New(registry.NewMemoryStore[outcomes.LaggedOutcome](), outcomes.DefaultConfig(),
		outcomes.WithLogger(logger), outcomes.WithAlerts(s.alerts))
	s.Require().NoError(err)
	observersSvc, err := observers.New(observers.NewMemoryStore(), observers.DefaultConfig(),
		observers.WithLogger(logger), observers.WithAlerts(s.alerts))
	s.Require().NoError(err)
	purposeSvc, err := purpose.New(purpose.NewMemoryPurposeStore(), registry.NewMemoryStore[purpose.UsageEvent](),
		purpose.DefaultConfig(), purpose.WithLogger(logger), purpose.WithAlerts(s.alerts))
	s.Require().NoError(err)

	s.counters = gate.NewMemoryCounterStore()
	s.gate, err = gate.New(s.counters, gate.DefaultConfig(),
		gate.WithLogger(logger), gate.WithFatigueScorer(observersSvc))
	s.Require().NoError(err)

	agg, err := resilience.New(map[metric.Layer]resilience.Scorer{
		metric.LayerFrameworkDominance: framesSvc,
		metric.LayerQuestionEntropy:    inquirySvc,
		metric.LayerOutcomeRisk:        outcomesSvc,
		metric.LayerObserverFatigue:    observersSvc,
		metric.LayerPurposeDrift:       purposeSvc,
	}, resilience.DefaultConfig(), resilience.WithLogger(logger))
	s.Require().NoError(err)

	monitorSvc, err := monitor.New(s.gate, framesSvc, inquirySvc, outcomesSvc, observersSvc, purposeSvc, agg,
		monitor.WithLogger(logger))
	s.Require().NoError(err)

	jwtSvc := jwttoken.NewJWTService("router-test-key", "vigil", "vigil")
	s.analystToken = s.mintToken(jwtSvc, "analyst-1", domain.RoleAnalyst)
	s.adminToken = s.mintToken(jwtSvc, "admin-1", domain.RoleAdmin)
	s.observerToken = s.mintToken(jwtSvc, "observer-1", domain.RoleObserver)

	s.handler = NewRouter(Deps{
		Monitor:      monitorSvc,
		Gate:         s.gate,
		Frames:       framesSvc,
		Inquiry:      inquirySvc,
		Outcomes:     outcomesSvc,
		Observers:    observersSvc,
		Purpose:      purposeSvc,
		Alerts:       s.alerts,
		Logger:       logger,
		JWTValidator: jwttoken.NewJWTServiceAdapter(jwtSvc),
	})
}

func (s *RouterSuite) mintToken(jwtSvc *jwttoken.JWTService, actor string, role domain.Role) string {
	token, err := jwtSvc.GenerateToken(domain.ActorID(actor), role, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *RouterSuite) request(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func frameBody(domainKey string, confidence float64) map[string]any {
	now := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	return map[string]any{
		"domain":            domainKey,
		"framework":         "cost-benefit",
		"confidence_weight": confidence,
		"first_used":        now,
		"last_used":         now,
		"decision_point":    "quarterly-review",
		"provenance":        jsonProvenance(),
	}
}

func (s *RouterSuite) completeAudit(token string) {
	rec := s.request(http.MethodPost, "/audits/complete", token, nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)
}

func (s *RouterSuite) TestOpenEndpoints() {
	s.Run("health", func() {
		rec := s.request(http.MethodGet, "/healthz", "", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"status":"ok"}`, rec.Body.String())
	})

	s.Run("metrics", func() {
		rec := s.request(http.MethodGet, "/metrics", "", nil)
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *RouterSuite) TestAuthentication() {
	s.Run("missing token", func() {
		rec := s.request(http.MethodGet, "/resilience", "", nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("unauthorized", s.decode(rec)["error"])
	})

	s.Run("garbage token", func() {
		rec := s.request(http.MethodGet, "/resilience", "not.a.token", nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("wrong content type on writes", func() {
		req := httptest.NewRequest(http.MethodPost, "/frames", bytes.NewBufferString("x=1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+s.analystToken)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		s.Equal(http.StatusUnsupportedMediaType, rec.Code)
	})
}

func (s *RouterSuite) TestFrames() {
	s.Run("submission admitted and evaluated", func() {
		rec := s.request(http.MethodPost, "/frames", s.analystToken, frameBody("budget", 0.8))
		s.Require().Equal(http.StatusCreated, rec.Code)

		body := s.decode(rec)
		s.Equal("RPL", body["layer"])
		s.EqualValues(1, body["window_size"])
		s.Equal(true, body["exceeded"])
		s.completeAudit(s.analystToken)
	})

	s.Run("confidence over the cap maps to 422", func() {
		rec := s.request(http.MethodPost, "/frames", s.analystToken, frameBody("budget", 0.96))
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal("ConfidenceCapExceeded", s.decode(rec)["kind"])
	})

	s.Run("simulated scope without admin maps to 403", func() {
		body := frameBody("budget", 0.8)
		body["provenance"].(map[string]any)["data_scope"] = "simulated"
		rec := s.request(http.MethodPost, "/frames", s.analystToken, body)
		s.Equal(http.StatusForbidden, rec.Code)
		s.Equal("UnauthorizedScope", s.decode(rec)["kind"])
	})

	s.Run("cooldown maps to 429 with retry hint", func() {
		_, err := s.gate.InstallCooldown(context.Background(), domain.ActorID("analyst-1"), 2*time.Hour, gate.ReasonManual)
		s.Require().NoError(err)

		rec := s.request(http.MethodPost, "/frames", s.analystToken, frameBody("budget", 0.8))
		s.Equal(http.StatusTooManyRequests, rec.Code)
		s.NotEmpty(rec.Header().Get("Retry-After"))
		s.Equal("CooldownActive", s.decode(rec)["kind"])

		s.Require().NoError(s.gate.ClearCooldown(context.Background(), domain.ActorID("analyst-1")))
	})

	s.Run("dominance requires the domain parameter", func() {
		rec := s.request(http.MethodGet, "/frames/dominance", s.analystToken, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("dominance reads without holding a slot", func() {
		rec := s.request(http.MethodGet, "/frames/dominance?domain=budget", s.analystToken, nil)
		s.Equal(http.StatusOK, rec.Code)
		inFlight, _, err := s.gate.Status(context.Background(), domain.ActorID("analyst-1"))
		s.Require().NoError(err)
		s.Zero(inFlight)
	})

	s.Run("rotation drain returns queued suggestions", func() {
		rec := s.request(http.MethodPost, "/frames/rotation/drain", s.analystToken, map[string]any{"max": 5})
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(s.decode(rec), "suggestions")
	})
}

func (s *RouterSuite) TestQuestions() {
	body := map[string]any{
		"domain":      "budget",
		"text":        "Which assumptions went unexamined?",
		"complexity":  3,
		"sensitivity": 2,
		"asked_at":    time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		"provenance":  jsonProvenance(),
	}
	rec := s.request(http.MethodPost, "/questions", s.analystToken, body)
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Equal("QEM", s.decode(rec)["layer"])
	s.completeAudit(s.analystToken)

	rec = s.request(http.MethodGet, "/questions/entropy?domain=budget", s.analystToken, nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestOutcomes() {
	decided := time.Now().UTC().Add(-90 * 24 * time.Hour)
	body := map[string]any{
		"decision_id":           "dec-1",
		"decision_date":         decided.Format(time.RFC3339),
		"beneficiary":           "vendor-a",
		"benefit_realized_date": decided.Add(45 * 24 * time.Hour).Format(time.RFC3339),
		"provenance":            jsonProvenance(),
	}
	rec := s.request(http.MethodPost, "/outcomes", s.analystToken, body)
	s.Require().Equal(http.StatusCreated, rec.Code)

	resp := s.decode(rec)
	outcome := resp["outcome"].(map[string]any)
	s.EqualValues(45, outcome["lag_days"])
	s.completeAudit(s.analystToken)

	rec = s.request(http.MethodGet, "/outcomes/risk?beneficiary=vendor-a", s.analystToken, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.EqualValues(1, s.decode(rec)["decisions"])
}

func (s *RouterSuite) TestObservers() {
	activity := map[string]any{
		"observer_id":            "observer-1",
		"audits_reviewed":        8,
		"correction_rate":        0.05,
		"contradiction_exposure": 0.1,
		"pending_audits":         4,
		"provenance":             jsonProvenance(),
	}
	rec := s.request(http.MethodPost, "/observers/activity", s.observerToken, activity)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.request(http.MethodGet, "/observers/observer-1/fatigue", s.analystToken, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("OLI", s.decode(rec)["layer"])

	s.Run("redistribute is admin only", func() {
		rec := s.request(http.MethodPost, "/observers/redistribute", s.analystToken, map[string]any{})
		s.Equal(http.StatusForbidden, rec.Code)

		rec = s.request(http.MethodPost, "/observers/redistribute", s.adminToken, map[string]any{})
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *RouterSuite) TestPurposes() {
	declare := map[string]any{
		"id":              "p-1",
		"domain":          "grants",
		"original_intent": "allocate community development funding fairly",
		"provenance":      jsonProvenance(),
	}
	rec := s.request(http.MethodPost, "/purposes", s.analystToken, declare)
	s.Require().Equal(http.StatusCreated, rec.Code)

	s.Run("duplicate declaration conflicts", func() {
		rec := s.request(http.MethodPost, "/purposes", s.analystToken, declare)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("usage tracked and drift returned", func() {
		usage := map[string]any{
			"event_type":  "allocation",
			"description": "community development funding review",
			"provenance":  jsonProvenance(),
		}
		rec := s.request(http.MethodPost, "/purposes/p-1/usage", s.analystToken, usage)
		s.Require().Equal(http.StatusCreated, rec.Code)
		s.Equal("PDS", s.decode(rec)["layer"])
		s.completeAudit(s.analystToken)

		rec = s.request(http.MethodGet, "/purposes/p-1/drift", s.analystToken, nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("STABLE", s.decode(rec)["trend"])
	})

	s.Run("recommit with unrelated statement rejected", func() {
		body := map[string]any{"statement": "expand surveillance capability quickly"}
		rec := s.request(http.MethodPost, "/purposes/p-1/recommit", s.analystToken, body)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("recommit with aligned statement accepted", func() {
		body := map[string]any{"statement": "allocate community development funding fairly"}
		rec := s.request(http.MethodPost, "/purposes/p-1/recommit", s.analystToken, body)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("ACTIVE", s.decode(rec)["state"])
	})

	s.Run("drift for unknown purpose is 404", func() {
		rec := s.request(http.MethodGet, "/purposes/ghost/drift", s.analystToken, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *RouterSuite) TestAlerts() {
	s.Run("invalid layer filter rejected", func() {
		rec := s.request(http.MethodGet, "/alerts?layer=XYZ", s.analystToken, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("list and resolve", func() {
		alert, raised, err := s.alerts.Raise(context.Background(), metric.LayerOutcomeRisk, "vendor-a",
			8.2, 7.0, metric.SeverityMedium)
		s.Require().NoError(err)
		s.Require().True(raised)

		rec := s.request(http.MethodGet, "/alerts?layer=LOA", s.analystToken, nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Len(s.decode(rec)["alerts"], 1)

		rec = s.request(http.MethodPost, "/alerts/"+alert.ID.String()+"/resolve", s.analystToken, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.request(http.MethodPost, "/alerts/"+alert.ID.String()+"/resolve", s.analystToken, nil)
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("malformed alert id rejected", func() {
		rec := s.request(http.MethodPost, "/alerts/not-a-uuid/resolve", s.analystToken, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RouterSuite) TestSystem() {
	s.Run("resilience aggregates all layers", func() {
		rec := s.request(http.MethodGet, "/resilience", s.analystToken, nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		body := s.decode(rec)
		s.InDelta(100.0, body["score"].(float64), 1e-9)
		s.Len(body["layers"], 5)
	})

	s.Run("gate status", func() {
		rec := s.request(http.MethodGet, "/gate/analyst-1/status", s.analystToken, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		body := s.decode(rec)
		s.EqualValues(0, body["in_flight"])
	})

	s.Run("request id echoed", func() {
		rec := s.request(http.MethodGet, "/healthz", "", nil)
		s.NotEmpty(rec.Header().Get("X-Request-ID"))
	})
}
