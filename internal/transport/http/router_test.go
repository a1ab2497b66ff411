package httptransport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	citizenhandler "municipal/internal/citizen/handler"
	citizenservice "municipal/internal/citizen/service"
	citizenstore "municipal/internal/citizen/store"
	debthandler "municipal/internal/debt/handler"
	debtservice "municipal/internal/debt/service"
	debtstore "municipal/internal/debt/store"
	"municipal/internal/payment/gateway"
	paymenthandler "municipal/internal/payment/handler"
	paymentservice "municipal/internal/payment/service"
	"municipal/internal/platform/logger"
	"municipal/internal/platform/middleware"
	procedurehandler "municipal/internal/procedure/handler"
	procedureservice "municipal/internal/procedure/service"
	procedurestore "municipal/internal/procedure/store"
	"municipal/internal/seed"
	"municipal/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	router http.Handler
	health map[string]HealthCheck
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	log := logger.Discard()
	citizens := citizenstore.NewInMemory()
	procedures := procedurestore.NewInMemory()
	debts := debtstore.NewInMemory()
	s.Require().NoError(seed.Load(context.Background(), seed.Stores{
		Citizens:   citizens,
		Procedures: procedures,
		Debts:      debts,
	}, log))

	citizenSvc := citizenservice.New(citizens)
	gw := gateway.NewSimulated(gateway.WithRandom(func() float64 { return 0 }))
	procedureSvc := procedureservice.New(procedures,
		procedureservice.WithCitizenDirectory(citizenSvc),
		procedureservice.WithRefunder(gw),
	)
	debtSvc := debtservice.New(debts, debtservice.WithCitizenDirectory(citizenSvc))
	paymentSvc := paymentservice.New(gw, procedureSvc, debtSvc)

	s.health = map[string]HealthCheck{"postgres": func(context.Context) error { return nil }}
	s.router = NewRouter(Options{
		AllowedOrigins: []string{"https://portal.example"},
		MetricsHandler: promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
		HealthChecks:   s.health,
	}, log,
		citizenhandler.New(citizenSvc, log),
		procedurehandler.New(procedureSvc, log),
		debthandler.New(debtSvc, log),
		paymenthandler.New(paymentSvc, log),
	)
}

func (s *RouterSuite) TestHealth() {
	s.Run("all dependencies up", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "status", "ok")
	})

	s.Run("failing dependency degrades", func() {
		s.health["redis"] = func(context.Context) error { return errors.New("connection refused") }
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
		testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
		testutil.AssertJSONContains(s.T(), rr, "status", "degraded")
	})
}

func (s *RouterSuite) TestMetricsEndpoint() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *RouterSuite) TestRequestIDEchoed() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/citizens/1")
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
	s.Equal("req-123", rr.Header().Get(middleware.RequestIDHeader))
}

func (s *RouterSuite) TestProcedureRoutesShareThePrefix() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/procedures/EXP-2024-001189"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "status", "PENDING")

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/procedures/2/transitions", map[string]string{
		"status": "IN_REVIEW",
		"reason": "documents received",
	}))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "status", "IN_REVIEW")
}

func (s *RouterSuite) TestPaymentEndToEnd() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/payments", map[string]any{
		"target_kind": "DEBT",
		"target_id":   2,
		"method":      "card",
		"amount":      "280.00",
	}))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "success", true)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/citizens/1/debts"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "count", float64(1))
}

func (s *RouterSuite) TestRejectsNonJSONBodies() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/citizens", "national_id=1")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *RouterSuite) TestUnknownRoute() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/nope"))
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
}

func TestCORSPreflight(t *testing.T) {
	router := NewRouter(Options{
		AllowedOrigins: []string{"https://portal.example"},
		MetricsHandler: http.NotFoundHandler(),
	}, logger.Discard())

	req := testutil.NewRequest(t, http.MethodOptions, "/payments")
	req.Header.Set("Origin", "https://portal.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := testutil.DoRequest(router, req)

	require.Less(t, rr.Code, 300)
	assert.Equal(t, "https://portal.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
}
