package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	"coke_oven/internal/models"
	"coke_oven/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockIngestion struct {
	tempErr error
	opErr   error

	lastTemp service.TemperatureInput
	lastOp   service.OperationInput
	calls    int
}

func (m *mockIngestion) RecordTemperature(ctx context.Context, in service.TemperatureInput) error {
	m.calls++
	m.lastTemp = in
	return m.tempErr
}
func (m *mockIngestion) RecordOperation(ctx context.Context, in service.OperationInput) error {
	m.calls++
	m.lastOp = in
	return m.opErr
}

type mockCycleLog struct {
	resp       []models.CokingCycle
	err        error
	lastFilter service.CycleFilter
}

func (m *mockCycleLog) Cycles(ctx context.Context, f service.CycleFilter) ([]models.CokingCycle, error) {
	m.lastFilter = f
	return m.resp, m.err
}

type mockHistory struct {
	temps    []models.TemperatureSample
	ops      []models.OperationEvent
	err      error
	lastTemp service.TemperatureFilter
	lastOp   service.OperationFilter
}

func (m *mockHistory) Temperatures(ctx context.Context, f service.TemperatureFilter) ([]models.TemperatureSample, error) {
	m.lastTemp = f
	return m.temps, m.err
}
func (m *mockHistory) Operations(ctx context.Context, f service.OperationFilter) ([]models.OperationEvent, error) {
	m.lastOp = f
	return m.ops, m.err
}

type mockMonitoring struct {
	overview []models.OvenStatus
	err      error
	// laterErr is returned from every call after the first when set.
	laterErr error
	calls    atomic.Int32
}

func (m *mockMonitoring) Overview(ctx context.Context) ([]models.OvenStatus, error) {
	if n := m.calls.Add(1); n > 1 && m.laterErr != nil {
		return nil, m.laterErr
	}
	return m.overview, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// doRequest sends a request with an optional JSON body and bearer token.
func doRequest(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
