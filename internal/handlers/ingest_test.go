package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"coke_oven/internal/models"
	"coke_oven/internal/service"
)

func TestIngestHandlers_RecordTemperature(t *testing.T) {
	ing := &mockIngestion{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, Ingestion: ing})

	// requires auth
	w := doRequest(r, http.MethodPost, "/api/v1/temperatures", `{"oven":1,"time":"2025-06-18 08:00","machine_side":1,"coke_side":2}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/api/v1/temperatures", `{"oven":1,"time":"2025-06-18 08:00","machine_side":1350.5,"coke_side":0}`, "valid")
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	want := service.TemperatureInput{Oven: 1, Time: "2025-06-18 08:00", MachineSide: 1350.5, CokeSide: 0}
	if ing.lastTemp != want {
		t.Fatalf("got %+v, want %+v", ing.lastTemp, want)
	}

	// missing coke_side is rejected before the service is called
	calls := ing.calls
	w = doRequest(r, http.MethodPost, "/api/v1/temperatures", `{"oven":1,"time":"2025-06-18 08:00","machine_side":1}`, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing field, got %d", w.Code)
	}
	if ing.calls != calls {
		t.Fatalf("service should not be called on a bad body")
	}
}

func TestIngestHandlers_ErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "invalid oven", err: fmt.Errorf("%w: 4", models.ErrInvalidOven), wantCode: http.StatusBadRequest, wantMsg: "invalid coke oven: 4"},
		{name: "invalid chamber", err: models.ErrInvalidChamber, wantCode: http.StatusBadRequest},
		{name: "invalid type", err: models.ErrInvalidOperationKind, wantCode: http.StatusBadRequest},
		{name: "invalid time", err: models.ErrInvalidTimeFormat, wantCode: http.StatusBadRequest},
		{name: "duplicate", err: fmt.Errorf("insert operation: %w", models.ErrDuplicateRecord), wantCode: http.StatusConflict},
		{name: "closed", err: models.ErrNotInitialized, wantCode: http.StatusServiceUnavailable},
		{name: "poisoned", err: models.ErrLockUnavailable, wantCode: http.StatusServiceUnavailable},
		{name: "storage", err: fmt.Errorf("%w: disk I/O error", models.ErrStorageFailure), wantCode: http.StatusInternalServerError, wantMsg: errInternal},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantMsg: errInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := &mockIngestion{opErr: tt.err}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, Ingestion: ing})

			w := doRequest(r, http.MethodPost, "/api/v1/operations", `{"oven":1,"chamber":"1#","type":"PUSH","time":"2025-06-19 12:45"}`, "valid")
			if w.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantMsg != "" && !strings.Contains(w.Body.String(), tt.wantMsg) {
				t.Fatalf("body %s does not contain %q", w.Body.String(), tt.wantMsg)
			}
			want := service.OperationInput{Oven: 1, Chamber: "1#", Type: "PUSH", Time: "2025-06-19 12:45"}
			if ing.lastOp != want {
				t.Fatalf("got %+v, want %+v", ing.lastOp, want)
			}
		})
	}
}
