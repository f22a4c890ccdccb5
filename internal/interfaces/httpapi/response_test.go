package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestWriteError_MasksInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("query players: connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var body googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil || body.Error.Message != "internal server error" {
		t.Fatalf("expected masked message, got %+v", body.Error)
	}
}

func TestMapError_Reasons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
		wantReason string
	}{
		{err: fmt.Errorf("%w: x", usecase.ErrInvalidInput), wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{err: fmt.Errorf("%w: x", usecase.ErrNotFound), wantStatus: http.StatusNotFound, wantReason: "notFound"},
		{err: fmt.Errorf("%w: x", usecase.ErrUnauthorized), wantStatus: http.StatusUnauthorized, wantReason: "unauthorized"},
		{err: fmt.Errorf("%w: x", usecase.ErrForbidden), wantStatus: http.StatusForbidden, wantReason: "forbidden"},
		{err: fmt.Errorf("%w: match=1", bet.ErrMatchStarted), wantStatus: http.StatusConflict, wantReason: "matchStarted"},
		{err: fmt.Errorf("%w: match=1", bet.ErrMatchLocked), wantStatus: http.StatusConflict, wantReason: "matchLocked"},
		{err: fmt.Errorf("%w: email", usecase.ErrConflict), wantStatus: http.StatusConflict, wantReason: "conflict"},
		{err: fmt.Errorf("%w: slow down", errTooManyRequests), wantStatus: http.StatusTooManyRequests, wantReason: "tooManyRequests"},
		{err: fmt.Errorf("%w: circuit open", usecase.ErrDependencyUnavailable), wantStatus: http.StatusServiceUnavailable, wantReason: "dependencyUnavailable"},
		{err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantReason: "internalError"},
	}

	for _, tc := range tests {
		t.Run(tc.wantReason, func(t *testing.T) {
			t.Parallel()

			got := mapError(context.Background(), tc.err)
			if got.HTTPStatus != tc.wantStatus || got.Reason != tc.wantReason {
				t.Fatalf("mapError(%v) = %d %s, want %d %s", tc.err, got.HTTPStatus, got.Reason, tc.wantStatus, tc.wantReason)
			}
		})
	}
}
