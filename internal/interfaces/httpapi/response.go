package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "prediction-pool"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain   string `json:"domain"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError {
		message = "internal server error"
	}

	items := fieldErrorItems(err, mapped.Reason)
	if len(items) == 0 {
		items = []googleErrorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: message}}
	}

	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors:  items,
		},
	})
}

// writeInternalError answers a recovered panic without touching err mapping.
func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeError(ctx, w, errors.New("panic recovered"))
}

// fieldErrorItems expands match form and request validation failures into one
// item per field, with Location naming the field.
func fieldErrorItems(err error, reason string) []googleErrorItem {
	var items []googleErrorItem
	for _, fe := range usecase.FieldErrors(err) {
		items = append(items, googleErrorItem{
			Domain:   errorDomain,
			Reason:   reason,
			Message:  fe.Message,
			Location: fe.Field,
		})
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			items = append(items, googleErrorItem{
				Domain:   errorDomain,
				Reason:   reason,
				Message:  fe.Error(),
				Location: fe.Field(),
			})
		}
	}
	return items
}

var internalErrorMapping = mappedError{
	HTTPStatus: http.StatusInternalServerError,
	Reason:     "internalError",
	Status:     "INTERNAL",
}

// errorMappings is checked in order; the first sentinel matched with
// errors.Is wins.
var errorMappings = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrForbidden, mappedError{http.StatusForbidden, "forbidden", "PERMISSION_DENIED"}},
	{bet.ErrMatchStarted, mappedError{http.StatusConflict, "matchStarted", "FAILED_PRECONDITION"}},
	{bet.ErrMatchLocked, mappedError{http.StatusConflict, "matchLocked", "FAILED_PRECONDITION"}},
	{usecase.ErrConflict, mappedError{http.StatusConflict, "conflict", "ALREADY_EXISTS"}},
	{errTooManyRequests, mappedError{http.StatusTooManyRequests, "tooManyRequests", "RESOURCE_EXHAUSTED"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.mapped
		}
	}
	return internalErrorMapping
}
