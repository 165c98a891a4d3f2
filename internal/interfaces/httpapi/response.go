package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/volley-league/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "volley-league"
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
	Domain       string `json:"domain"`
	Reason       string `json:"reason"`
	Message      string `json:"message"`
	Location     string `json:"location,omitempty"`
	LocationType string `json:"locationType,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// errorMappings is checked in order; the first sentinel matched wins.
var errorMappings = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrEmptySchedule, mappedError{http.StatusNotFound, "emptySchedule", "NOT_FOUND"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

var internalError = mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors:  errorItems(mapped, err),
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	const msg = "internal server error"

	writeJSON(ctx, w, internalError.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    internalError.HTTPStatus,
			Message: msg,
			Status:  internalError.Status,
			Errors:  []googleErrorItem{{Domain: errorDomain, Reason: internalError.Reason, Message: msg}},
		},
	})
}

func mapError(err error) mappedError {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.mapped
		}
	}
	return internalError
}

// errorItems expands validator failures into one item per field.
func errorItems(mapped mappedError, err error) []googleErrorItem {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return []googleErrorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: err.Error()}}
	}

	items := make([]googleErrorItem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		items = append(items, googleErrorItem{
			Domain:       errorDomain,
			Reason:       mapped.Reason,
			Message:      fieldMessage(fe),
			Location:     fieldLocation(fe),
			LocationType: "body",
		})
	}
	return items
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Param() == "" {
		return "failed " + fe.Tag()
	}
	return "failed " + fe.Tag() + "=" + fe.Param()
}

// fieldLocation drops the root struct name: "liveSnapshotRequest.sets[0].home" -> "sets[0].home".
func fieldLocation(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
