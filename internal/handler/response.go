package handler

// Every error response has the same shape:
//
//	{"error": "not_found", "message": "recipe not found with id abc", "field": ""}
//
// Services return apperror values; writeError is the one place they become
// HTTP status codes.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/service"
)

// maxBodyBytes caps JSON request bodies. Recipe images arrive as base64
// data URLs, so the limit is generous.
const maxBodyBytes = 10 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps an error chain to its status code and machine-readable
// type.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrSelfReference):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError sends err as JSON. Internal errors, integrity violations
// included, get a generic message so storage details never leak; they are
// logged with the request path.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, errorType := errorStatus(err)

	var appErr *apperror.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	msg := "request failed"
	if errors.Is(err, apperror.ErrIntegrity) {
		msg = "data integrity violation"
	}
	logger.Error(msg,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("", fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit))
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("", "request body is empty")
		default:
			return apperror.ValidationFailed("", "invalid JSON body")
		}
	}
	if dec.More() {
		return apperror.ValidationFailed("", "request body must contain a single JSON object")
	}
	return nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(key, key+" must be a non-negative integer")
	}
	return n, nil
}

// pageParams turns ?page=&limit= into limit and offset. page is 1-based;
// a zero limit is left for the service to default.
func pageParams(r *http.Request) (limit, offset int, err error) {
	limit, err = queryInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	page, err := queryInt(r, "page")
	if err != nil {
		return 0, 0, err
	}
	if page > 1 {
		size := min(limit, service.MaxListLimit)
		if size == 0 {
			size = service.DefaultListLimit
		}
		if page-1 > math.MaxInt/size {
			return 0, 0, apperror.ValidationFailed("page", "page is too large")
		}
		offset = (page - 1) * size
	}
	return limit, offset, nil
}

// queryBool parses 0/1/true/false. It returns nil when the parameter is absent.
func queryBool(r *http.Request, key string) (value *bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.ValidationFailed(key, key+" must be 0 or 1")
	}
	return &b, nil
}
