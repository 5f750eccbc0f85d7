package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *APIError     `json:"error,omitempty"`
	Meta    *ResponseMeta `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`

	// Pagination, set on list responses.
	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`
	Count  *int `json:"count,omitempty"`
}

func (s *Server) meta(r *http.Request) *ResponseMeta {
	return &ResponseMeta{
		RequestID: getRequestID(r.Context()),
		Timestamp: time.Now().UTC(),
		Version:   "v1",
	}
}

// writeJSON writes a successful JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.write(w, status, JSONResponse{Success: true, Data: data, Meta: s.meta(r)})
}

// writeList writes a page of items with pagination metadata.
func (s *Server) writeList(w http.ResponseWriter, r *http.Request, page shared.Page, items any, count int) {
	page = page.Normalize()
	meta := s.meta(r)
	meta.Limit = &page.Limit
	meta.Offset = &page.Offset
	meta.Count = &count
	s.write(w, http.StatusOK, JSONResponse{Success: true, Data: items, Meta: meta})
}

// writeJSONError writes an error JSON response.
func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.write(w, status, JSONResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    s.meta(r),
	})
}

func (s *Server) write(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to encode response", logger.Err(err))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// statusFor maps the domain error kind onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case shared.IsValidation(err):
		return http.StatusBadRequest, "invalid_input"
	case shared.IsUnauthorized(err):
		return http.StatusUnauthorized, "unauthorized"
	case shared.IsForbidden(err):
		return http.StatusForbidden, "forbidden"
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case shared.IsConflict(err):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError classifies err and writes it. Messages of domain errors are
// safe to show; anything else is logged and hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Err(err),
		)
		s.writeJSONError(w, r, status, code, "An unexpected error occurred")
		return
	}

	message := shared.PublicMessage(err)
	if message == "" {
		message = http.StatusText(status)
	}
	s.writeJSONError(w, r, status, code, message)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeJSONError(w, r, http.StatusNotFound, "not_found", "No route for "+r.URL.Path)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method "+r.Method+" is not allowed")
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeJSON reads the body into dst. Fields already set in dst survive
// when the body omits them.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return shared.Invalid("request", "Decode", "request body is required")
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return shared.Invalid("request", "Decode", "request body is required")
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return shared.Invalid("request", "Decode", "request body is too large")
		}
		return shared.WrapError("request", "Decode", shared.ErrInvalidInput, "malformed JSON body", err)
	}
}

// pathID returns the {id} route variable.
func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.Invalid("request", "Query", fmt.Sprintf("%s must be an integer", key))
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, key string) (*bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, shared.Invalid("request", "Query", fmt.Sprintf("%s must be true or false", key))
	}
	return &v, nil
}

// queryPage reads limit and offset. Negative values are rejected.
func queryPage(r *http.Request) (shared.Page, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return shared.Page{}, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return shared.Page{}, err
	}
	if limit < 0 || offset < 0 {
		return shared.Page{}, shared.Invalid("request", "Query", "limit and offset cannot be negative")
	}
	return shared.Page{Limit: limit, Offset: offset}, nil
}
