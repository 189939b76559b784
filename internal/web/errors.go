package web

// errors.go maps errors to user facing messages with support codes and
// writes error responses.
//
// Codes by category:
//
//	FILE001-FILE005  upload and parsing problems
//	UPL002-UPL005    load capacity and request lifetime
//	OP001-OP008      rejected cleaning operations
//	SES001-SES003    session state
//	VAL001           malformed request payloads
//	RATE001          throttled clients
//	ERR000           anything else; check the logs for the technical error
//
// Browser form posts (Accept: text/html) are redirected back to the page with
// the message as a flash. Everything else gets a JSON ErrorResponse.

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/tidycsv/internal/logging"
	"github.com/JonMunkholm/tidycsv/internal/session"
	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/JonMunkholm/tidycsv/internal/transform"
)

var (
	errFileTooLarge   = errors.New("file too large")
	errInvalidRequest = errors.New("invalid request")
	errRateLimited    = errors.New("rate limit exceeded")
)

// UserMessage is what the client is told about an error.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
	Status  int    // HTTP status
}

// errorMapping ties a sentinel to its message. Entries are tried in order
// with errors.Is, so wrapped sentinels come before their wrappers.
type errorMapping struct {
	target error
	msg    UserMessage
}

var errorMappings = []errorMapping{
	{errFileTooLarge, UserMessage{"File exceeds maximum size limit", "Split the file into smaller chunks", "FILE001", http.StatusRequestEntityTooLarge}},
	{table.ErrNoFile, UserMessage{"No file was selected", "Please select a CSV file to upload", "FILE004", http.StatusBadRequest}},
	{table.ErrEmptyFile, UserMessage{"The uploaded file is empty", "Please upload a CSV file with a header row", "FILE005", http.StatusBadRequest}},
	{table.ErrTooManyLoads, UserMessage{"System is busy processing other uploads", "Please wait a moment and try again", "UPL002", http.StatusServiceUnavailable}},

	{transform.ErrInvalidStrategy, UserMessage{"Unknown missing value strategy", "Choose drop, mean, median or mode", "OP001", http.StatusBadRequest}},
	{transform.ErrInvalidMethod, UserMessage{"Unknown scaling method", "Choose Normalize (Min-Max) or Standardize (Z-score)", "OP002", http.StatusBadRequest}},
	{transform.ErrNoNumericColumns, UserMessage{"None of the selected columns are numeric", "Select at least one numeric column", "OP003", http.StatusUnprocessableEntity}},
	{session.ErrEmptySelection, UserMessage{"Please select at least one column to scale", "Select one or more numeric columns", "OP004", http.StatusBadRequest}},
	{transform.ErrUnknownColumn, UserMessage{"Column not found", "Check the column name against the preview", "OP005", http.StatusUnprocessableEntity}},
	{transform.ErrConversion, UserMessage{"Column values cannot be converted to that type", "Handle missing or malformed values first", "OP006", http.StatusUnprocessableEntity}},
	{table.ErrInvalidKind, UserMessage{"Unknown column type", "Choose int, float, string or bool", "OP007", http.StatusBadRequest}},
	{transform.ErrNonFinite, UserMessage{"Column contains infinite values or a range too large to scale", "Replace or drop the infinite values first", "OP008", http.StatusUnprocessableEntity}},

	{session.ErrNotLoaded, UserMessage{"No data loaded", "Upload a CSV file first", "SES001", http.StatusConflict}},
	{session.ErrAlreadyLoaded, UserMessage{"A file is already loaded in this session", "Start a new session to work on another file", "SES002", http.StatusConflict}},
	{session.ErrTooManySessions, UserMessage{"Too many active sessions", "Please try again later", "SES003", http.StatusServiceUnavailable}},

	{errInvalidRequest, UserMessage{"The request could not be understood", "Check the submitted fields", "VAL001", http.StatusBadRequest}},
	{errRateLimited, UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001", http.StatusTooManyRequests}},
	{context.Canceled, UserMessage{"Request was cancelled", "Please try again", "UPL004", http.StatusBadRequest}},
	{context.DeadlineExceeded, UserMessage{"Request timed out", "Try a smaller file or try again later", "UPL005", http.StatusGatewayTimeout}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Status:  http.StatusInternalServerError,
}

// MapError returns the user message for err. A nil error maps to the zero
// UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return MapError(errFileTooLarge)
	}
	var loadErr *table.LoadError
	if errors.As(err, &loadErr) {
		return UserMessage{"File is not a valid CSV", "Ensure the file is comma separated with a header row", "FILE002", http.StatusBadRequest}
	}
	return defaultMessage
}

// ErrorResponse is the JSON body of a failed API request. Error carries the
// specific problem, Message the general one.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err with request context and writes the mapped response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", msg.Status,
		"code", msg.Code,
		"error", err.Error(),
	}
	if msg.Status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	detail := msg.Message
	if msg.Code != defaultMessage.Code {
		detail = err.Error()
	}

	if wantsHTML(r) {
		s.redirectWithFlash(w, r, flash{Kind: "error", Text: detail, Code: msg.Code})
		return
	}
	if msg.Status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	render.Status(r, msg.Status)
	render.JSON(w, r, ErrorResponse{
		Error:   detail,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}
