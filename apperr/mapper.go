package apperr

import (
	"context"
	"errors"
	"net/http"
)

// HTTPErrorInfo contains the HTTP status code and body fields for an error.
type HTTPErrorInfo struct {
	Status  int
	Kind    Kind
	Message string
}

// Mapper maps error kinds to HTTP status codes.
type Mapper struct {
	statuses       map[Kind]int
	defaultStatus  int
	defaultMessage string
}

// NewMapper creates a Mapper with the standard kind to status table.
func NewMapper() *Mapper {
	return &Mapper{
		statuses: map[Kind]int{
			KindValidation:      http.StatusBadRequest,
			KindInvalidSlot:     http.StatusBadRequest,
			KindUnauthorized:    http.StatusUnauthorized,
			KindForbidden:       http.StatusForbidden,
			KindNotFound:        http.StatusNotFound,
			KindConflict:        http.StatusConflict,
			KindDuplicateReview: http.StatusConflict,
			KindInvalidState:    http.StatusConflict,
		},
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// Map converts an error to HTTP status and message. Internal errors never
// leak their cause to the client.
func (m *Mapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Kind: KindInternal, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Kind: KindInternal, Message: "request cancelled"}
	}

	var e *Error
	if errors.As(err, &e) {
		if status, ok := m.statuses[e.Kind]; ok {
			return HTTPErrorInfo{Status: status, Kind: e.Kind, Message: e.Message}
		}
	}
	return HTTPErrorInfo{Status: m.defaultStatus, Kind: KindInternal, Message: m.defaultMessage}
}
