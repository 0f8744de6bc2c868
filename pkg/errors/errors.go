package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeAppError         = "APP_ERROR"
	CodeAPIError         = "API_ERROR"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeIdentityNotFound = "IDENTITY_NOT_FOUND"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUpstreamQuery    = "UPSTREAM_QUERY_FAILED"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// APIError covers upstream failures outside the primary metric query (channel lookup, video list).
type APIError struct {
	*AppError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type UnauthenticatedError struct {
	*AppError
}

func NewUnauthenticatedError() *UnauthenticatedError {
	return &UnauthenticatedError{
		AppError: &AppError{
			Message:    "no access token",
			Code:       CodeUnauthenticated,
			StatusCode: http.StatusUnauthorized,
		},
	}
}

// LookupDiagnostics is the raw outcome of one channel lookup attempt.
type LookupDiagnostics struct {
	Strategy  string `json:"strategy"`
	ChannelID string `json:"channelId,omitempty"`
	Status    int    `json:"status"`
	Body      string `json:"body"`
}

type IdentityNotFoundError struct {
	*AppError
	Mine     LookupDiagnostics
	Fallback *LookupDiagnostics
}

func NewIdentityNotFoundError(mine LookupDiagnostics, fallback *LookupDiagnostics) *IdentityNotFoundError {
	context := map[string]any{
		"mineStatus": mine.Status,
		"mineRaw":    mine.Body,
	}
	if fallback != nil {
		context["fallbackChannelId"] = fallback.ChannelID
		context["byIdStatus"] = fallback.Status
		context["byIdRaw"] = fallback.Body
	}

	return &IdentityNotFoundError{
		AppError: &AppError{
			Message:    "channel not found",
			Code:       CodeIdentityNotFound,
			StatusCode: http.StatusBadRequest,
			Context:    context,
		},
		Mine:     mine,
		Fallback: fallback,
	}
}

type InvalidRequestError struct {
	*AppError
	Field string
	Value interface{}
}

func NewInvalidRequestError(message, field string, value interface{}) *InvalidRequestError {
	return &InvalidRequestError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeInvalidRequest,
			StatusCode: http.StatusBadRequest,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// UpstreamQueryError carries the metric query's HTTP status and body verbatim.
type UpstreamQueryError struct {
	*AppError
	Status     int
	Body       string
	RequestURL string
}

func NewUpstreamQueryError(status int, body, requestURL string) *UpstreamQueryError {
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &UpstreamQueryError{
		AppError: &AppError{
			Message:    fmt.Sprintf("metric query failed with status %d", status),
			Code:       CodeUpstreamQuery,
			StatusCode: status,
			Context: map[string]any{
				"body":       body,
				"requestUrl": requestURL,
			},
		},
		Status:     status,
		Body:       body,
		RequestURL: requestURL,
	}
}

// AsAppError finds the AppError embedded anywhere in err's chain.
func AsAppError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}

	var (
		unauth   *UnauthenticatedError
		notFound *IdentityNotFoundError
		invalid  *InvalidRequestError
		upstream *UpstreamQueryError
		apiErr   *APIError
		appErr   *AppError
	)
	switch {
	case stderrors.As(err, &unauth):
		return unauth.AppError, true
	case stderrors.As(err, &notFound):
		return notFound.AppError, true
	case stderrors.As(err, &invalid):
		return invalid.AppError, true
	case stderrors.As(err, &upstream):
		return upstream.AppError, true
	case stderrors.As(err, &apiErr):
		return apiErr.AppError, true
	case stderrors.As(err, &appErr):
		return appErr, true
	}
	return nil, false
}

// StatusCode maps err to an HTTP status, 500 for unclassified errors.
func StatusCode(err error) int {
	if appErr, ok := AsAppError(err); ok && appErr.StatusCode > 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func Code(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return CodeAppError
}
