package output

import (
	"errors"
	"fmt"
)

// Error is a structured error with code, message, and optional hint.
// Validation errors additionally carry the offending field name.
type Error struct {
	Code       string
	Message    string
	Hint       string
	Field      string
	HTTPStatus int
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", msg, e.Hint)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

// Error constructors for the taxonomy.

func ErrConfig(msg string) *Error {
	return &Error{Code: CodeConfig, Message: msg}
}

func ErrConfigHint(msg, hint string) *Error {
	return &Error{Code: CodeConfig, Message: msg, Hint: hint}
}

// ErrValidation is always field-scoped: it names the offending field and the
// violated constraint, never a bare "invalid input".
func ErrValidation(field, msg string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: msg}
}

func ErrValidationf(field, format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func ErrNotFound(resource, identifier string) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, identifier),
		HTTPStatus: 404,
	}
}

// ErrTicketIDGuidance is the not-found error for ticket lookups. Callers
// routinely pass a ticket's display number (e.g. 65003) where its internal
// database id (e.g. 3) is required; this message exists to break that loop.
func ErrTicketIDGuidance(ticketID int) *Error {
	return &Error{
		Code:       CodeNotFound,
		HTTPStatus: 404,
		Message:    fmt.Sprintf("ticket with ID %d not found", ticketID),
		Hint: fmt.Sprintf(
			"you passed %d - make sure this is the ticket's internal database id, not its display number. "+
				"Search results carry the internal id in the 'id' field; the 'number' field is the display label. "+
				"Example: for \"Ticket #65003\" use the 'id' value from zammad_search_tickets, then retry",
			ticketID),
	}
}

func ErrAuth(msg string) *Error {
	return &Error{
		Code:       CodeAuth,
		Message:    msg,
		Hint:       "check that ZAMMAD_HTTP_TOKEN (or the configured credential) is valid",
		HTTPStatus: 401,
	}
}

func ErrForbidden(msg string) *Error {
	return &Error{
		Code:       CodeForbidden,
		Message:    msg,
		Hint:       "your credentials lack access to this resource",
		HTTPStatus: 403,
	}
}

func ErrRateLimit(retryAfter int) *Error {
	hint := "try again later"
	if retryAfter > 0 {
		hint = fmt.Sprintf("try again in %d seconds", retryAfter)
	}
	return &Error{
		Code:       CodeRateLimit,
		Message:    "rate limited",
		Hint:       hint,
		HTTPStatus: 429,
		Retryable:  true,
	}
}

func ErrTimeout(cause error) *Error {
	return &Error{
		Code:      CodeTimeout,
		Message:   "request timed out",
		Hint:      "the server may be slow - try again or reduce the scope",
		Retryable: true,
		Cause:     cause,
	}
}

func ErrUnavailable(msg string, cause error) *Error {
	return &Error{
		Code:      CodeUnavailable,
		Message:   msg,
		Hint:      "check ZAMMAD_URL is correct and the server is reachable",
		Retryable: true,
		Cause:     cause,
	}
}

func ErrAPI(status int, msg string) *Error {
	return &Error{
		Code:       CodeAPI,
		Message:    msg,
		HTTPStatus: status,
	}
}

// AsError attempts to convert an error to an *Error. Foreign errors are
// wrapped as API errors so callers never see a raw transport exception.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    CodeAPI,
		Message: err.Error(),
		Cause:   err,
	}
}
