// Package apperror defines the application error taxonomy and the
// centralized Echo error handler. Handlers return *Error values and
// never write error responses themselves; every failure is rendered
// as {"success":false,"message":...} with a status derived from the
// error kind.
package apperror

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an application error.
type Kind int

const (
	KindValidation  Kind = iota // malformed input, duplicate email
	KindAuth                    // missing/invalid/expired token, dead session
	KindForbidden               // role not allowed
	KindNotFound                // missing user/course/content/question/review
	KindEligibility             // content access without purchase
	KindUpstream                // media host or mail dispatch failure
	KindPersistence             // store failure
	KindInternal
)

// Error is the single error type crossing the handler boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code. Eligibility maps
// to 404 so that non-purchasers cannot probe which courses exist.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound, KindEligibility:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error  { return &Error{Kind: KindValidation, Message: msg} }
func Auth(msg string) *Error        { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) *Error   { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error    { return &Error{Kind: KindNotFound, Message: msg} }
func Eligibility(msg string) *Error { return &Error{Kind: KindEligibility, Message: msg} }

// Upstream wraps a failure from an external collaborator (media host,
// mail sender).
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Persistence wraps a store failure.
func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// Internal wraps anything unexpected.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// HTTPErrorHandler renders every error escaping a handler. Echo's own
// HTTP errors (404 route, 405) keep their status; anything unknown
// becomes a 500 with a generic message so internals do not leak.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var appErr *Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status()
		message = appErr.Message
		if appErr.Err != nil {
			log.Printf("request failed: %v", appErr)
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if s, ok := httpErr.Message.(string); ok {
			message = s
		}
	default:
		log.Printf("unhandled error: %v", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"success": false, "message": message})
}
