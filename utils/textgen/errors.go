package textgen

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/match"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrAuth              = errors.New("authentication failed")
	ErrRateLimit         = errors.New("rate limit exceeded")
	ErrInvalidModel      = errors.New("invalid model")
	ErrUnavailable       = errors.New("service unavailable")
	ErrNetwork           = errors.New("network failure")
	ErrBlocked           = errors.New("prompt blocked")
	ErrEmptyResponse     = errors.New("empty response")
	ErrRemote            = errors.New("remote call failed")
)

// authMessages are 400 responses that the Gemini API uses for rejected keys.
var authMessages = []string{
	"*API key not valid*",
	"*API_KEY_INVALID*",
	"*API key expired*",
}

// Error carries the failure kind next to the provider error.
// errors.Is matches the kind, errors.As reaches the provider error.
type Error struct {
	Kind    error
	Code    int
	Status  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (%d", msg, e.Code)
		if e.Status != "" {
			msg += " " + e.Status
		}
		msg += ")"
	}

	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Classify maps an HTTP status and provider message onto a failure kind.
func Classify(code int, status, message string, cause error) *Error {
	return &Error{
		Kind:    kindOf(code, message),
		Code:    code,
		Status:  status,
		Message: message,
		Err:     cause,
	}
}

func kindOf(code int, message string) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrAuth
	case code == http.StatusBadRequest && isAuthMessage(message):
		return ErrAuth
	case code == http.StatusTooManyRequests:
		return ErrRateLimit
	case code == http.StatusNotFound:
		return ErrInvalidModel
	case code == http.StatusBadRequest:
		return ErrInvalidRequest
	case code >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return ErrRemote
	}
}

func isAuthMessage(message string) bool {
	for _, pattern := range authMessages {
		if match.Match(message, pattern) {
			return true
		}
	}
	return false
}

// Retryable reports whether a later attempt could succeed. Nothing in this
// module retries; callers decide.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrNetwork)
}

// Kind returns the failure kind of err, or nil when err carries none.
func Kind(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
