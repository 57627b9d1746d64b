package disa

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnreachable matches every transport failure where no response arrived.
	ErrUnreachable = errors.New("disa backend unreachable")
	// ErrInvalidOTP is returned by SignIn when the backend rejects the code.
	ErrInvalidOTP = errors.New("invalid OTP")
	// ErrSignInFailed covers every other sign-in failure.
	ErrSignInFailed = errors.New("sign-in failed")
	// ErrOTPRequestFailed wraps every failure of RequestOTP.
	ErrOTPRequestFailed = errors.New("otp request failed")
	// ErrMissingChatID is returned when chat creation succeeds without an id.
	ErrMissingChatID = errors.New("create chat response has no chat_id")
)

// HTTPError is a non-2xx response. Body holds the raw response text.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Body)
}

// UnreachableError wraps a transport failure.
type UnreachableError struct {
	Method string
	Path   string
	Err    error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUnreachable) true.
func (e *UnreachableError) Is(target error) bool { return target == ErrUnreachable }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

// IsUnauthorized reports whether the backend answered 401.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// Retryable reports whether repeating the request may succeed:
// transport failures and 5xx responses.
func Retryable(err error) bool {
	if errors.Is(err, ErrUnreachable) {
		return true
	}
	return StatusOf(err) >= 500
}
