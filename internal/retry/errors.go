package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
)

// Kind tags a failure so retry decisions don't depend on message text.
type Kind int

const (
	KindOther Kind = iota
	KindTimeout
	KindHTTPStatus
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindNetwork:
		return "network"
	default:
		return "other"
	}
}

// Error is the structured failure produced by FetchWithRetry.
type Error struct {
	Kind       Kind
	StatusCode int // set for KindHTTPStatus
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	case KindTimeout:
		return "timeout: " + errText(e.Err)
	case KindNetwork:
		return "network: " + errText(e.Err)
	default:
		return errText(e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// StatusError converts a response status into a KindHTTPStatus error.
func StatusError(code int) *Error {
	return &Error{Kind: KindHTTPStatus, StatusCode: code}
}

// TransportError tags an error returned by an HTTP client.
func TransportError(err error) *Error {
	if IsTimeout(err) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

// IsTimeout reports whether err is a deadline or a network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Retryable reports whether err is transient given the retryable statuses.
// Tagged errors are classified by kind; anything else falls back to
// matching "timeout", "503" or "504" in the message.
func Retryable(err error, statuses []int) bool {
	if err == nil {
		return false
	}
	var re *Error
	if errors.As(err, &re) {
		switch re.Kind {
		case KindHTTPStatus:
			return slices.Contains(statuses, re.StatusCode)
		case KindTimeout:
			return true
		case KindNetwork:
			return false
		}
	}
	if IsTimeout(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "503") || strings.Contains(msg, "504")
}

var errBodyConsumed = errors.New("request body already consumed and cannot be replayed")
