package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies provider failures for the retry policy.
type ErrorKind int

const (
	// Unavailable covers network failures and 5xx replies.
	Unavailable ErrorKind = iota
	// RateLimited is a 429.
	RateLimited
	// InvalidReply is content that is not JSON or breaks the schema.
	InvalidReply
	// Truncated is a reply cut off at MaxTokens.
	Truncated
)

func (k ErrorKind) String() string {
	switch k {
	case RateLimited:
		return "rate limited"
	case InvalidReply:
		return "invalid reply"
	case Truncated:
		return "truncated at max tokens"
	default:
		return "unavailable"
	}
}

// Error is a failed request, tagged with the provider and the purpose the
// request was made for.
type Error struct {
	Kind     ErrorKind
	Provider string
	Purpose  string

	// RetryAfter is the server's requested wait for RateLimited, if any.
	RetryAfter time.Duration

	// Content is the offending reply for InvalidReply and Truncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("llm %s request to %s: %s", e.Purpose, e.Provider, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func failure(kind ErrorKind, provider string, req Request, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Purpose: req.purposeOr(), Err: err}
}

// statusFailure maps an HTTP status from a provider SDK error.
func statusFailure(status int, provider string, req Request, err error) *Error {
	if status == http.StatusTooManyRequests {
		return failure(RateLimited, provider, req, err)
	}
	return failure(Unavailable, provider, req, err)
}
