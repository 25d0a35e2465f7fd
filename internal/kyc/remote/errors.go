package remote

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed remote call.
type ErrorKind string

const (
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork ErrorKind = "network"
	// KindHTTP: the authority answered with a non-2xx status.
	KindHTTP ErrorKind = "http"
	// KindNotFound: the authority answered 404.
	KindNotFound ErrorKind = "not_found"
	// KindDecode: a 2xx response body could not be decoded.
	KindDecode ErrorKind = "decode"
	// KindUnavailable: the circuit breaker is open; no request was sent.
	KindUnavailable ErrorKind = "unavailable"
)

// Error is the single failure shape returned by Client. Message holds the
// authority's own wording when its error body carried one.
type Error struct {
	Kind    ErrorKind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("kyc remote %s [%s %d]: %s", e.Op, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("kyc remote %s [%s]: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// errorBody is the authority's error payload: {message?, error?}.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// messageFromBody extracts the display message from an error payload,
// preferring "message" over "error".
func messageFromBody(body []byte) string {
	var eb errorBody
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}

// MessageOf returns the authority's message carried by err, or fallback when
// err is nil or carries none.
func MessageOf(err error, fallback string) string {
	var re *Error
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}

// KindOf returns the kind of a remote error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
