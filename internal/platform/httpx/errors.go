// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors understood by RespondError.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps errors to HTTP responses using RFC7807. Unknown errors
// become a 500 without detail.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", detail(err, ErrBadRequest))
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", detail(err, ErrNotFound))
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", detail(err, ErrUnauthorized))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// BadRequest marks err as a client input error.
func BadRequest(err error) error {
	return &classified{kind: ErrBadRequest, err: err}
}

type classified struct {
	kind error
	err  error
}

func (c *classified) Error() string   { return c.err.Error() }
func (c *classified) Unwrap() []error { return []error{c.kind, c.err} }

// detail drops the classification prefix so clients see the domain message.
func detail(err, kind error) string {
	var c *classified
	if errors.As(err, &c) && c.kind == kind {
		return c.err.Error()
	}
	return err.Error()
}
