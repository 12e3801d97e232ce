package errresponse

import (
	"errors"
	"net/http"

	"github.com/Jakkalsie/thought-scratching/internal/auth"
	"github.com/Jakkalsie/thought-scratching/internal/post"
	"github.com/Jakkalsie/thought-scratching/internal/store"
	"github.com/go-chi/render"
)

// Error kinds exposed on the wire.
const (
	KindBadRequest   = "BAD_REQUEST"
	KindUnauthorized = "UNAUTHORIZED"
	KindNotFound     = "NOT_FOUND"
	KindInternal     = "INTERNAL"
)

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	Kind       string `json:"kind"`            // machine-readable error kind
	ErrorText  string `json:"error,omitempty"` // application-level error message, for debugging
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		Kind:           KindBadRequest,
		ErrorText:      err.Error(),
	}
}

func ErrUnauthorized(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Sign in required.",
		Kind:           KindUnauthorized,
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		Kind:           KindInternal,
		ErrorText:      err.Error(),
	}
}

// ErrInternal hides the underlying failure from the caller; the real
// error is logged server-side, never serialized.
func ErrInternal(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal error.",
		Kind:           KindInternal,
	}
}

var ErrNotFound = &ErrResponse{
	HTTPStatusCode: http.StatusNotFound,
	StatusText:     "Resource not found.",
	Kind:           KindNotFound,
}

// FromError maps a post access API failure onto its wire shape.
func FromError(err error) render.Renderer {
	var verr *post.ValidationError

	switch {
	case errors.As(err, &verr):
		return ErrInvalidRequest(err)
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, post.ErrAdminOnly):
		return ErrUnauthorized(err)
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	default:
		return ErrInternal(err)
	}
}
