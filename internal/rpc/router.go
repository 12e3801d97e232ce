// Package rpc exposes the post access API as named procedures over
// HTTP: queries as GETs, mutations as POSTs, all under the post
// namespace.
package rpc

import (
	"net/http"

	"github.com/Jakkalsie/thought-scratching/internal/auth"
	"github.com/Jakkalsie/thought-scratching/internal/errresponse"
	"github.com/Jakkalsie/thought-scratching/internal/post"
	"github.com/Jakkalsie/thought-scratching/internal/postrequest"
	"github.com/Jakkalsie/thought-scratching/internal/postresponse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

type Router struct {
	service        *post.Service
	sugarLogger    *zap.SugaredLogger
	completedCalls metric.BoundInt64Counter
}

func NewRouter(service *post.Service, logger *zap.SugaredLogger, completedCalls metric.BoundInt64Counter) *Router {
	return &Router{
		service:        service,
		sugarLogger:    logger,
		completedCalls: completedCalls,
	}
}

// Routes mounts every procedure of the post namespace.
func (h *Router) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/post.getOne", h.GetOne)
	r.Get("/post.getAll", h.GetAll)
	r.Post("/post.createPost", h.CreatePost)
	r.Post("/post.updatePost", h.UpdatePost)
	r.Post("/post.refetchImage", h.RefetchImage)
	r.Post("/post.deletePost", h.DeletePost)

	return r
}

// GetOne returns the post with its author profile. Public.
func (h *Router) GetOne(w http.ResponseWriter, r *http.Request) {
	defer h.completedCalls.Add(r.Context(), 1)

	p, err := h.service.GetOne(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		h.renderError(w, r, err)

		return
	}

	h.render(w, r, postresponse.NewPostResponse(p))
}

// GetAll returns every post, newest first. Public.
func (h *Router) GetAll(w http.ResponseWriter, r *http.Request) {
	defer h.completedCalls.Add(r.Context(), 1)

	posts, err := h.service.GetAll(r.Context())
	if err != nil {
		h.renderError(w, r, err)

		return
	}

	if err := render.RenderList(w, r, postresponse.NewPostListResponse(posts)); err != nil {
		h.renderError(w, r, err)
	}
}

// CreatePost persists a new post owned by the caller and returns it
// back to the client as an acknowledgement.
func (h *Router) CreatePost(w http.ResponseWriter, r *http.Request) {
	defer h.completedCalls.Add(r.Context(), 1)

	data := &postrequest.CreatePostRequest{}
	if err := render.Bind(r, data); err != nil {
		h.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	p, err := h.service.CreatePost(r.Context(), auth.FromContext(r.Context()), data.Title, data.Content)
	if err != nil {
		h.renderError(w, r, err)

		return
	}

	render.Status(r, http.StatusCreated)
	h.render(w, r, postresponse.NewPostResponse(p))
}

// UpdatePost rewrites an existing post's title and content.
func (h *Router) UpdatePost(w http.ResponseWriter, r *http.Request) {
	defer h.completedCalls.Add(r.Context(), 1)

	data := &postrequest.UpdatePostRequest{}
	if err := render.Bind(r, data); err != nil {
		h.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	p, err := h.service.UpdatePost(r.Context(), auth.FromContext(r.Context()), data.ID, data.Title, data.Content)
	if err != nil {
		h.renderError(w, r, err)

		return
	}

	h.render(w, r, postresponse.NewPostResponse(p))
}

// RefetchImage swaps the post's header image for a fresh one.
func (h *Router) RefetchImage(w http.ResponseWriter, r *http.Request) {
	defer h.completedCalls.Add(r.Context(), 1)

	data := &postrequest.PostIDRequest{}
	if err := render.Bind(r, data); err != nil {
		h.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	p, err := h.service.RefetchImage(r.Context(), auth.FromContext(r.Context()), data.ID)
	if err != nil {
		h.renderError(w, r, err)

		return
	}

	h.render(w, r, postresponse.NewPostResponse(p))
}

// DeletePost removes an existing post.
func (h *Router) DeletePost(w http.ResponseWriter, r *http.Request) {
	defer h.completedCalls.Add(r.Context(), 1)

	data := &postrequest.PostIDRequest{}
	if err := render.Bind(r, data); err != nil {
		h.renderErr(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	err := h.service.DeletePost(r.Context(), auth.FromContext(r.Context()), data.ID)
	if err != nil {
		h.renderError(w, r, err)

		return
	}

	render.NoContent(w, r)
}

func (h *Router) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		h.renderErr(w, r, errresponse.ErrRender(err))
	}
}

func (h *Router) renderError(w http.ResponseWriter, r *http.Request, err error) {
	h.sugarLogger.Errorw("procedure failed", "path", r.URL.Path, "err", err)
	h.renderErr(w, r, errresponse.FromError(err))
}

func (h *Router) renderErr(w http.ResponseWriter, r *http.Request, e render.Renderer) {
	if err := render.Render(w, r, e); err != nil {
		h.sugarLogger.Errorw(err.Error())
	}
}
