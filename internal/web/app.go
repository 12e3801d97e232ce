// Package web renders the site's pages on top of the post access API.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/Jakkalsie/thought-scratching/internal/auth"
	"github.com/Jakkalsie/thought-scratching/internal/post"
	"github.com/Jakkalsie/thought-scratching/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	sugarLogger *zap.SugaredLogger
	service     *post.Service
	templates   *Templates
	cache       *PageCache
	signInURL   string
}

func NewApp(service *post.Service, logger *zap.SugaredLogger, revalidate time.Duration, signInURL string) (*App, error) {
	templates, err := NewTemplates()
	if err != nil {
		return nil, err
	}

	app := &App{
		sugarLogger: logger,
		service:     service,
		templates:   templates,
		signInURL:   signInURL,
	}

	app.cache = NewPageCache(revalidate, app.renderArticle, logger)

	return app, nil
}

// Warm pre-renders the view page for every current post id, the
// static-path enumeration done once at startup.
func (app *App) Warm(ctx context.Context, ids []string) {
	app.cache.Warm(ctx, ids)
}

func (app *App) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", app.Home)
	r.Route("/posts/{postID}", func(r chi.Router) {
		r.Get("/", app.ViewPost)
		r.With(app.requireAuth).Get("/edit", app.EditPost)
		r.With(app.requireAuth).Post("/edit", app.SavePost)
		r.With(app.requireAuth).Post("/delete", app.DeletePost)
	})

	return r
}

// requireAuth blocks the edit flow for anonymous visitors. Protected
// pages are never cacheable.
func (app *App) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")

		if auth.FromContext(r.Context()) == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *App) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := app.service.GetAll(r.Context())
	if err != nil {
		app.serverError(w, r, err)

		return
	}

	app.RenderHTML(w, "home.page.html", &HTMLData{
		Session:   auth.FromContext(r.Context()),
		SignInURL: app.signInURL,
		Posts:     posts,
	})
}

// ViewPost serves the cached article fragment wrapped in per-request
// chrome, so the cached part stays viewer-independent while the
// admin-only edit affordance still follows the session.
func (app *App) ViewPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")

	fragment, err := app.cache.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		app.notFound(w, r)

		return
	}

	if err != nil {
		app.serverError(w, r, err)

		return
	}

	app.RenderHTML(w, "post.page.html", &HTMLData{
		Session:   auth.FromContext(r.Context()),
		SignInURL: app.signInURL,
		PostID:    id,
		Article:   template.HTML(fragment),
	})
}

// EditPost fetches the post once and hands it to the form; from here
// until save, the form fields are the only copy being edited and the
// store is untouched.
func (app *App) EditPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")

	p, err := app.service.GetOne(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		app.notFound(w, r)

		return
	}

	if err != nil {
		app.serverError(w, r, err)

		return
	}

	app.RenderHTML(w, "edit.page.html", &HTMLData{
		Session:   auth.FromContext(r.Context()),
		SignInURL: app.signInURL,
		Post:      p,
		PostID:    id,
	})
}

// SavePost persists the edit buffer and returns the viewer to the
// post. A failed save is terminal for the action: no retry, and no
// navigation.
func (app *App) SavePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")

	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, err)

		return
	}

	title := strings.TrimSpace(r.PostForm.Get("title"))
	content := r.PostForm.Get("content")

	_, err := app.service.UpdatePost(r.Context(), auth.FromContext(r.Context()), id, title, content)
	if err != nil {
		app.actionError(w, r, err)

		return
	}

	http.Redirect(w, r, "/posts/"+id, http.StatusSeeOther)
}

// DeletePost removes the post, then navigates home. Navigation only
// happens after the delete succeeded.
func (app *App) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")

	err := app.service.DeletePost(r.Context(), auth.FromContext(r.Context()), id)
	if err != nil {
		app.actionError(w, r, err)

		return
	}

	app.cache.Forget(id)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderArticle is the cache's render function: fetch through the post
// access API, render the fragment.
func (app *App) renderArticle(ctx context.Context, id string) (string, error) {
	p, err := app.service.GetOne(ctx, id)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := app.templates.RenderArticle(&buf, p); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (app *App) notFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	app.RenderHTML(w, "error.page.html", &HTMLData{
		Session:   auth.FromContext(r.Context()),
		SignInURL: app.signInURL,
		Error:     "That post does not exist.",
	})
}

func (app *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.sugarLogger.Errorw("page failed", "path", r.URL.Path, "err", err)

	w.WriteHeader(http.StatusInternalServerError)
	app.RenderHTML(w, "error.page.html", &HTMLData{
		Session:   auth.FromContext(r.Context()),
		SignInURL: app.signInURL,
		Error:     "Something broke on our side.",
	})
}

func (app *App) clientError(w http.ResponseWriter, r *http.Request, err error) {
	app.sugarLogger.Errorw("bad page request", "path", r.URL.Path, "err", err)

	w.WriteHeader(http.StatusBadRequest)
	app.RenderHTML(w, "error.page.html", &HTMLData{
		Session:   auth.FromContext(r.Context()),
		SignInURL: app.signInURL,
		Error:     "That request made no sense.",
	})
}

// actionError reports a failed save or delete without navigating away,
// so the edit buffer's fate is visible to the user.
func (app *App) actionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		app.notFound(w, r)
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, post.ErrAdminOnly):
		w.WriteHeader(http.StatusForbidden)
		app.RenderHTML(w, "error.page.html", &HTMLData{
			Session:   auth.FromContext(r.Context()),
			SignInURL: app.signInURL,
			Error:     "You are not allowed to do that.",
		})
	default:
		var verr *post.ValidationError
		if errors.As(err, &verr) {
			app.clientError(w, r, err)

			return
		}

		app.serverError(w, r, err)
	}
}
