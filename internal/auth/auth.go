package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/Jakkalsie/thought-scratching/internal/model"
	"github.com/Jakkalsie/thought-scratching/internal/store"
	"go.uber.org/zap"
)

// ErrUnauthenticated is returned when an operation that needs a signed-in
// caller runs without one, or without the required capability.
var ErrUnauthenticated = errors.New("authentication required")

// Session is what the identity provider yields for a valid credential.
type Session struct {
	UserID  string
	Name    string
	Image   string
	IsAdmin bool
}

// User converts the session into the user row the provider owns.
func (s *Session) User() *model.User {
	return &model.User{
		ID:      s.UserID,
		Name:    s.Name,
		Image:   s.Image,
		IsAdmin: s.IsAdmin,
	}
}

// Provider verifies a bearer credential. A nil session with a nil error
// means "anonymous": the token was absent or simply not valid.
type Provider interface {
	Verify(ctx context.Context, token string) (*Session, error)
}

type CtxKey int8

const (
	CtxKeySession CtxKey = iota
)

// FromContext returns the session resolved by Verifier, or nil for an
// anonymous request.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(CtxKeySession).(*Session)

	return s
}

// SessionCookie carries the page-flow credential; the RPC surface uses
// the Authorization header instead.
const SessionCookie = "session"

// Auth resolves sessions for incoming requests and keeps the user table
// in step with the identity provider.
type Auth struct {
	provider    Provider
	store       store.Store
	sugarLogger *zap.SugaredLogger
}

func New(provider Provider, st store.Store, logger *zap.SugaredLogger) *Auth {
	return &Auth{
		provider:    provider,
		store:       st,
		sugarLogger: logger,
	}
}

// Verifier middleware resolves the request's credential, if any, into a
// Session on the context. Anonymous requests pass through untouched; a
// provider outage degrades to anonymous rather than failing the request.
// On a valid session the user row is upserted, which is how first
// sign-in creates the user.
func (a *Auth) Verifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			next.ServeHTTP(w, r)

			return
		}

		sess, err := a.provider.Verify(r.Context(), token)
		if err != nil {
			a.sugarLogger.Errorw("identity provider verify failed", "err", err)
			next.ServeHTTP(w, r)

			return
		}

		if sess == nil {
			next.ServeHTTP(w, r)

			return
		}

		if err := a.store.UpsertUser(r.Context(), sess.User()); err != nil {
			a.sugarLogger.Errorw("user upsert on sign-in failed", "err", err)
		}

		ctx := context.WithValue(r.Context(), CtxKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestToken(r *http.Request) string {
	const bearer = "Bearer "

	if h := r.Header.Get("Authorization"); len(h) > len(bearer) && h[:len(bearer)] == bearer {
		return h[len(bearer):]
	}

	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}

	return ""
}
