package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jakkalsie/thought-scratching/internal/store"
	"go.uber.org/zap"
)

func newVerified(t *testing.T, provider Provider, st store.Store) http.Handler {
	t.Helper()

	a := New(provider, st, zap.NewNop().Sugar())

	return a.Verifier(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := FromContext(r.Context()); sess != nil {
			w.Write([]byte(sess.UserID))

			return
		}

		w.Write([]byte("anonymous"))
	}))
}

func TestVerifierResolvesBearerToken(t *testing.T) {
	m := store.NewMemory()
	provider := &StaticProvider{Tokens: map[string]Session{
		"tok": {UserID: "u1", Name: "Peter Parker", IsAdmin: true},
	}}

	h := newVerified(t, provider, m)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Body.String() != "u1" {
		t.Fatalf("handler saw %q, want session user", rec.Body.String())
	}

	// Sign-in must have created the user row.
	u, err := m.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("user not upserted: %v", err)
	}

	if u.Name != "Peter Parker" || !u.IsAdmin {
		t.Fatalf("user row wrong: %+v", u)
	}
}

func TestVerifierResolvesCookie(t *testing.T) {
	m := store.NewMemory()
	provider := &StaticProvider{Tokens: map[string]Session{
		"tok": {UserID: "u1"},
	}}

	h := newVerified(t, provider, m)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok"})
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Body.String() != "u1" {
		t.Fatalf("handler saw %q, want session user", rec.Body.String())
	}
}

func TestVerifierAnonymousPassThrough(t *testing.T) {
	m := store.NewMemory()
	h := newVerified(t, &StaticProvider{}, m)

	for name, req := range map[string]*http.Request{
		"no token":      httptest.NewRequest(http.MethodGet, "/", nil),
		"unknown token": withBearer(httptest.NewRequest(http.MethodGet, "/", nil), "nope"),
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Body.String() != "anonymous" {
			t.Fatalf("%s: handler saw %q, want anonymous", name, rec.Body.String())
		}
	}
}

func withBearer(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)

	return r
}

func TestHTTPProviderVerify(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		valid := r.URL.Query().Get("token") == "good"
		json.NewEncoder(w).Encode(map[string]interface{}{
			"valid":  valid,
			"userId": "u1",
			"name":   "Peter Parker",
			"image":  "https://example.com/p.webp",
			"admin":  true,
		})
	}))
	defer idp.Close()

	p := NewHTTPProvider(idp.URL)

	sess, err := p.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if sess == nil || sess.UserID != "u1" || !sess.IsAdmin {
		t.Fatalf("session wrong: %+v", sess)
	}

	sess, err = p.Verify(context.Background(), "bad")
	if err != nil {
		t.Fatalf("verify invalid token: %v", err)
	}

	if sess != nil {
		t.Fatalf("invalid token yielded session %+v", sess)
	}
}

func TestHTTPProviderEndpointFailure(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer idp.Close()

	p := NewHTTPProvider(idp.URL)

	if _, err := p.Verify(context.Background(), "tok"); err == nil {
		t.Fatal("expected an error from a failing endpoint")
	}
}
