package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jakkalsie/thought-scratching/internal/auth"
	"github.com/Jakkalsie/thought-scratching/internal/imagecdn"
	"github.com/Jakkalsie/thought-scratching/internal/post"
	"github.com/Jakkalsie/thought-scratching/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/zap"
)

type wirePost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	AuthorID  string `json:"authorId"`
	CreatedAt string `json:"createdAt"`

	Author *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"author"`
}

type wireError struct {
	StatusText string `json:"status"`
	Kind       string `json:"kind"`
}

// newTestServer stands up the procedure surface exactly as main wires
// it: verifier middleware, JSON content type, namespaced routes.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(cdn.Close)

	m := store.NewMemory()
	logger := zap.NewNop().Sugar()

	provider := &auth.StaticProvider{
		Tokens: map[string]auth.Session{
			"admin-token": {UserID: "u-admin", Name: "Ada Admin", IsAdmin: true},
			"plain-token": {UserID: "u-plain", Name: "Pat Plain"},
		},
	}

	service := post.NewService(m, imagecdn.New(cdn.URL), logger)

	completedCalls := metric.Must(global.Meter("rpc-test")).
		NewInt64Counter("rpc/server/completed_count").Bind()

	h := NewRouter(service, logger, completedCalls)

	r := chi.NewRouter()
	r.Use(auth.New(provider, m, logger).Verifier)
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Mount("/rpc", h.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var rd *bytes.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, rd)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func createPost(t *testing.T, srv *httptest.Server, token, title, content string) wirePost {
	t.Helper()

	resp := call(t, srv, http.MethodPost, "/rpc/post.createPost", token,
		map[string]string{"title": title, "content": content})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	var p wirePost
	decode(t, resp, &p)

	return p
}

func TestCreateThenGetOne(t *testing.T) {
	srv := newTestServer(t)

	created := createPost(t, srv, "plain-token", "Hello", "World")

	if created.AuthorID != "u-plain" {
		t.Fatalf("authorId = %q", created.AuthorID)
	}

	resp := call(t, srv, http.MethodGet, "/rpc/post.getOne?id="+created.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("getOne status = %d", resp.StatusCode)
	}

	var got wirePost
	decode(t, resp, &got)

	if got.ID != created.ID || got.Title != "Hello" {
		t.Fatalf("getOne returned %+v", got)
	}

	if got.Author == nil || got.Author.Name != "Pat Plain" {
		t.Fatalf("author payload missing: %+v", got.Author)
	}
}

func TestGetOneAbsent(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, http.MethodGet, "/rpc/post.getOne?id=missing", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	var e wireError
	decode(t, resp, &e)

	if e.Kind != "NOT_FOUND" {
		t.Fatalf("kind = %q, want NOT_FOUND", e.Kind)
	}
}

func TestGetAllOrdering(t *testing.T) {
	srv := newTestServer(t)

	createPost(t, srv, "plain-token", "first", "c")
	createPost(t, srv, "plain-token", "second", "c")

	resp := call(t, srv, http.MethodGet, "/rpc/post.getAll", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var list []wirePost
	decode(t, resp, &list)

	if len(list) != 2 || list[0].Title != "second" {
		t.Fatalf("not newest-first: %+v", list)
	}
}

func TestMutationsRequireSession(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct {
		path string
		body map[string]string
	}{
		{"/rpc/post.createPost", map[string]string{"title": "t", "content": "c"}},
		{"/rpc/post.updatePost", map[string]string{"id": "x", "title": "t", "content": "c"}},
		{"/rpc/post.refetchImage", map[string]string{"id": "x"}},
		{"/rpc/post.deletePost", map[string]string{"id": "x"}},
	} {
		resp := call(t, srv, http.MethodPost, tc.path, "", tc.body)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want 401", tc.path, resp.StatusCode)
		}

		var e wireError
		decode(t, resp, &e)

		if e.Kind != "UNAUTHORIZED" {
			t.Fatalf("%s kind = %q, want UNAUTHORIZED", tc.path, e.Kind)
		}
	}

	resp := call(t, srv, http.MethodGet, "/rpc/post.getAll", "", nil)

	var list []wirePost
	decode(t, resp, &list)

	if len(list) != 0 {
		t.Fatal("rejected mutations reached the store")
	}
}

func TestEditNeedsAdmin(t *testing.T) {
	srv := newTestServer(t)

	created := createPost(t, srv, "plain-token", "Hello", "World")

	resp := call(t, srv, http.MethodPost, "/rpc/post.updatePost", "plain-token",
		map[string]string{"id": created.ID, "title": "Hi", "content": "World"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("non-admin update status = %d, want 401", resp.StatusCode)
	}

	resp = call(t, srv, http.MethodPost, "/rpc/post.updatePost", "admin-token",
		map[string]string{"id": created.ID, "title": "Hi", "content": "World"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin update status = %d", resp.StatusCode)
	}

	var updated wirePost
	decode(t, resp, &updated)

	if updated.Title != "Hi" || updated.AuthorID != created.AuthorID {
		t.Fatalf("update wrong: %+v", updated)
	}
}

func TestValidationFailsFast(t *testing.T) {
	srv := newTestServer(t)

	resp := call(t, srv, http.MethodPost, "/rpc/post.createPost", "plain-token",
		map[string]string{"title": "", "content": "c"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var e wireError
	decode(t, resp, &e)

	if e.Kind != "BAD_REQUEST" {
		t.Fatalf("kind = %q, want BAD_REQUEST", e.Kind)
	}
}

func TestDeleteLifecycle(t *testing.T) {
	srv := newTestServer(t)

	created := createPost(t, srv, "plain-token", "Hello", "World")

	resp := call(t, srv, http.MethodPost, "/rpc/post.deletePost", "admin-token",
		map[string]string{"id": created.ID})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp = call(t, srv, http.MethodGet, "/rpc/post.getOne?id="+created.ID, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}

	resp = call(t, srv, http.MethodPost, "/rpc/post.deletePost", "admin-token",
		map[string]string{"id": created.ID})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
}
