// Package client is a typed Go client for the post procedure surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a running server. Token, when set, is sent as the
// bearer credential on every call.
type Client struct {
	http.Client
	Addr  string
	Token string
}

// Post mirrors the wire shape of a post payload.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	Author    *Author   `json:"author,omitempty"`
}

type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// APIError is the structured error body procedures return on failure.
type APIError struct {
	StatusText string `json:"status"`
	Kind       string `json:"kind"`
	ErrorText  string `json:"error,omitempty"`

	HTTPStatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.StatusText, e.Kind)
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (c *Client) GetOne(ctx context.Context, id string) (*Post, error) {
	q := url.Values{}
	q.Set("id", id)

	var p Post
	if err := c.call(ctx, http.MethodGet, "/rpc/post.getOne?"+q.Encode(), nil, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (c *Client) GetAll(ctx context.Context) ([]*Post, error) {
	var posts []*Post
	if err := c.call(ctx, http.MethodGet, "/rpc/post.getAll", nil, &posts); err != nil {
		return nil, err
	}

	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, title, content string) (*Post, error) {
	in := map[string]string{"title": title, "content": content}

	var p Post
	if err := c.call(ctx, http.MethodPost, "/rpc/post.createPost", in, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (c *Client) UpdatePost(ctx context.Context, id, title, content string) (*Post, error) {
	in := map[string]string{"id": id, "title": title, "content": content}

	var p Post
	if err := c.call(ctx, http.MethodPost, "/rpc/post.updatePost", in, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (c *Client) RefetchImage(ctx context.Context, id string) (*Post, error) {
	in := map[string]string{"id": id}

	var p Post
	if err := c.call(ctx, http.MethodPost, "/rpc/post.refetchImage", in, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	in := map[string]string{"id": id}

	return c.call(ctx, http.MethodPost, "/rpc/post.deletePost", in, nil)
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Addr+path, body)
	if err != nil {
		return err
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{HTTPStatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			return fmt.Errorf("server returned %d", resp.StatusCode)
		}

		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
