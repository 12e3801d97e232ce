// Package imagecdn fetches random header images for posts from an
// image CDN that redirects to a concrete image URL.
package imagecdn

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const DefaultBase = "https://random.imagecdn.app"

type Client struct {
	Base string
	HTTP *http.Client
}

func New(base string) *Client {
	if base == "" {
		base = DefaultBase
	}

	return &Client{
		Base: base,
		HTTP: &http.Client{Timeout: 5 * time.Second},
	}
}

// RandomURL requests {base}/{width}/{height} and returns the URL the
// CDN redirected to.
func (c *Client) RandomURL(ctx context.Context, width, height int) (string, error) {
	u := fmt.Sprintf("%s/%d/%d", c.Base, width, height)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("imagecdn: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("imagecdn: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imagecdn: cdn returned %d", resp.StatusCode)
	}

	return resp.Request.URL.String(), nil
}
