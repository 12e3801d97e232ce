package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider asks an external identity endpoint whether a token is
// valid. The endpoint is expected to answer
// GET {endpoint}?token=... with a JSON body:
//
//	{"valid": true, "userId": "...", "name": "...", "image": "...", "admin": false}
type HTTPProvider struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPProvider(endpoint string) *HTTPProvider {
	return &HTTPProvider{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 3 * time.Second},
	}
}

func (p *HTTPProvider) Verify(ctx context.Context, token string) (*Session, error) {
	q := url.Values{}
	q.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("auth: build verify request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: verify call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: verify endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		Valid  bool   `json:"valid"`
		UserID string `json:"userId"`
		Name   string `json:"name"`
		Image  string `json:"image"`
		Admin  bool   `json:"admin"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("auth: decode verify response: %w", err)
	}

	if !body.Valid || body.UserID == "" {
		return nil, nil
	}

	return &Session{
		UserID:  body.UserID,
		Name:    body.Name,
		Image:   body.Image,
		IsAdmin: body.Admin,
	}, nil
}
