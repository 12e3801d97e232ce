package auth

import "context"

// StaticProvider maps fixed tokens to sessions. It backs local
// development (no identity provider running) and tests.
type StaticProvider struct {
	Tokens map[string]Session
}

func (p *StaticProvider) Verify(ctx context.Context, token string) (*Session, error) {
	sess, ok := p.Tokens[token]
	if !ok {
		return nil, nil
	}

	return &sess, nil
}
