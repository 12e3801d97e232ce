package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Jakkalsie/thought-scratching/internal/store"
	"go.uber.org/zap"
)

// DefaultRevalidate is how long a cached rendering stays fresh.
const DefaultRevalidate = 10 * time.Second

// renderFunc produces the cacheable HTML fragment for a post id.
type renderFunc func(ctx context.Context, id string) (string, error)

// PageCache serves pre-rendered post fragments with
// stale-while-revalidate semantics: a cached fragment is returned
// immediately, and once it is older than the revalidation window a
// single background refresh is started. Ids the cache has never seen
// render on demand and are cached afterwards.
type PageCache struct {
	mu      sync.Mutex
	entries map[string]*pageEntry

	revalidate  time.Duration
	render      renderFunc
	sugarLogger *zap.SugaredLogger
}

type pageEntry struct {
	html       string
	renderedAt time.Time
	refreshing bool
}

func NewPageCache(revalidate time.Duration, render renderFunc, logger *zap.SugaredLogger) *PageCache {
	if revalidate <= 0 {
		revalidate = DefaultRevalidate
	}

	return &PageCache{
		entries:     map[string]*pageEntry{},
		revalidate:  revalidate,
		render:      render,
		sugarLogger: logger,
	}
}

// Warm pre-renders the given ids, enumerated at startup from the
// store. Failures are logged and skipped; those ids fall back to
// on-demand rendering.
func (c *PageCache) Warm(ctx context.Context, ids []string) {
	for _, id := range ids {
		if _, err := c.Get(ctx, id); err != nil {
			c.sugarLogger.Errorw("page pre-render failed", "id", id, "err", err)
		}
	}
}

// Get returns the fragment for id. Stale entries are still served;
// the refresh happens behind the response.
func (c *PageCache) Get(ctx context.Context, id string) (string, error) {
	c.mu.Lock()

	e, ok := c.entries[id]
	if ok {
		html := e.html
		if time.Since(e.renderedAt) >= c.revalidate && !e.refreshing {
			e.refreshing = true

			go c.refresh(id)
		}
		c.mu.Unlock()

		return html, nil
	}

	c.mu.Unlock()

	// Blocking fallback: first request for an unknown id renders on
	// demand, then caches.
	html, err := c.render(ctx, id)
	if err != nil {
		return "", err
	}

	c.put(id, html)

	return html, nil
}

// Forget drops a cached entry, used when a refresh discovers the post
// is gone.
func (c *PageCache) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
}

func (c *PageCache) refresh(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	html, err := c.render(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// The post disappeared since the last rendering; stop serving it.
		c.Forget(id)

		return
	}

	if err != nil {
		c.sugarLogger.Errorw("page refresh failed", "id", id, "err", err)

		c.mu.Lock()
		if e, ok := c.entries[id]; ok {
			e.refreshing = false
		}
		c.mu.Unlock()

		return
	}

	c.put(id, html)
}

func (c *PageCache) put(id, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = &pageEntry{html: html, renderedAt: time.Now()}
}
