package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Jakkalsie/thought-scratching/internal/model"
	"github.com/google/uuid"
)

// Memory is an in-process Store used when no database is configured,
// and by unit tests. Reads hand out copies so callers never share
// memory with the store.
type Memory struct {
	mu    sync.RWMutex
	users map[string]model.User
	posts map[string]model.Post

	// now is swappable so tests can pin creation times.
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users: map[string]model.User{},
		posts: map[string]model.Post{},
		now:   time.Now,
	}
}

func (m *Memory) UpsertUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[u.ID] = *u

	return nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	return &u, nil
}

func (m *Memory) CreatePost(ctx context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = m.now().UTC()
	m.posts[p.ID] = *p

	return nil
}

func (m *Memory) GetPost(ctx context.Context, id string) (*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}

	return m.joined(&p), nil
}

func (m *Memory) ListPosts(ctx context.Context) ([]*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*model.Post, 0, len(m.posts))
	for id := range m.posts {
		p := m.posts[id]
		list = append(list, m.joined(&p))
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	return list, nil
}

func (m *Memory) ListPostIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.posts))
	for id := range m.posts {
		ids = append(ids, id)
	}

	return ids, nil
}

func (m *Memory) UpdatePost(ctx context.Context, id, title, content string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}

	p.Title = title
	p.Content = content
	m.posts[id] = p

	return m.joined(&p), nil
}

func (m *Memory) UpdatePostImage(ctx context.Context, id, image string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}

	p.Image = image
	m.posts[id] = p

	return m.joined(&p), nil
}

func (m *Memory) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}

	delete(m.posts, id)

	return nil
}

func (m *Memory) Close() {}

// joined attaches a copy of the author row. Callers hold at least the
// read lock.
func (m *Memory) joined(p *model.Post) *model.Post {
	if u, ok := m.users[p.AuthorID]; ok {
		p.Author = &u
	}

	return p
}
