package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jakkalsie/thought-scratching/internal/model"
)

// ErrNotFound is returned when the referenced post id is absent.
var ErrNotFound = errors.New("post not found")

// ErrUserNotFound is returned when the referenced user id is absent.
var ErrUserNotFound = errors.New("user not found")

// Store is the persistence adapter for users and posts. It is
// constructed once in main and handed to the components that need it;
// there is no package-level client. Post reads join the author row.
// Every failure other than the sentinel not-found errors is wrapped so
// driver detail stays below this boundary.
type Store interface {
	// UpsertUser creates or refreshes a user row. Called by the
	// identity provider adapter on sign-in.
	UpsertUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)

	// CreatePost assigns the post id and creation time, then persists.
	CreatePost(ctx context.Context, p *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	// ListPosts returns a snapshot of all posts, newest first.
	ListPosts(ctx context.Context) ([]*model.Post, error)
	// ListPostIDs enumerates every current post id, for page
	// pre-rendering.
	ListPostIDs(ctx context.Context) ([]string, error)
	UpdatePost(ctx context.Context, id, title, content string) (*model.Post, error)
	UpdatePostImage(ctx context.Context, id, image string) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error

	Close()
}

func wrapErr(op string, err error) error {
	return fmt.Errorf("store: %s: %w", op, err)
}
