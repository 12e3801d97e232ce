// Package post is the post access API: every read and write of post
// records goes through Service, which enforces validation and the
// authorization policy and translates store failures, independent of
// the transport that carried the call.
package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Jakkalsie/thought-scratching/internal/auth"
	"github.com/Jakkalsie/thought-scratching/internal/imagecdn"
	"github.com/Jakkalsie/thought-scratching/internal/model"
	"github.com/Jakkalsie/thought-scratching/internal/store"
	"go.uber.org/zap"
)

// ErrAdminOnly is returned when a signed-in caller without the admin
// capability invokes an admin-tier operation. Edit and delete are
// enforced here, not just hidden in the UI.
var ErrAdminOnly = errors.New("administrator capability required")

// Header image dimensions requested from the CDN.
const (
	imageWidth  = 960
	imageHeight = 560
)

// ValidationError rejects malformed input before any store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type Service struct {
	store       store.Store
	images      *imagecdn.Client
	sugarLogger *zap.SugaredLogger
}

func NewService(st store.Store, images *imagecdn.Client, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:       st,
		images:      images,
		sugarLogger: logger,
	}
}

// GetOne returns the post with its author profile, or store.ErrNotFound
// when the id is absent. Public, no side effects.
func (s *Service) GetOne(ctx context.Context, id string) (*model.Post, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "required"}
	}

	return s.store.GetPost(ctx, id)
}

// GetAll returns a snapshot of all posts with author profiles, newest
// first. Public.
func (s *Service) GetAll(ctx context.Context) ([]*model.Post, error) {
	return s.store.ListPosts(ctx)
}

// CreatePost creates a post owned by the caller. Any signed-in user may
// create. The header image comes from the CDN; a CDN failure only costs
// the image, never the post.
func (s *Service) CreatePost(ctx context.Context, sess *auth.Session, title, content string) (*model.Post, error) {
	if sess == nil {
		return nil, auth.ErrUnauthenticated
	}

	if err := validatePostInput(title, content); err != nil {
		return nil, err
	}

	image, err := s.images.RandomURL(ctx, imageWidth, imageHeight)
	if err != nil {
		s.sugarLogger.Errorw("header image fetch failed", "err", err)

		image = ""
	}

	p := &model.Post{
		Title:    title,
		Content:  content,
		Image:    image,
		AuthorID: sess.UserID,
	}

	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, err
	}

	return s.store.GetPost(ctx, p.ID)
}

// UpdatePost rewrites title and content of an existing post. Admin
// tier. Author and creation time are never touched.
func (s *Service) UpdatePost(ctx context.Context, sess *auth.Session, id, title, content string) (*model.Post, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "required"}
	}

	if err := validatePostInput(title, content); err != nil {
		return nil, err
	}

	return s.store.UpdatePost(ctx, id, title, content)
}

// RefetchImage replaces the post's header image with a fresh one from
// the CDN. Admin tier.
func (s *Service) RefetchImage(ctx context.Context, sess *auth.Session, id string) (*model.Post, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "required"}
	}

	image, err := s.images.RandomURL(ctx, imageWidth, imageHeight)
	if err != nil {
		return nil, err
	}

	return s.store.UpdatePostImage(ctx, id, image)
}

// DeletePost removes a post. Admin tier. Deleting an absent id fails
// with store.ErrNotFound.
func (s *Service) DeletePost(ctx context.Context, sess *auth.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}

	if id == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}

	return s.store.DeletePost(ctx, id)
}

func requireAdmin(sess *auth.Session) error {
	if sess == nil {
		return auth.ErrUnauthenticated
	}

	if !sess.IsAdmin {
		return ErrAdminOnly
	}

	return nil
}

func validatePostInput(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}

	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Reason: "required"}
	}

	return nil
}
