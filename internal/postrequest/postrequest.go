package postrequest

import (
	"errors"
	"net/http"
	"strings"
)

//--
// Request payloads for the post procedures.
//
// Bind runs after unmarshalling and is where the structural checks
// live: a request that fails here never reaches the store.
//--

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p *CreatePostRequest) Bind(r *http.Request) error {
	return requireTitleContent(p.Title, p.Content)
}

type UpdatePostRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (p *UpdatePostRequest) Bind(r *http.Request) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("missing required id field")
	}

	return requireTitleContent(p.Title, p.Content)
}

// PostIDRequest is the input for procedures addressing a post by id
// alone: deletePost and refetchImage.
type PostIDRequest struct {
	ID string `json:"id"`
}

func (p *PostIDRequest) Bind(r *http.Request) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("missing required id field")
	}

	return nil
}

func requireTitleContent(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("missing required title field")
	}

	if strings.TrimSpace(content) == "" {
		return errors.New("missing required content field")
	}

	return nil
}
