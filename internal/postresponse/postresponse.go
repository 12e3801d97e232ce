package postresponse

import (
	"net/http"

	"github.com/Jakkalsie/thought-scratching/internal/model"
	"github.com/Jakkalsie/thought-scratching/internal/userpayload"
	"github.com/go-chi/render"
)

// PostResponse is the response payload for the Post data model. The
// author profile the store joined in rides along as a nested payload.
type PostResponse struct {
	*model.Post

	Author *userpayload.UserPayload `json:"author,omitempty"`
}

func NewPostResponse(p *model.Post) *PostResponse {
	resp := &PostResponse{Post: p}

	if p.Author != nil {
		resp.Author = userpayload.NewUserPayloadResponse(p.Author)
	}

	return resp
}

func (rd *PostResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewPostListResponse(posts []*model.Post) []render.Renderer {
	list := []render.Renderer{}
	for _, p := range posts {
		list = append(list, NewPostResponse(p))
	}

	return list
}
