package userpayload

import (
	"net/http"

	"github.com/Jakkalsie/thought-scratching/internal/model"
)

// UserPayload is the public author profile embedded in post responses.
// The capability flag stays server-side.
type UserPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func NewUserPayloadResponse(user *model.User) *UserPayload {
	return &UserPayload{
		ID:    user.ID,
		Name:  user.Name,
		Image: user.Image,
	}
}

func (u *UserPayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
