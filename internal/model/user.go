package model

// User data model. Rows are created and refreshed by the identity
// provider adapter on sign-in; the post API never writes them.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	IsAdmin bool   `json:"isAdmin"`
}
