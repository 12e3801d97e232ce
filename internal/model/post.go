package model

import "time"

// Post data model. IDs are server-generated, authors immutable after
// creation. Author is filled by store reads that join the users table.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`

	Author *User `json:"-"`
}
