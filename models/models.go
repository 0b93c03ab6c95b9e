package models

import "time"

// Post model with the fields persisted for a single post
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Author is the profile projection rendered next to a post
type Author struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// PostWithAuthor is the joined projection rendered everywhere. It is derived
// per query and never persisted. The author is either a resolved profile or
// the deleted-user placeholder, never empty.
type PostWithAuthor struct {
	Post   Post   `json:"post"`
	Author Author `json:"author"`
}

// DeletedUsername is the display handle of the placeholder author
// substituted when a post's author no longer resolves.
const DeletedUsername = "Deleted User"
