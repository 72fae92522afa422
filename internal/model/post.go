package model

import "time"

// Post keeps its UserID after the owning user is deleted; the author is
// resolved at read time and rendered as a deleted user when missing.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostView is a post with its author resolved for display. AuthorDeleted is
// set when the owning user no longer exists.
type PostView struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	AuthorID      uint      `json:"author_id"`
	Author        string    `json:"author"`
	AuthorDeleted bool      `json:"author_deleted"`
}
