package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a single blog post stored in MongoDB. Author and Views are
// populated in responses only; the document stores just the author id.
type Post struct {
	ID         primitive.ObjectID `json:"id"                    bson:"_id,omitempty"`
	Title      string             `json:"title"                 bson:"title"`
	Content    string             `json:"content"               bson:"content"`
	Slug       string             `json:"slug"                  bson:"slug"`
	AuthorID   string             `json:"author_id"             bson:"author_id"`
	CategoryID string             `json:"category_id,omitempty" bson:"category_id,omitempty"`
	CoverKey   string             `json:"-"                     bson:"cover_key,omitempty"`
	CreatedAt  time.Time          `json:"created_at"            bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"            bson:"updated_at"`
	Author     *User              `json:"author,omitempty"      bson:"-"`
	Views      int64              `json:"views,omitempty"       bson:"-"`
}

// CreatePostRequest is the JSON body for POST /api/posts.
type CreatePostRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"category_id"`
}

// UpdatePostRequest is the JSON body for PUT /api/posts/{id}.
// Empty fields are left unchanged.
type UpdatePostRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"category_id"`
}

// PostFilter narrows and pages a post listing. Page and Limit are
// 1-based hints the storage layer turns into skip/limit.
type PostFilter struct {
	CategoryID string
	Page       int64
	Limit      int64
}
