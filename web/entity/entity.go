// Package entity defines the JSON shapes served by the web and API layers.
package entity

import (
	"fmt"
	"time"

	"ragtime/database/model"
)

// Msg is the standard response envelope.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// Page is one page of an ordered collection. Prev and Next are present iff
// a previous/next page exists.
type Page struct {
	Items   any    `json:"items"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
	HasPrev bool   `json:"hasPrev"`
	HasNext bool   `json:"hasNext"`
	Prev    string `json:"prev,omitempty"`
	Next    string `json:"next,omitempty"`
}

// UserView is the canonical JSON projection of a user.
type UserView struct {
	URL                     string    `json:"url"`
	Username                string    `json:"username"`
	LastSeen                time.Time `json:"lastSeen"`
	AvatarURL               string    `json:"avatarUrl"`
	CompositionsURL         string    `json:"compositionsUrl"`
	FollowedCompositionsURL string    `json:"followedCompositionsUrl"`
	CompositionCount        int64     `json:"compositionCount"`
}

// NewUserView builds the projection for a user and its composition count.
func NewUserView(u *model.User, compositionCount int64) *UserView {
	return &UserView{
		URL:                     fmt.Sprintf("/api/v1/users/%d", u.Id),
		Username:                u.Username,
		LastSeen:                u.LastSeen,
		AvatarURL:               u.AvatarURL(128),
		CompositionsURL:         fmt.Sprintf("/api/v1/users/%d/compositions/", u.Id),
		FollowedCompositionsURL: fmt.Sprintf("/api/v1/users/%d/timeline/", u.Id),
		CompositionCount:        compositionCount,
	}
}

// CompositionView is the canonical JSON projection of a composition.
type CompositionView struct {
	URL             string            `json:"url"`
	ReleaseType     model.ReleaseType `json:"releaseType"`
	Title           string            `json:"title"`
	Slug            string            `json:"slug"`
	Description     string            `json:"description"`
	DescriptionHTML string            `json:"descriptionHtml"`
	Timestamp       time.Time         `json:"timestamp"`
	ArtistURL       string            `json:"artistUrl"`
	CommentsURL     string            `json:"commentsUrl"`
	CommentCount    int64             `json:"commentCount"`
}

// NewCompositionView builds the projection for a composition and its comment
// count.
func NewCompositionView(c *model.Composition, commentCount int64) *CompositionView {
	return &CompositionView{
		URL:             fmt.Sprintf("/api/v1/compositions/%d", c.Id),
		ReleaseType:     c.ReleaseType,
		Title:           c.Title,
		Slug:            c.Slug,
		Description:     c.Description,
		DescriptionHTML: c.DescriptionHTML,
		Timestamp:       c.CreatedAt,
		ArtistURL:       fmt.Sprintf("/api/v1/users/%d", c.ArtistId),
		CommentsURL:     fmt.Sprintf("/api/v1/compositions/%d/comments/", c.Id),
		CommentCount:    commentCount,
	}
}

// CommentView is the canonical JSON projection of a comment.
type CommentView struct {
	URL            string    `json:"url"`
	CompositionURL string    `json:"compositionUrl"`
	Body           string    `json:"body"`
	BodyHTML       string    `json:"bodyHtml"`
	Timestamp      time.Time `json:"timestamp"`
	Disabled       bool      `json:"disabled"`
	ArtistURL      string    `json:"artistUrl"`
}

// NewCommentView builds the projection for a comment.
func NewCommentView(c *model.Comment) *CommentView {
	return &CommentView{
		URL:            fmt.Sprintf("/api/v1/comments/%d", c.Id),
		CompositionURL: fmt.Sprintf("/api/v1/compositions/%d", c.CompositionId),
		Body:           c.Body,
		BodyHTML:       c.BodyHTML,
		Timestamp:      c.CreatedAt,
		Disabled:       c.Disabled,
		ArtistURL:      fmt.Sprintf("/api/v1/users/%d", c.ArtistId),
	}
}

// FollowView pairs a follow edge with the user on its far side.
type FollowView struct {
	User      *UserView `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}
