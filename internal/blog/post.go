// Package blog is the site's small blogging engine mounted under /blog.
package blog

import (
	"context"
	"errors"
	"html/template"
	"time"
)

var ErrNotFound = errors.New("blog: post not found")

type Post struct {
	ID        string
	Title     string
	Body      string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HTML returns the body for rendering. Bodies are sanitized before they
// are stored.
func (p Post) HTML() template.HTML {
	return template.HTML(p.Body)
}

// ListOptions selects a page of posts, newest first. An empty AuthorID
// lists every author.
type ListOptions struct {
	AuthorID string
	Offset   int
	Limit    int
}

type Store interface {
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Get(ctx context.Context, id string) (*Post, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]Post, error)
}
