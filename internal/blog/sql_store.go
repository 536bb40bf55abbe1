package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ditroboticstw/internal/db"
)

// SQLStore keeps posts in the blog_posts table. Timestamps are stored as
// unix seconds so the same queries run on SQLite and Postgres.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{db: d}
}

func (s *SQLStore) Create(ctx context.Context, p *Post) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO blog_posts (id, title, body, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`),
		p.ID,
		p.Title,
		p.Body,
		p.AuthorID,
		p.CreatedAt.Unix(),
		p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("blog: create post: %w", err)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, p *Post) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE blog_posts
		SET title = ?, body = ?, updated_at = ?
		WHERE id = ?
	`),
		p.Title,
		p.Body,
		p.UpdatedAt.Unix(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("blog: update post: %w", err)
	}
	return expectRow(res)
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Post, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, title, body, author_id, created_at, updated_at
		FROM blog_posts
		WHERE id = ?
	`), id)

	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blog: get post: %w", err)
	}
	return p, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM blog_posts WHERE id = ?
	`), id)
	if err != nil {
		return fmt.Errorf("blog: delete post: %w", err)
	}
	return expectRow(res)
}

func (s *SQLStore) List(ctx context.Context, opts ListOptions) ([]Post, error) {
	query := `
		SELECT id, title, body, author_id, created_at, updated_at
		FROM blog_posts`
	var args []any
	if opts.AuthorID != "" {
		query += `
		WHERE author_id = ?`
		args = append(args, opts.AuthorID)
	}
	query += `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("blog: list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("blog: scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*Post, error) {
	var p Post
	var created, updated int64
	if err := row.Scan(&p.ID, &p.Title, &p.Body, &p.AuthorID, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(created, 0).UTC()
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return &p, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
