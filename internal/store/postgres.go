package store

import (
	"context"
	"errors"

	"github.com/Jakkalsie/thought-scratching/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL DEFAULT '',
	image    TEXT NOT NULL DEFAULT '',
	is_admin BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	image      TEXT NOT NULL DEFAULT '',
	author_id  TEXT NOT NULL REFERENCES users (id),
	created_at TIMESTAMPTZ NOT NULL
);
`

const postColumns = `p.id, p.title, p.content, p.image, p.author_id, p.created_at,
	u.id, u.name, u.image, u.is_admin`

// Postgres is the production Store, backed by a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects the pool and ensures the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, wrapErr("parse dsn", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, wrapErr("connect", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()

		return nil, wrapErr("ensure schema", err)
	}

	return &Postgres{pool: pool}, nil
}

func (pg *Postgres) UpsertUser(ctx context.Context, u *model.User) error {
	_, err := pg.pool.Exec(ctx,
		`INSERT INTO users (id, name, image, is_admin) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = $2, image = $3, is_admin = $4`,
		u.ID, u.Name, u.Image, u.IsAdmin)
	if err != nil {
		return wrapErr("upsert user", err)
	}

	return nil
}

func (pg *Postgres) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := pg.pool.QueryRow(ctx,
		`SELECT id, name, image, is_admin FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Image, &u.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, wrapErr("get user", err)
	}

	return &u, nil
}

func (pg *Postgres) CreatePost(ctx context.Context, p *model.Post) error {
	p.ID = uuid.NewString()

	err := pg.pool.QueryRow(ctx,
		`INSERT INTO posts (id, title, content, image, author_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, now()) RETURNING created_at`,
		p.ID, p.Title, p.Content, p.Image, p.AuthorID).
		Scan(&p.CreatedAt)
	if err != nil {
		return wrapErr("create post", err)
	}

	return nil
}

func (pg *Postgres) GetPost(ctx context.Context, id string) (*model.Post, error) {
	row := pg.pool.QueryRow(ctx,
		`SELECT `+postColumns+`
		 FROM posts p JOIN users u ON p.author_id = u.id
		 WHERE p.id = $1`, id)

	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, wrapErr("get post", err)
	}

	return p, nil
}

func (pg *Postgres) ListPosts(ctx context.Context) ([]*model.Post, error) {
	rows, err := pg.pool.Query(ctx,
		`SELECT `+postColumns+`
		 FROM posts p JOIN users u ON p.author_id = u.id
		 ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, wrapErr("list posts", err)
	}
	defer rows.Close()

	var list []*model.Post

	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, wrapErr("list posts", err)
		}

		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr("list posts", err)
	}

	return list, nil
}

func (pg *Postgres) ListPostIDs(ctx context.Context) ([]string, error) {
	rows, err := pg.pool.Query(ctx, `SELECT id FROM posts`)
	if err != nil {
		return nil, wrapErr("list post ids", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapErr("list post ids", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr("list post ids", err)
	}

	return ids, nil
}

func (pg *Postgres) UpdatePost(ctx context.Context, id, title, content string) (*model.Post, error) {
	tag, err := pg.pool.Exec(ctx,
		`UPDATE posts SET title = $2, content = $3 WHERE id = $1`, id, title, content)
	if err != nil {
		return nil, wrapErr("update post", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return pg.GetPost(ctx, id)
}

func (pg *Postgres) UpdatePostImage(ctx context.Context, id, image string) (*model.Post, error) {
	tag, err := pg.pool.Exec(ctx,
		`UPDATE posts SET image = $2 WHERE id = $1`, id, image)
	if err != nil {
		return nil, wrapErr("update post image", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return pg.GetPost(ctx, id)
}

func (pg *Postgres) DeletePost(ctx context.Context, id string) error {
	tag, err := pg.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete post", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (pg *Postgres) Close() {
	pg.pool.Close()
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var (
		p model.Post
		u model.User
	)

	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Image, &p.AuthorID, &p.CreatedAt,
		&u.ID, &u.Name, &u.Image, &u.IsAdmin)
	if err != nil {
		return nil, err
	}

	p.Author = &u

	return &p, nil
}
