package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/socialhub/internal/domain/post"
	"github.com/geocoder89/socialhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
)

const postColumns = `id, content, author_id, created_at, likes, comments`

type PostsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{pool: pool, prom: prom}
}

func (r *PostsRepo) Create(ctx context.Context, p post.Post) (post.Post, error) {
	p.ID = uuid.NewString()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	p.Likes = []string{}
	p.Comments = []post.Comment{}

	err := r.prom.ObserveDB(ctx, "posts.create", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO posts (id, content, author_id, created_at, likes, comments)
			VALUES ($1,$2,$3,$4,'{}','[]'::jsonb)`,
			p.ID, p.Content, p.AuthorID, p.CreatedAt,
		)
		return err
	})

	if err != nil {
		return post.Post{}, pkgerrors.Wrap(err, "posts.create")
	}
	return p, nil
}

// List is offset pagination over newest-first order. id breaks ties between
// posts created in the same instant so pages stay deterministic.
func (r *PostsRepo) List(ctx context.Context, limit, skip int) ([]post.Post, error) {
	return r.query(ctx, "posts.list",
		`SELECT `+postColumns+` FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		limit, skip,
	)
}

func (r *PostsRepo) ListByAuthor(ctx context.Context, authorID string) ([]post.Post, error) {
	return r.query(ctx, "posts.list_by_author",
		`SELECT `+postColumns+` FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC`,
		authorID,
	)
}

// ToggleLike flips membership of userID in the likes set in a single UPDATE.
// The row lock taken by the UPDATE serialises concurrent toggles on one post,
// and RETURNING reads the state this statement produced.
func (r *PostsRepo) ToggleLike(ctx context.Context, postID, userID string) (post.LikeResult, error) {
	var res post.LikeResult

	err := r.prom.ObserveDB(ctx, "posts.toggle_like", func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, `
			UPDATE posts
			SET likes = CASE
				WHEN $2::text = ANY(likes) THEN array_remove(likes, $2::text)
				ELSE array_append(likes, $2::text)
			END
			WHERE id = $1
			RETURNING $2::text = ANY(likes), cardinality(likes)
		`, postID, userID).Scan(&res.Liked, &res.TotalLikes)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.LikeResult{}, post.ErrNotFound
		}
		return post.LikeResult{}, pkgerrors.Wrap(err, "posts.toggle_like")
	}
	return res, nil
}

// AppendComment appends to the comments array in place and reports the new
// length, so two concurrent appends can never overwrite each other.
func (r *PostsRepo) AppendComment(ctx context.Context, postID string, c post.Comment) (post.Comment, int, error) {
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	doc, err := json.Marshal(c)
	if err != nil {
		return post.Comment{}, 0, pkgerrors.Wrap(err, "posts.append_comment")
	}

	var total int

	err = r.prom.ObserveDB(ctx, "posts.append_comment", func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, `
			UPDATE posts
			SET comments = comments || jsonb_build_array($2::jsonb)
			WHERE id = $1
			RETURNING jsonb_array_length(comments)
		`, postID, string(doc)).Scan(&total)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Comment{}, 0, post.ErrNotFound
		}
		return post.Comment{}, 0, pkgerrors.Wrap(err, "posts.append_comment")
	}
	return c, total, nil
}

func (r *PostsRepo) query(ctx context.Context, op, sql string, args ...any) ([]post.Post, error) {
	out := make([]post.Post, 0)

	err := r.prom.ObserveDB(ctx, op, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p post.Post
			if err := scanPost(rows, &p); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, pkgerrors.Wrap(err, op)
	}
	return out, nil
}

func scanPost(row pgx.Row, p *post.Post) error {
	err := row.Scan(&p.ID, &p.Content, &p.AuthorID, &p.CreatedAt, &p.Likes, &p.Comments)
	if err != nil {
		return err
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []post.Comment{}
	}
	return nil
}
