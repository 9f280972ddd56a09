// Package posts implements the write side of the feed: creating posts,
// toggling likes and appending comments.
package posts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/socialhub/internal/auth"
	"github.com/geocoder89/socialhub/internal/domain/post"
	"github.com/geocoder89/socialhub/internal/domain/user"
	pkgerrors "github.com/pkg/errors"
)

// Store is satisfied by both the postgres and the in-memory repos. ToggleLike
// and AppendComment must each be a single atomic step on the stored post.
type Store interface {
	Create(ctx context.Context, p post.Post) (post.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (post.LikeResult, error)
	AppendComment(ctx context.Context, postID string, c post.Comment) (post.Comment, int, error)
}

type MutationCounter interface {
	CountMutation(op string)
}

type Service struct {
	store   Store
	metrics MutationCounter
	now     func() time.Time
}

func NewService(store Store, metrics MutationCounter) *Service {
	return &Service{store: store, metrics: metrics, now: time.Now}
}

// CreatePost stores a new post authored by actor. The returned view carries
// the actor as the resolved author.
func (s *Service) CreatePost(ctx context.Context, actor user.User, content string) (post.View, error) {
	if actor.ID == "" {
		return post.View{}, auth.ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return post.View{}, post.ErrContentRequired
	}

	created, err := s.store.Create(ctx, post.Post{
		Content:   content,
		AuthorID:  actor.ID,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		return post.View{}, pkgerrors.Wrap(err, "posts.create")
	}
	s.count("post_create")

	return post.View{
		ID:        created.ID,
		Content:   created.Content,
		Author:    &user.Identity{ID: actor.ID, Name: actor.Name, Email: actor.Email},
		CreatedAt: created.CreatedAt,
		Likes:     []string{},
		Comments:  []post.CommentView{},
	}, nil
}

// ToggleLike flips actor's membership in the post's likes.
func (s *Service) ToggleLike(ctx context.Context, actor user.User, postID string) (post.LikeResult, error) {
	if actor.ID == "" {
		return post.LikeResult{}, auth.ErrUnauthenticated
	}

	res, err := s.store.ToggleLike(ctx, postID, actor.ID)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			return post.LikeResult{}, post.ErrNotFound
		}
		return post.LikeResult{}, pkgerrors.Wrap(err, "posts.toggle_like")
	}

	if res.Liked {
		s.count("like")
	} else {
		s.count("unlike")
	}
	return res, nil
}

// AddComment appends a comment by actor and returns it with the new total.
func (s *Service) AddComment(ctx context.Context, actor user.User, postID, text string) (post.CommentView, int, error) {
	if actor.ID == "" {
		return post.CommentView{}, 0, auth.ErrUnauthenticated
	}
	if strings.TrimSpace(text) == "" {
		return post.CommentView{}, 0, post.ErrCommentTextRequired
	}

	c, total, err := s.store.AppendComment(ctx, postID, post.Comment{
		UserID:    actor.ID,
		Text:      text,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			return post.CommentView{}, 0, post.ErrNotFound
		}
		return post.CommentView{}, 0, pkgerrors.Wrap(err, "posts.add_comment")
	}
	s.count("comment")

	return post.CommentView{
		ID:        c.ID,
		User:      &user.Identity{ID: actor.ID, Name: actor.Name},
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}, total, nil
}

func (s *Service) count(op string) {
	if s.metrics != nil {
		s.metrics.CountMutation(op)
	}
}
