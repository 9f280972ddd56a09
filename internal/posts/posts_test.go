package posts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/socialhub/internal/auth"
	"github.com/geocoder89/socialhub/internal/domain/post"
	"github.com/geocoder89/socialhub/internal/domain/user"
	"github.com/geocoder89/socialhub/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	calls int
}

func (s *countingStore) Create(ctx context.Context, p post.Post) (post.Post, error) {
	s.calls++
	return p, nil
}

func (s *countingStore) ToggleLike(ctx context.Context, postID, userID string) (post.LikeResult, error) {
	s.calls++
	return post.LikeResult{}, nil
}

func (s *countingStore) AppendComment(ctx context.Context, postID string, c post.Comment) (post.Comment, int, error) {
	s.calls++
	return c, 0, nil
}

type brokenStore struct{ countingStore }

func (brokenStore) ToggleLike(ctx context.Context, postID, userID string) (post.LikeResult, error) {
	return post.LikeResult{}, errors.New("timeout")
}

type recorder struct{ ops []string }

func (r *recorder) CountMutation(op string) { r.ops = append(r.ops, op) }

var amy = user.User{ID: "u-amy", Name: "Amy", Email: "a@x.com"}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	svc := NewService(memory.NewPostsRepo(), rec)

	v, err := svc.CreatePost(ctx, amy, "hello")
	require.NoError(t, err)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "hello", v.Content)
	assert.Equal(t, []string{}, v.Likes)
	assert.Empty(t, v.Comments)
	require.NotNil(t, v.Author)
	assert.Equal(t, user.Identity{ID: amy.ID, Name: "Amy", Email: "a@x.com"}, *v.Author)
	assert.False(t, v.CreatedAt.IsZero())
	assert.Equal(t, []string{"post_create"}, rec.ops)
}

func TestCreatePost_RejectsBlankContent(t *testing.T) {
	svc := NewService(memory.NewPostsRepo(), nil)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.CreatePost(context.Background(), amy, content)
		assert.ErrorIs(t, err, post.ErrContentRequired)
	}
}

func TestMutations_UnauthenticatedTouchNothing(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{}
	svc := NewService(store, nil)
	anon := user.User{}

	_, err := svc.CreatePost(ctx, anon, "hello")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = svc.ToggleLike(ctx, anon, "p1")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, _, err = svc.AddComment(ctx, anon, "p1", "hi")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	assert.Zero(t, store.calls)
}

func TestToggleLike_IsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	svc := NewService(memory.NewPostsRepo(), rec)

	p, err := svc.CreatePost(ctx, amy, "hello")
	require.NoError(t, err)

	first, err := svc.ToggleLike(ctx, amy, p.ID)
	require.NoError(t, err)
	assert.Equal(t, post.LikeResult{Liked: true, TotalLikes: 1}, first)

	second, err := svc.ToggleLike(ctx, amy, p.ID)
	require.NoError(t, err)
	assert.Equal(t, post.LikeResult{Liked: false, TotalLikes: 0}, second)

	assert.Equal(t, []string{"post_create", "like", "unlike"}, rec.ops)
}

func TestToggleLike_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewService(memory.NewPostsRepo(), nil).ToggleLike(ctx, amy, "missing")
	assert.ErrorIs(t, err, post.ErrNotFound)

	_, err = NewService(&brokenStore{}, nil).ToggleLike(ctx, amy, "p1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, post.ErrNotFound)
	assert.Contains(t, err.Error(), "posts.toggle_like")
}

func TestAddComment_AppendsInOrder(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPostsRepo()
	svc := NewService(repo, nil)

	p, _ := svc.CreatePost(ctx, amy, "hello")

	a, total, err := svc.AddComment(ctx, amy, p.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.NotNil(t, a.User)
	assert.Equal(t, "Amy", a.User.Name)

	_, total, err = svc.AddComment(ctx, amy, p.ID, "B")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	stored, err := repo.ListByAuthor(ctx, amy.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Len(t, stored[0].Comments, 2)
	assert.Equal(t, "A", stored[0].Comments[0].Text)
	assert.Equal(t, "B", stored[0].Comments[1].Text)
}

func TestAddComment_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewPostsRepo(), nil)

	_, _, err := svc.AddComment(ctx, amy, "missing", "hi")
	assert.ErrorIs(t, err, post.ErrNotFound)

	_, _, err = svc.AddComment(ctx, amy, "missing", "  ")
	assert.ErrorIs(t, err, post.ErrCommentTextRequired)
}

func TestTimestamps_StoredAtMicrosecondPrecision(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewPostsRepo(), nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC) }

	v, err := svc.CreatePost(ctx, amy, "hello")
	require.NoError(t, err)
	assert.Equal(t, 123456000, v.CreatedAt.Nanosecond())

	c, _, err := svc.AddComment(ctx, amy, v.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, 123456000, c.CreatedAt.Nanosecond())
}
