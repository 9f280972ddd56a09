package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/socialhub/internal/domain/post"
	"github.com/google/uuid"
)

// PostsRepo keeps documents in a map. Every mutation holds the write lock for
// its whole read-modify-write, which makes toggles and appends atomic per post.
type PostsRepo struct {
	mu    sync.RWMutex
	items map[string]post.Post
}

func NewPostsRepo() *PostsRepo {
	return &PostsRepo{items: make(map[string]post.Post)}
}

func (r *PostsRepo) Create(ctx context.Context, p post.Post) (post.Post, error) {
	p.ID = uuid.NewString()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.Likes = []string{}
	p.Comments = []post.Comment{}

	r.mu.Lock()
	r.items[p.ID] = p
	r.mu.Unlock()

	return clonePost(p), nil
}

func (r *PostsRepo) List(ctx context.Context, limit, skip int) ([]post.Post, error) {
	all := r.sorted(func(post.Post) bool { return true })

	if skip >= len(all) {
		return []post.Post{}, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

func (r *PostsRepo) ListByAuthor(ctx context.Context, authorID string) ([]post.Post, error) {
	return r.sorted(func(p post.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *PostsRepo) ToggleLike(ctx context.Context, postID, userID string) (post.LikeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[postID]
	if !ok {
		return post.LikeResult{}, post.ErrNotFound
	}

	likes := make([]string, 0, len(p.Likes)+1)
	liked := true
	for _, id := range p.Likes {
		if id == userID {
			liked = false
			continue
		}
		likes = append(likes, id)
	}
	if liked {
		likes = append(likes, userID)
	}

	p.Likes = likes
	r.items[postID] = p

	return post.LikeResult{Liked: liked, TotalLikes: len(likes)}, nil
}

func (r *PostsRepo) AppendComment(ctx context.Context, postID string, c post.Comment) (post.Comment, int, error) {
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[postID]
	if !ok {
		return post.Comment{}, 0, post.ErrNotFound
	}

	comments := make([]post.Comment, len(p.Comments), len(p.Comments)+1)
	copy(comments, p.Comments)
	p.Comments = append(comments, c)
	r.items[postID] = p

	return c, len(p.Comments), nil
}

func (r *PostsRepo) sorted(keep func(post.Post) bool) []post.Post {
	r.mu.RLock()
	out := make([]post.Post, 0, len(r.items))
	for _, p := range r.items {
		if keep(p) {
			out = append(out, clonePost(p))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func clonePost(p post.Post) post.Post {
	p.Likes = append([]string{}, p.Likes...)
	p.Comments = append([]post.Comment{}, p.Comments...)
	return p
}
