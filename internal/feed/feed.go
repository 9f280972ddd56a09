// Package feed serves the read side: the paginated post feed and user profiles.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/socialhub/internal/cache"
	"github.com/geocoder89/socialhub/internal/domain/post"
	"github.com/geocoder89/socialhub/internal/domain/user"
	pkgerrors "github.com/pkg/errors"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type PostReader interface {
	List(ctx context.Context, limit, skip int) ([]post.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]post.Post, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]user.User, error)
}

type Service struct {
	posts PostReader
	users UserReader

	// users are immutable once registered, so resolved identities can be
	// reused for a short while. nil disables it.
	identities *cache.Cache[string, user.User]
}

func NewService(posts PostReader, users UserReader) *Service {
	return &Service{posts: posts, users: users}
}

// WithIdentityCache keeps resolved users for ttl between requests.
func (s *Service) WithIdentityCache(ttl time.Duration) *Service {
	s.identities = cache.New[string, user.User](ttl)
	return s
}

type Profile struct {
	User  user.Public `json:"user"`
	Posts []post.View `json:"posts"`
}

// NormalizePage clamps pagination input to the accepted range.
func NormalizePage(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

// ListPosts returns one page of the feed, newest first, with authors and
// commenters resolved in a single batched lookup.
func (s *Service) ListPosts(ctx context.Context, limit, skip int) ([]post.View, error) {
	limit, skip = NormalizePage(limit, skip)

	items, err := s.posts.List(ctx, limit, skip)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "feed.list_posts")
	}

	return s.resolve(ctx, items, false)
}

// GetUserProfile returns the user and every post they authored, unpaginated.
func (s *Service) GetUserProfile(ctx context.Context, userID string) (Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Profile{}, user.ErrNotFound
		}
		return Profile{}, pkgerrors.Wrap(err, "feed.get_profile: user")
	}

	items, err := s.posts.ListByAuthor(ctx, userID)
	if err != nil {
		return Profile{}, pkgerrors.Wrap(err, "feed.get_profile: posts")
	}

	views, err := s.resolve(ctx, items, true)
	if err != nil {
		return Profile{}, err
	}

	return Profile{User: u.Public(), Posts: views}, nil
}

// resolve joins post authors and commenters against the user store.
// References that no longer resolve are left nil.
func (s *Service) resolve(ctx context.Context, items []post.Post, commenterEmail bool) ([]post.View, error) {
	views := make([]post.View, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, len(items))
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, p := range items {
		add(p.AuthorID)
		for _, c := range p.Comments {
			add(c.UserID)
		}
	}

	byID, err := s.lookupUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range items {
		v := post.View{
			ID:        p.ID,
			Content:   p.Content,
			Author:    identity(byID, p.AuthorID, true),
			CreatedAt: p.CreatedAt,
			Likes:     p.Likes,
			Comments:  make([]post.CommentView, 0, len(p.Comments)),
		}
		if v.Likes == nil {
			v.Likes = []string{}
		}
		for _, c := range p.Comments {
			v.Comments = append(v.Comments, post.CommentView{
				ID:        c.ID,
				User:      identity(byID, c.UserID, commenterEmail),
				Text:      c.Text,
				CreatedAt: c.CreatedAt,
			})
		}
		views = append(views, v)
	}

	return views, nil
}

// lookupUsers serves what it can from the identity cache and fetches the rest
// in one batch. Misses are not cached so a later registration is never hidden.
func (s *Service) lookupUsers(ctx context.Context, ids []string) (map[string]user.User, error) {
	out := make(map[string]user.User, len(ids))
	missing := ids

	if s.identities != nil {
		missing = make([]string, 0, len(ids))
		for _, id := range ids {
			if u, ok := s.identities.Get(id); ok {
				out[id] = u
				continue
			}
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := s.users.GetByIDs(ctx, missing)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "feed.resolve_users")
	}

	for id, u := range fetched {
		u.PasswordHash = ""
		out[id] = u
		if s.identities != nil {
			s.identities.Set(id, u)
		}
	}

	return out, nil
}

func identity(byID map[string]user.User, id string, withEmail bool) *user.Identity {
	u, ok := byID[id]
	if !ok {
		return nil
	}
	out := &user.Identity{ID: u.ID, Name: u.Name}
	if withEmail {
		out.Email = u.Email
	}
	return out
}
