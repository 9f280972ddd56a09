package post

import (
	"errors"
	"time"

	"github.com/geocoder89/socialhub/internal/domain/user"
)

// Post is the stored document. Likes hold user ids, comments are append-only.
type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
}

// Comment is embedded in a post. The json tags double as the stored document keys.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	ErrNotFound            = errors.New("post not found")
	ErrContentRequired     = errors.New("post content is required")
	ErrCommentTextRequired = errors.New("comment text is required")
)

type CreatePostRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// View is a post with its references resolved for output. A nil identity means
// the referenced user no longer resolves.
type View struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Author    *user.Identity `json:"author"`
	CreatedAt time.Time      `json:"createdAt"`
	Likes     []string       `json:"likes"`
	Comments  []CommentView  `json:"comments"`
}

type CommentView struct {
	ID        string         `json:"id"`
	User      *user.Identity `json:"user"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"createdAt"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	TotalLikes int  `json:"totalLikes"`
}
