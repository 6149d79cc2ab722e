// Package feed denormalizes raw post and comment records into the
// author-embedded shapes the API returns. It never persists anything.
package feed

import (
	"context"

	"github.com/picstream/backend/internal/models"
	"github.com/picstream/backend/internal/repositories"
	"go.uber.org/zap"
)

// PostView is a post with its author summary embedded. A nil Author means
// the referenced user no longer resolves; the list still succeeds.
type PostView struct {
	models.Post
	Author *models.UserCompact `json:"user"`
}

// PostDetail additionally embeds the post's comments.
type PostDetail struct {
	PostView
	Comments []CommentView `json:"comments"`
}

// CommentView is a comment with author summaries on itself and its replies.
type CommentView struct {
	models.Comment
	Author  *models.UserCompact `json:"user"`
	Replies []ReplyView         `json:"replies"`
}

// ReplyView is a reply with its author summary embedded
type ReplyView struct {
	models.Reply
	Author *models.UserCompact `json:"user"`
}

// Assembler resolves author ids through the user repository, with an
// optional cache in front of it.
type Assembler struct {
	users    repositories.UserRepository
	comments repositories.CommentRepository
	cache    *Cache
	logger   *zap.Logger
}

// New creates an Assembler. cache may be nil.
func New(users repositories.UserRepository, comments repositories.CommentRepository, cache *Cache, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{users: users, comments: comments, cache: cache, logger: logger}
}

// Author resolves a single author summary, nil when the user is gone
func (a *Assembler) Author(ctx context.Context, userID string) *models.UserCompact {
	if summary, ok := a.cache.Get(ctx, userID); ok {
		return summary
	}
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if err != repositories.ErrNotFound {
			a.logger.Warn("author lookup failed", zap.String("userId", userID), zap.Error(err))
		}
		return nil
	}
	compact := user.ToCompact()
	a.cache.Set(ctx, &compact)
	return &compact
}

// authorMap resolves each distinct author id once per batch
func (a *Assembler) authorMap(ctx context.Context, ids map[string]bool) map[string]*models.UserCompact {
	authors := make(map[string]*models.UserCompact, len(ids))
	for id := range ids {
		authors[id] = a.Author(ctx, id)
	}
	return authors
}

// Post embeds the author summary into a single post
func (a *Assembler) Post(ctx context.Context, post *models.Post) PostView {
	return PostView{Post: *post, Author: a.Author(ctx, post.UserID)}
}

// Posts embeds author summaries into a batch of posts
func (a *Assembler) Posts(ctx context.Context, posts []models.Post) []PostView {
	ids := make(map[string]bool, len(posts))
	for _, p := range posts {
		ids[p.UserID] = true
	}
	authors := a.authorMap(ctx, ids)

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{Post: p, Author: authors[p.UserID]}
	}
	return views
}

// PostsWithComments builds fully denormalized posts: author summaries plus
// each post's comments (with their own author summaries), fetched in one
// batch through the comment repository.
func (a *Assembler) PostsWithComments(ctx context.Context, posts []models.Post) ([]PostDetail, error) {
	postIDs := make([]string, len(posts))
	authorIDs := make(map[string]bool, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
		authorIDs[p.UserID] = true
	}

	comments, err := a.comments.ListByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		authorIDs[c.UserID] = true
		for _, rep := range c.Replies {
			authorIDs[rep.UserID] = true
		}
	}
	authors := a.authorMap(ctx, authorIDs)

	byPost := make(map[string][]CommentView)
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], commentView(c, authors))
	}

	details := make([]PostDetail, len(posts))
	for i, p := range posts {
		views := byPost[p.ID]
		if views == nil {
			views = []CommentView{}
		}
		details[i] = PostDetail{
			PostView: PostView{Post: p, Author: authors[p.UserID]},
			Comments: views,
		}
	}
	return details, nil
}

// Comment embeds author summaries into a single comment and its replies
func (a *Assembler) Comment(ctx context.Context, comment *models.Comment) CommentView {
	ids := map[string]bool{comment.UserID: true}
	for _, rep := range comment.Replies {
		ids[rep.UserID] = true
	}
	return commentView(*comment, a.authorMap(ctx, ids))
}

// Comments embeds author summaries into a batch of comments
func (a *Assembler) Comments(ctx context.Context, comments []models.Comment) []CommentView {
	ids := make(map[string]bool, len(comments))
	for _, c := range comments {
		ids[c.UserID] = true
		for _, rep := range c.Replies {
			ids[rep.UserID] = true
		}
	}
	authors := a.authorMap(ctx, ids)

	views := make([]CommentView, len(comments))
	for i, c := range comments {
		views[i] = commentView(c, authors)
	}
	return views
}

func commentView(c models.Comment, authors map[string]*models.UserCompact) CommentView {
	replies := make([]ReplyView, len(c.Replies))
	for i, rep := range c.Replies {
		replies[i] = ReplyView{Reply: rep, Author: authors[rep.UserID]}
	}
	return CommentView{Comment: c, Author: authors[c.UserID], Replies: replies}
}
