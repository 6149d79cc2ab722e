package repositories

import (
	"context"
	"errors"

	"github.com/picstream/backend/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyFollowing = errors.New("already following")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// Search matches the query case-insensitively against username or bio,
	// in insertion order.
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	// Suggestions returns users excluding the given ids, in insertion order.
	Suggestions(ctx context.Context, excludeIDs []string, limit int) ([]models.User, error)
}

// FollowRepository defines the interface for follow-graph operations
type FollowRepository interface {
	// Follow adds the edge; both directions become visible together or not
	// at all. Returns ErrAlreadyFollowing on a duplicate edge.
	Follow(ctx context.Context, followerID, targetID string) error
	// Unfollow removes the edge. Removing an absent edge is a silent no-op.
	Unfollow(ctx context.Context, followerID, targetID string) error
	IsFollowing(ctx context.Context, followerID, targetID string) (bool, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	// ToggleLike adds the user to the like set if absent, removes it if
	// present, and returns the resulting set.
	ToggleLike(ctx context.Context, postID, userID string) ([]string, error)
	ListByUser(ctx context.Context, userID string) ([]models.Post, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]models.Post, error)
	AddCommentRef(ctx context.Context, postID, commentID string) error
	RemoveCommentRef(ctx context.Context, postID, commentID string) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
	// ListByPost returns comments oldest first (insertion order).
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	ListByPosts(ctx context.Context, postIDs []string) ([]models.Comment, error)
	DeleteByPost(ctx context.Context, postID string) error
	ToggleLike(ctx context.Context, commentID, userID string) ([]string, error)
	AddReply(ctx context.Context, commentID string, reply models.Reply) (*models.Comment, error)
}

// Store bundles one repository per entity. Handlers depend on this, never on
// a concrete backend.
type Store struct {
	Users    UserRepository
	Follows  FollowRepository
	Posts    PostRepository
	Comments CommentRepository
}

// NewDatabaseStore wires the Postgres-backed identity repositories and the
// MongoDB-backed content repositories, mirroring the users-in-SQL,
// content-in-documents split.
func NewDatabaseStore(pgdb *gorm.DB, mdb *mongo.Database) (*Store, error) {
	if err := pgdb.AutoMigrate(&models.User{}, &models.Follow{}); err != nil {
		return nil, err
	}
	return &Store{
		Users:    NewPostgresUserRepository(pgdb),
		Follows:  NewPostgresFollowRepository(pgdb),
		Posts:    NewMongoPostRepository(mdb),
		Comments: NewMongoCommentRepository(mdb),
	}, nil
}
