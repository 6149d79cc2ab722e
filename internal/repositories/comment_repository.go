package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/picstream/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// Create creates a new comment in MongoDB
func (r *MongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = time.Now()
	if comment.Likes == nil {
		comment.Likes = []string{}
	}
	if comment.Replies == nil {
		comment.Replies = []models.Reply{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// Update persists the comment content
func (r *MongoCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": comment.ID}, bson.M{"$set": bson.M{"content": comment.Content}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a comment by ID from MongoDB
func (r *MongoCommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByPost retrieves a post's comments, oldest first
func (r *MongoCommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"post_id": postID})
}

// ListByPosts retrieves comments for any of the given posts
func (r *MongoCommentRepository) ListByPosts(ctx context.Context, postIDs []string) ([]models.Comment, error) {
	if len(postIDs) == 0 {
		return []models.Comment{}, nil
	}
	return r.find(ctx, bson.M{"post_id": bson.M{"$in": postIDs}})
}

// DeleteByPost removes all comments attached to a post
func (r *MongoCommentRepository) DeleteByPost(ctx context.Context, postID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"post_id": postID})
	return err
}

// ToggleLike adds or removes the user from the like set and returns it
func (r *MongoCommentRepository) ToggleLike(ctx context.Context, commentID, userID string) ([]string, error) {
	comment, err := r.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	for _, id := range comment.Likes {
		if id == userID {
			update = bson.M{"$pull": bson.M{"likes": userID}}
			break
		}
	}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": commentID}, update); err != nil {
		return nil, err
	}

	updated, err := r.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return updated.Likes, nil
}

// AddReply appends a reply and returns the updated comment
func (r *MongoCommentRepository) AddReply(ctx context.Context, commentID string, reply models.Reply) (*models.Comment, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": commentID}, bson.M{"$push": bson.M{"replies": reply}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, commentID)
}

func (r *MongoCommentRepository) find(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
