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

// MongoPostRepository implements PostRepository for MongoDB. Documents use
// string UUID _ids so both storage backends share one id shape.
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// Create creates a new post in MongoDB
func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.CreatedAt = time.Now()
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []string{}
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Update persists the mutable post fields
func (r *MongoPostRepository) Update(ctx context.Context, post *models.Post) error {
	update := bson.M{
		"$set": bson.M{
			"caption":  post.Caption,
			"tags":     post.Tags,
			"location": post.Location,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a post by ID from MongoDB
func (r *MongoPostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleLike adds or removes the user from the like set and returns it
func (r *MongoPostRepository) ToggleLike(ctx context.Context, postID, userID string) ([]string, error) {
	post, err := r.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	for _, id := range post.Likes {
		if id == userID {
			update = bson.M{"$pull": bson.M{"likes": userID}}
			break
		}
	}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, update); err != nil {
		return nil, err
	}

	updated, err := r.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return updated.Likes, nil
}

// ListByUser retrieves a user's posts, newest first
func (r *MongoPostRepository) ListByUser(ctx context.Context, userID string) ([]models.Post, error) {
	return r.find(ctx, bson.M{"user_id": userID}, 0)
}

// ListByUsers retrieves posts by any of the given authors, newest first
func (r *MongoPostRepository) ListByUsers(ctx context.Context, userIDs []string) ([]models.Post, error) {
	if len(userIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, 0)
}

// ListRecent retrieves the newest posts across all authors
func (r *MongoPostRepository) ListRecent(ctx context.Context, limit int) ([]models.Post, error) {
	return r.find(ctx, bson.M{}, int64(limit))
}

// AddCommentRef appends a comment id to the post's comment list
func (r *MongoPostRepository) AddCommentRef(ctx context.Context, postID, commentID string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$push": bson.M{"comments": commentID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveCommentRef removes a comment id from the post's comment list
func (r *MongoPostRepository) RemoveCommentRef(ctx context.Context, postID, commentID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$pull": bson.M{"comments": commentID}})
	return err
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
