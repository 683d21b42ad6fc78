package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dcode-github/six_cities/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultCommentLimit = 50

type CommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(coll *mongo.Collection) *CommentRepository {
	return &CommentRepository{coll: coll}
}

func (r *CommentRepository) Create(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

func (r *CommentRepository) FindByOfferID(ctx context.Context, offerID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(DefaultCommentLimit)

	cursor, err := r.coll.Find(ctx, bson.M{"offerId": offerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) DeleteByOfferID(ctx context.Context, offerID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"offerId": offerID})
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	return res.DeletedCount, nil
}
