package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/mmcloughlin/geohash"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultOfferLimit = 60
	PremiumOfferLimit = 3

	geohashPrecision = 9
)

type OfferRepository struct {
	coll *mongo.Collection
}

func NewOfferRepository(coll *mongo.Collection) *OfferRepository {
	return &OfferRepository{coll: coll}
}

func (r *OfferRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "isPremium", Value: 1}}},
		{Keys: bson.D{{Key: "geohash", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create offers indexes: %w", err)
	}
	return nil
}

func (r *OfferRepository) Create(ctx context.Context, offer models.OfferEntity) (*models.OfferEntity, error) {
	now := time.Now().UTC()
	offer.ID = primitive.NewObjectID()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	offer.Geohash = geohash.EncodeWithPrecision(offer.Coordinates.Latitude, offer.Coordinates.Longitude, geohashPrecision)
	offer.Owner = nil

	if _, err := r.coll.InsertOne(ctx, offer); err != nil {
		return nil, fmt.Errorf("insert offer: %w", err)
	}
	return &offer, nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.OfferEntity, error) {
	offers, err := r.aggregate(ctx, withOwner(
		bson.D{{Key: "$match", Value: bson.M{"_id": id}}},
	))
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, ErrNotFound
	}
	return &offers[0], nil
}

// Find returns the newest offers first.
func (r *OfferRepository) Find(ctx context.Context, limit int64) ([]models.OfferEntity, error) {
	if limit <= 0 {
		limit = DefaultOfferLimit
	}
	return r.aggregate(ctx, withOwner(
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	))
}

func (r *OfferRepository) FindPremiumInCity(ctx context.Context, city models.City) ([]models.OfferEntity, error) {
	return r.aggregate(ctx, withOwner(
		bson.D{{Key: "$match", Value: bson.M{"city": city, "isPremium": true}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$limit", Value: PremiumOfferLimit}},
	))
}

// UpdateByID applies set to an offer owned by ownerID and returns the new version.
func (r *OfferRepository) UpdateByID(ctx context.Context, id, ownerID primitive.ObjectID, set bson.M) (*models.OfferEntity, error) {
	fields := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range set {
		fields[k] = v
	}
	if c, ok := set["coordinates"].(models.Coordinates); ok {
		fields["geohash"] = geohash.EncodeWithPrecision(c.Latitude, c.Longitude, geohashPrecision)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var offer models.OfferEntity
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner": ownerID}, bson.M{"$set": fields}, opts).Decode(&offer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update offer: %w", err)
	}
	return &offer, nil
}

func (r *OfferRepository) DeleteByID(ctx context.Context, id, ownerID primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner": ownerID})
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OfferRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count offers: %w", err)
	}
	return n > 0, nil
}

func (r *OfferRepository) IncCommentCount(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"commentsCount": 1}})
	if err != nil {
		return fmt.Errorf("increment comments count: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type ratingSummary struct {
	Rating        float64 `bson:"rating"`
	CommentsCount int     `bson:"commentsCount"`
}

// CalculateRating recomputes rating and commentsCount from the comments
// collection and stores both on the offer. Rating is rounded to one decimal.
func (r *OfferRepository) CalculateRating(ctx context.Context, id primitive.ObjectID) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         CommentsCollection,
			"localField":   "_id",
			"foreignField": "offerId",
			"as":           "comments",
		}}},
		{{Key: "$project", Value: bson.M{
			"commentsCount": bson.M{"$size": "$comments"},
			"rating": bson.M{"$round": bson.A{
				bson.M{"$ifNull": bson.A{bson.M{"$avg": "$comments.rating"}, 0}},
				1,
			}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate rating: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []ratingSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return 0, 0, fmt.Errorf("decode rating: %w", err)
	}
	if len(summaries) == 0 {
		return 0, 0, ErrNotFound
	}

	s := summaries[0]
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating":        s.Rating,
		"commentsCount": s.CommentsCount,
	}})
	if err != nil {
		return 0, 0, fmt.Errorf("store rating: %w", err)
	}
	return s.Rating, s.CommentsCount, nil
}

// Each streams every offer with its owner, oldest first, and stops at the first error from fn.
func (r *OfferRepository) Each(ctx context.Context, fn func(models.OfferEntity) error) error {
	cursor, err := r.coll.Aggregate(ctx, withOwner(
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
	))
	if err != nil {
		return fmt.Errorf("aggregate offers: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var offer models.OfferEntity
		if err := cursor.Decode(&offer); err != nil {
			return fmt.Errorf("decode offer: %w", err)
		}
		if err := fn(offer); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (r *OfferRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.OfferEntity, error) {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate offers: %w", err)
	}
	defer cursor.Close(ctx)

	offers := []models.OfferEntity{}
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("decode offers: %w", err)
	}
	return offers, nil
}

// withOwner appends the stages that embed the owner document.
func withOwner(stages ...bson.D) mongo.Pipeline {
	pipeline := mongo.Pipeline(stages)
	return append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         UsersCollection,
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "ownerDetails",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$ownerDetails",
			"preserveNullAndEmptyArrays": true,
		}}},
	)
}
