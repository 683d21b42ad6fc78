package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dcode-github/six_cities/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type FavoriteRepository struct {
	coll *mongo.Collection
}

func NewFavoriteRepository(coll *mongo.Collection) *FavoriteRepository {
	return &FavoriteRepository{coll: coll}
}

func (r *FavoriteRepository) Add(ctx context.Context, userID, offerID primitive.ObjectID) (*models.Favorite, error) {
	filter := bson.M{"userId": userID, "offerId": offerID}

	var existing models.Favorite
	err := r.coll.FindOne(ctx, filter).Decode(&existing)
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("check favorites: %w", err)
	}

	fav := models.Favorite{ID: primitive.NewObjectID(), UserID: userID, OfferID: offerID}
	if _, err := r.coll.InsertOne(ctx, fav); err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	return &fav, nil
}

// List returns the favorite offers of a user, each flagged as favorite.
func (r *FavoriteRepository) List(ctx context.Context, userID primitive.ObjectID) ([]models.OfferEntity, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         OffersCollection,
			"localField":   "offerId",
			"foreignField": "_id",
			"as":           "offerDetails",
		}}},
		{{Key: "$unwind", Value: "$offerDetails"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$offerDetails"}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate favorites: %w", err)
	}
	defer cursor.Close(ctx)

	offers := []models.OfferEntity{}
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	for i := range offers {
		offers[i].IsFavorite = true
	}
	return offers, nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, offerID primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"userId": userID, "offerId": offerID})
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FavoriteSet reports which of offerIDs the user has marked as favorite.
func (r *FavoriteRepository) FavoriteSet(ctx context.Context, userID primitive.ObjectID, offerIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	set := make(map[primitive.ObjectID]bool)
	if len(offerIDs) == 0 {
		return set, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID, "offerId": bson.M{"$in": offerIDs}})
	if err != nil {
		return nil, fmt.Errorf("find favorites: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var fav models.Favorite
		if err := cursor.Decode(&fav); err != nil {
			return nil, fmt.Errorf("decode favorite: %w", err)
		}
		set[fav.OfferID] = true
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return set, nil
}

func (r *FavoriteRepository) DeleteByOfferID(ctx context.Context, offerID primitive.ObjectID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"offerId": offerID}); err != nil {
		return fmt.Errorf("delete favorites: %w", err)
	}
	return nil
}
