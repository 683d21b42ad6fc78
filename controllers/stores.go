package controllers

import (
	"context"

	"github.com/dcode-github/six_cities/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Create(ctx context.Context, user models.User) (*models.User, error)
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatar string) (*models.User, error)
}

type OfferStore interface {
	Create(ctx context.Context, offer models.OfferEntity) (*models.OfferEntity, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.OfferEntity, error)
	Find(ctx context.Context, limit int64) ([]models.OfferEntity, error)
	FindPremiumInCity(ctx context.Context, city models.City) ([]models.OfferEntity, error)
	UpdateByID(ctx context.Context, id, ownerID primitive.ObjectID, set bson.M) (*models.OfferEntity, error)
	DeleteByID(ctx context.Context, id, ownerID primitive.ObjectID) error
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	IncCommentCount(ctx context.Context, id primitive.ObjectID) error
	CalculateRating(ctx context.Context, id primitive.ObjectID) (float64, int, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) (*models.Comment, error)
	FindByOfferID(ctx context.Context, offerID primitive.ObjectID) ([]models.Comment, error)
	DeleteByOfferID(ctx context.Context, offerID primitive.ObjectID) (int64, error)
}

type FavoriteStore interface {
	Add(ctx context.Context, userID, offerID primitive.ObjectID) (*models.Favorite, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]models.OfferEntity, error)
	Remove(ctx context.Context, userID, offerID primitive.ObjectID) error
	FavoriteSet(ctx context.Context, userID primitive.ObjectID, offerIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	DeleteByOfferID(ctx context.Context, offerID primitive.ObjectID) error
}
