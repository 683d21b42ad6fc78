package repository

import (
	"context"
	"errors"

	"github.com/dcode-github/six_cities/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the persistence side of a bulk import: users and offers sharing one client.
type Store struct {
	client *mongo.Client
	users  *UserRepository
	offers *OfferRepository
}

func NewStore(client *mongo.Client, users *UserRepository, offers *OfferRepository) *Store {
	return &Store{client: client, users: users, offers: offers}
}

// FindUserByEmail returns nil, nil when no user has the email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	return s.users.Create(ctx, user)
}

func (s *Store) CreateOffer(ctx context.Context, offer models.Offer, ownerID primitive.ObjectID) (*models.OfferEntity, error) {
	return s.offers.Create(ctx, models.NewOfferEntity(offer, ownerID))
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
