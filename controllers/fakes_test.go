package controllers

import (
	"context"
	"net/http"
	"sync"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/dcode-github/six_cities/backend/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func withUser(r *http.Request, id primitive.ObjectID) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserIDKey, id.Hex()))
}

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[primitive.ObjectID]models.User)}
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *memUsers) Create(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, repository.ErrAlreadyExists
		}
	}
	user.ID = primitive.NewObjectID()
	s.users[user.ID] = user
	return &user, nil
}

func (s *memUsers) UpdateAvatar(_ context.Context, id primitive.ObjectID, avatar string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Avatar = avatar
	s.users[id] = u
	return &u, nil
}

type memOffers struct {
	mu           sync.Mutex
	order        []primitive.ObjectID
	offers       map[primitive.ObjectID]models.OfferEntity
	incs         int
	ratingCalls  int
	findCalls    int
	lastFindSize int64
}

func newMemOffers() *memOffers {
	return &memOffers{offers: make(map[primitive.ObjectID]models.OfferEntity)}
}

func (s *memOffers) Create(_ context.Context, offer models.OfferEntity) (*models.OfferEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offer.ID = primitive.NewObjectID()
	s.offers[offer.ID] = offer
	s.order = append(s.order, offer.ID)
	return &offer, nil
}

func (s *memOffers) FindByID(_ context.Context, id primitive.ObjectID) (*models.OfferEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (s *memOffers) Find(_ context.Context, limit int64) ([]models.OfferEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	s.lastFindSize = limit
	out := []models.OfferEntity{}
	for _, id := range s.order {
		if o, ok := s.offers[id]; ok {
			out = append(out, o)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memOffers) FindPremiumInCity(_ context.Context, city models.City) ([]models.OfferEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.OfferEntity{}
	for _, id := range s.order {
		if o, ok := s.offers[id]; ok && o.IsPremium && o.City == city {
			out = append(out, o)
		}
	}
	return out, nil
}

// UpdateByID applies set through a bson round trip, so field names match the stored form.
func (s *memOffers) UpdateByID(_ context.Context, id, ownerID primitive.ObjectID, set bson.M) (*models.OfferEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok || o.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}

	raw, err := bson.Marshal(o)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range set {
		doc[k] = v
	}
	if raw, err = bson.Marshal(doc); err != nil {
		return nil, err
	}
	var updated models.OfferEntity
	if err := bson.Unmarshal(raw, &updated); err != nil {
		return nil, err
	}
	s.offers[id] = updated
	return &updated, nil
}

func (s *memOffers) DeleteByID(_ context.Context, id, ownerID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok || o.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.offers, id)
	return nil
}

func (s *memOffers) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.offers[id]
	return ok, nil
}

func (s *memOffers) IncCommentCount(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.CommentsCount++
	s.offers[id] = o
	s.incs++
	return nil
}

func (s *memOffers) CalculateRating(_ context.Context, id primitive.ObjectID) (float64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratingCalls++
	o, ok := s.offers[id]
	if !ok {
		return 0, 0, repository.ErrNotFound
	}
	return o.Rating, o.CommentsCount, nil
}

type memComments struct {
	mu       sync.Mutex
	comments []models.Comment
}

func (s *memComments) Create(_ context.Context, c models.Comment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	s.comments = append(s.comments, c)
	return &c, nil
}

func (s *memComments) FindByOfferID(_ context.Context, offerID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range s.comments {
		if c.OfferID == offerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memComments) DeleteByOfferID(_ context.Context, offerID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.comments[:0]
	var n int64
	for _, c := range s.comments {
		if c.OfferID == offerID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	s.comments = kept
	return n, nil
}

type favKey struct{ user, offer primitive.ObjectID }

type memFavorites struct {
	mu     sync.Mutex
	favs   map[favKey]bool
	offers *memOffers
}

func newMemFavorites(offers *memOffers) *memFavorites {
	return &memFavorites{favs: make(map[favKey]bool), offers: offers}
}

func (s *memFavorites) Add(_ context.Context, userID, offerID primitive.ObjectID) (*models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := favKey{userID, offerID}
	if s.favs[k] {
		return nil, repository.ErrAlreadyExists
	}
	s.favs[k] = true
	return &models.Favorite{ID: primitive.NewObjectID(), UserID: userID, OfferID: offerID}, nil
}

func (s *memFavorites) List(ctx context.Context, userID primitive.ObjectID) ([]models.OfferEntity, error) {
	s.mu.Lock()
	var ids []primitive.ObjectID
	for k := range s.favs {
		if k.user == userID {
			ids = append(ids, k.offer)
		}
	}
	s.mu.Unlock()

	out := []models.OfferEntity{}
	for _, id := range ids {
		o, err := s.offers.FindByID(ctx, id)
		if err != nil {
			continue
		}
		o.IsFavorite = true
		out = append(out, *o)
	}
	return out, nil
}

func (s *memFavorites) Remove(_ context.Context, userID, offerID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := favKey{userID, offerID}
	if !s.favs[k] {
		return repository.ErrNotFound
	}
	delete(s.favs, k)
	return nil
}

func (s *memFavorites) FavoriteSet(_ context.Context, userID primitive.ObjectID, offerIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[primitive.ObjectID]bool)
	for _, id := range offerIDs {
		if s.favs[favKey{userID, id}] {
			set[id] = true
		}
	}
	return set, nil
}

func (s *memFavorites) DeleteByOfferID(_ context.Context, offerID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.favs {
		if k.offer == offerID {
			delete(s.favs, k)
		}
	}
	return nil
}

type memCache struct {
	mu           sync.Mutex
	data         map[string][]byte
	invalidated  int
	hits, misses int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *memCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.invalidated++
}

func (c *memCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}
