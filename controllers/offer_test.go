package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validOfferBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Nice flat by the river",
		"description": "Quiet and bright apartment with a view.",
		"city":        "Paris",
		"preview":     "preview.jpg",
		"images":      []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg"},
		"isPremium":   true,
		"housingType": "apartment",
		"roomsCount":  2,
		"guestsCount": 3,
		"price":       250,
		"amenities":   []string{"Breakfast", "Towels"},
		"coordinates": map[string]float64{"latitude": 48.85661, "longitude": 2.351499},
	}
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedOffer(t *testing.T, offers *memOffers, ownerID primitive.ObjectID, mutate func(*models.OfferEntity)) models.OfferEntity {
	t.Helper()
	o := models.OfferEntity{
		Title:       "Seeded offer title",
		Description: "Seeded description long enough",
		City:        models.CityParis,
		Preview:     "p.jpg",
		Images:      []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg"},
		HousingType: models.HousingRoom,
		RoomsCount:  1,
		GuestsCount: 1,
		Price:       100,
		Amenities:   []models.Amenity{},
		OwnerID:     ownerID,
		Coordinates: models.CityCoordinates[models.CityParis],
	}
	if mutate != nil {
		mutate(&o)
	}
	created, err := offers.Create(context.Background(), o)
	require.NoError(t, err)
	return *created
}

func TestCreateOffer(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("created", func(t *testing.T) {
		offers, cache := newMemOffers(), newMemCache()
		rec := httptest.NewRecorder()

		CreateOffer(offers, cache)(rec, withUser(jsonRequest(t, "POST", "/api/offers", validOfferBody()), userID))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var got models.OfferEntity
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.False(t, got.ID.IsZero())
		assert.Equal(t, userID, got.OwnerID)
		assert.Equal(t, models.CityParis, got.City)
		assert.Equal(t, []models.Amenity{models.AmenityBreakfast, models.AmenityTowels}, got.Amenities)
		assert.WithinDuration(t, time.Now(), got.OpenDate, time.Minute)
		assert.Len(t, offers.offers, 1)
		assert.Eventually(t, func() bool { return cache.invalidations() == 1 }, time.Second, 10*time.Millisecond)
	})

	rejected := []struct {
		name   string
		mutate func(map[string]interface{})
		want   string
	}{
		{"five images", func(b map[string]interface{}) { b["images"] = []string{"1", "2", "3", "4", "5"} }, "images"},
		{"unknown city", func(b map[string]interface{}) { b["city"] = "Berlin" }, "city"},
		{"price too low", func(b map[string]interface{}) { b["price"] = 99 }, "price"},
		{"fractional rooms", func(b map[string]interface{}) { b["roomsCount"] = 1.5 }, "roomsCount"},
		{"unknown amenity", func(b map[string]interface{}) { b["amenities"] = []string{"Pool"} }, "amenities"},
		{"duplicate amenity", func(b map[string]interface{}) { b["amenities"] = []string{"Fridge", "Fridge"} }, "amenities"},
		{"missing title", func(b map[string]interface{}) { delete(b, "title") }, "title"},
		{"client sets rating", func(b map[string]interface{}) { b["rating"] = 5 }, "rating"},
		{"latitude out of range", func(b map[string]interface{}) { b["coordinates"] = map[string]float64{"latitude": 91, "longitude": 0} }, "latitude"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			offers := newMemOffers()
			body := validOfferBody()
			tt.mutate(body)
			rec := httptest.NewRecorder()

			CreateOffer(offers, NoopCache{})(rec, withUser(jsonRequest(t, "POST", "/api/offers", body), userID))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Empty(t, offers.offers)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/offers", strings.NewReader("{"))

		CreateOffer(newMemOffers(), NoopCache{})(rec, withUser(req, userID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()

		CreateOffer(newMemOffers(), NoopCache{})(rec, jsonRequest(t, "POST", "/api/offers", validOfferBody()))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetOffers(t *testing.T) {
	ownerID, viewerID := primitive.NewObjectID(), primitive.NewObjectID()
	offers := newMemOffers()
	first := seedOffer(t, offers, ownerID, nil)
	seedOffer(t, offers, ownerID, nil)
	favorites := newMemFavorites(offers)
	_, err := favorites.Add(context.Background(), viewerID, first.ID)
	require.NoError(t, err)

	t.Run("anonymous then cached", func(t *testing.T) {
		cache := newMemCache()
		handler := GetOffers(offers, favorites, cache)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest("GET", "/offers", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var got []models.OfferEntity
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Len(t, got, 2)
			assert.False(t, got[0].IsFavorite)
		}
		assert.Equal(t, 1, cache.hits)
		assert.Equal(t, 1, cache.misses)
	})

	t.Run("marks favorites for the viewer", func(t *testing.T) {
		rec := httptest.NewRecorder()
		GetOffers(offers, favorites, newMemCache())(rec, withUser(httptest.NewRequest("GET", "/offers", nil), viewerID))

		var got []models.OfferEntity
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.True(t, got[0].IsFavorite)
		assert.False(t, got[1].IsFavorite)
	})

	t.Run("limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		GetOffers(offers, favorites, newMemCache())(rec, httptest.NewRequest("GET", "/offers?limit=1", nil))

		var got []models.OfferEntity
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		GetOffers(offers, favorites, newMemCache())(rec, httptest.NewRequest("GET", "/offers?limit=-3", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetOffer(t *testing.T) {
	offers := newMemOffers()
	offer := seedOffer(t, offers, primitive.NewObjectID(), nil)
	favorites := newMemFavorites(offers)

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := mux.SetURLVars(httptest.NewRequest("GET", "/offers/"+offer.ID.Hex(), nil), map[string]string{"id": offer.ID.Hex()})

		GetOffer(offers, favorites)(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), offer.Title)
	})

	t.Run("missing", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		rec := httptest.NewRecorder()
		GetOffer(offers, favorites)(rec, mux.SetURLVars(httptest.NewRequest("GET", "/offers/"+id, nil), map[string]string{"id": id}))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		GetOffer(offers, favorites)(rec, mux.SetURLVars(httptest.NewRequest("GET", "/offers/nope", nil), map[string]string{"id": "nope"}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetPremiumOffers(t *testing.T) {
	offers := newMemOffers()
	ownerID := primitive.NewObjectID()
	seedOffer(t, offers, ownerID, func(o *models.OfferEntity) { o.IsPremium = true })
	seedOffer(t, offers, ownerID, func(o *models.OfferEntity) { o.IsPremium = true; o.City = models.CityHamburg })
	seedOffer(t, offers, ownerID, nil)
	favorites := newMemFavorites(offers)

	rec := httptest.NewRecorder()
	GetPremiumOffers(offers, favorites)(rec, httptest.NewRequest("GET", "/offers/premium?city=Paris", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.OfferEntity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)

	rec = httptest.NewRecorder()
	GetPremiumOffers(offers, favorites)(rec, httptest.NewRequest("GET", "/offers/premium?city=Berlin", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOffer(t *testing.T) {
	ownerID := primitive.NewObjectID()

	update := func(offers *memOffers, cache OfferCache, id primitive.ObjectID, user primitive.ObjectID, body interface{}) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := jsonRequest(t, "PUT", "/api/offers/"+id.Hex(), body)
		req = mux.SetURLVars(withUser(req, user), map[string]string{"id": id.Hex()})
		UpdateOffer(offers, cache)(rec, req)
		return rec
	}

	t.Run("owner updates", func(t *testing.T) {
		offers, cache := newMemOffers(), newMemCache()
		offer := seedOffer(t, offers, ownerID, nil)

		rec := update(offers, cache, offer.ID, ownerID, map[string]interface{}{
			"price":       500,
			"coordinates": map[string]float64{"latitude": 50.938361, "longitude": 6.959974},
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got models.OfferEntity
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 500, got.Price)
		assert.Equal(t, offer.Title, got.Title)
		assert.InDelta(t, 50.938361, got.Coordinates.Latitude, 1e-9)
		assert.Eventually(t, func() bool { return cache.invalidations() == 1 }, time.Second, 10*time.Millisecond)
	})

	t.Run("someone else's offer", func(t *testing.T) {
		offers := newMemOffers()
		offer := seedOffer(t, offers, ownerID, nil)

		rec := update(offers, NoopCache{}, offer.ID, primitive.NewObjectID(), map[string]interface{}{"price": 500})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing offer", func(t *testing.T) {
		rec := update(newMemOffers(), NoopCache{}, primitive.NewObjectID(), ownerID, map[string]interface{}{"price": 500})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty patch", func(t *testing.T) {
		offers := newMemOffers()
		offer := seedOffer(t, offers, ownerID, nil)

		rec := update(offers, NoopCache{}, offer.ID, ownerID, map[string]interface{}{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteOffer(t *testing.T) {
	ownerID := primitive.NewObjectID()
	offers := newMemOffers()
	offer := seedOffer(t, offers, ownerID, nil)
	other := seedOffer(t, offers, ownerID, nil)
	comments := &memComments{}
	_, _ = comments.Create(context.Background(), models.Comment{OfferID: offer.ID, Text: "great stay", Rating: 5})
	_, _ = comments.Create(context.Background(), models.Comment{OfferID: other.ID, Text: "fine stay", Rating: 3})
	favorites := newMemFavorites(offers)
	_, _ = favorites.Add(context.Background(), ownerID, offer.ID)
	cache := newMemCache()

	rec := httptest.NewRecorder()
	req := mux.SetURLVars(withUser(httptest.NewRequest("DELETE", "/api/offers/"+offer.ID.Hex(), nil), ownerID), map[string]string{"id": offer.ID.Hex()})
	DeleteOffer(offers, comments, favorites, cache)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	ok, _ := offers.Exists(context.Background(), offer.ID)
	assert.False(t, ok)
	left, _ := comments.FindByOfferID(context.Background(), offer.ID)
	assert.Empty(t, left)
	kept, _ := comments.FindByOfferID(context.Background(), other.ID)
	assert.Len(t, kept, 1)
	favs, _ := favorites.List(context.Background(), ownerID)
	assert.Empty(t, favs)
	assert.Eventually(t, func() bool { return cache.invalidations() == 1 }, time.Second, 10*time.Millisecond)
}

func TestGenerateCacheKey(t *testing.T) {
	a := generateCacheKey("u1", url.Values{"limit": {"5"}, "city": {"Paris"}})
	b := generateCacheKey("u1", url.Values{"city": {"Paris"}, "limit": {"5"}})
	c := generateCacheKey("u2", url.Values{"city": {"Paris"}, "limit": {"5"}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, offerCachePrefix))
}
