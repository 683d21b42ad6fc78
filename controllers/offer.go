package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/dcode-github/six_cities/backend/repository"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

type offerRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	OpenDate    *time.Time         `json:"openDate"`
	City        models.City        `json:"city"`
	Preview     string             `json:"preview"`
	Images      []string           `json:"images"`
	IsPremium   bool               `json:"isPremium"`
	HousingType models.HousingType `json:"housingType"`
	RoomsCount  int                `json:"roomsCount"`
	GuestsCount int                `json:"guestsCount"`
	Price       int                `json:"price"`
	Amenities   []models.Amenity   `json:"amenities"`
	Coordinates models.Coordinates `json:"coordinates"`
}

func (req offerRequest) entity(ownerID primitive.ObjectID) models.OfferEntity {
	openDate := time.Now().UTC()
	if req.OpenDate != nil {
		openDate = req.OpenDate.UTC()
	}
	return models.OfferEntity{
		Title:       req.Title,
		Description: req.Description,
		OpenDate:    openDate,
		City:        req.City,
		Preview:     req.Preview,
		Images:      req.Images,
		IsPremium:   req.IsPremium,
		HousingType: req.HousingType,
		RoomsCount:  req.RoomsCount,
		GuestsCount: req.GuestsCount,
		Price:       req.Price,
		Amenities:   req.Amenities,
		OwnerID:     ownerID,
		Coordinates: req.Coordinates,
	}
}

type offerPatch struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	OpenDate    *time.Time          `json:"openDate"`
	City        *models.City        `json:"city"`
	Preview     *string             `json:"preview"`
	Images      *[]string           `json:"images"`
	IsPremium   *bool               `json:"isPremium"`
	HousingType *models.HousingType `json:"housingType"`
	RoomsCount  *int                `json:"roomsCount"`
	GuestsCount *int                `json:"guestsCount"`
	Price       *int                `json:"price"`
	Amenities   *[]models.Amenity   `json:"amenities"`
	Coordinates *models.Coordinates `json:"coordinates"`
}

// set lists only the fields present in the request.
func (p offerPatch) set() bson.M {
	s := bson.M{}
	if p.Title != nil {
		s["title"] = *p.Title
	}
	if p.Description != nil {
		s["description"] = *p.Description
	}
	if p.OpenDate != nil {
		s["openDate"] = p.OpenDate.UTC()
	}
	if p.City != nil {
		s["city"] = *p.City
	}
	if p.Preview != nil {
		s["preview"] = *p.Preview
	}
	if p.Images != nil {
		s["images"] = *p.Images
	}
	if p.IsPremium != nil {
		s["isPremium"] = *p.IsPremium
	}
	if p.HousingType != nil {
		s["housingType"] = *p.HousingType
	}
	if p.RoomsCount != nil {
		s["roomsCount"] = *p.RoomsCount
	}
	if p.GuestsCount != nil {
		s["guestsCount"] = *p.GuestsCount
	}
	if p.Price != nil {
		s["price"] = *p.Price
	}
	if p.Amenities != nil {
		s["amenities"] = *p.Amenities
	}
	if p.Coordinates != nil {
		s["coordinates"] = *p.Coordinates
	}
	return s
}

func CreateOffer(offers OfferStore, cache OfferCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req offerRequest
		if !decodeValidated(w, r, createOfferSchema, &req) {
			return
		}

		created, err := offers.Create(r.Context(), req.entity(userID))
		if err != nil {
			slog.Error("Insert failed", "error", err)
			http.Error(w, "Failed to create offer", http.StatusInternalServerError)
			return
		}

		invalidateAsync(cache)

		slog.Info("Offer created", "offer", created.ID.Hex(), "owner", userID.Hex())
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetOffers(offers OfferStore, favorites FavoriteStore, cache OfferCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, authenticated := currentUser(r)

		query := r.URL.Query()
		cacheKey := generateCacheKey(userID.Hex(), query)

		if cached, hit := cache.Get(r.Context(), cacheKey); hit {
			slog.Debug("Cache hit", "key", cacheKey)
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
		slog.Debug("Cache miss", "key", cacheKey)

		var limit int64
		if raw := query.Get("limit"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n <= 0 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		list, err := offers.Find(r.Context(), limit)
		if err != nil {
			slog.Error("Error fetching offers", "error", err)
			http.Error(w, "Error fetching offers", http.StatusInternalServerError)
			return
		}
		if authenticated {
			markFavorites(r.Context(), favorites, userID, list)
		}

		resultBytes, err := json.Marshal(list)
		if err != nil {
			slog.Error("Failed to serialize offers", "error", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}

		cache.Set(r.Context(), cacheKey, resultBytes)

		w.Header().Set("Content-Type", "application/json")
		w.Write(resultBytes)
	}
}

func GetOffer(offers OfferStore, favorites FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offerID, ok := pathObjectID(w, r, "id")
		if !ok {
			return
		}

		offer, err := offers.FindByID(r.Context(), offerID)
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Offer not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Error fetching offer", "offer", offerID.Hex(), "error", err)
			http.Error(w, "Error fetching offer", http.StatusInternalServerError)
			return
		}

		if userID, authenticated := currentUser(r); authenticated {
			list := []models.OfferEntity{*offer}
			markFavorites(r.Context(), favorites, userID, list)
			offer = &list[0]
		}

		writeJSON(w, http.StatusOK, offer)
	}
}

func GetPremiumOffers(offers OfferStore, favorites FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city, err := models.ParseCity(r.URL.Query().Get("city"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		list, err := offers.FindPremiumInCity(r.Context(), city)
		if err != nil {
			slog.Error("Error fetching premium offers", "city", city, "error", err)
			http.Error(w, "Error fetching offers", http.StatusInternalServerError)
			return
		}
		if userID, authenticated := currentUser(r); authenticated {
			markFavorites(r.Context(), favorites, userID, list)
		}

		writeJSON(w, http.StatusOK, list)
	}
}

func UpdateOffer(offers OfferStore, cache OfferCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		offerID, ok := pathObjectID(w, r, "id")
		if !ok {
			return
		}

		var patch offerPatch
		if !decodeValidated(w, r, updateOfferSchema, &patch) {
			return
		}

		updated, err := offers.UpdateByID(r.Context(), offerID, userID, patch.set())
		if errors.Is(err, repository.ErrNotFound) {
			respondMissingOrForeign(w, r, offers, offerID)
			return
		}
		if err != nil {
			slog.Error("Update failed", "offer", offerID.Hex(), "error", err)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}

		invalidateAsync(cache)

		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteOffer removes the offer together with its comments and favorites.
func DeleteOffer(offers OfferStore, comments CommentStore, favorites FavoriteStore, cache OfferCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		offerID, ok := pathObjectID(w, r, "id")
		if !ok {
			return
		}

		err := offers.DeleteByID(r.Context(), offerID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			respondMissingOrForeign(w, r, offers, offerID)
			return
		}
		if err != nil {
			slog.Error("Delete failed", "offer", offerID.Hex(), "error", err)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		removed, err := comments.DeleteByOfferID(r.Context(), offerID)
		if err != nil {
			slog.Error("Failed to delete offer comments", "offer", offerID.Hex(), "error", err)
		}
		if err := favorites.DeleteByOfferID(r.Context(), offerID); err != nil {
			slog.Error("Failed to delete offer favorites", "offer", offerID.Hex(), "error", err)
		}

		invalidateAsync(cache)

		slog.Info("Offer deleted", "offer", offerID.Hex(), "comments", removed)
		writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Message: "Offer deleted successfully"})
	}
}

func respondMissingOrForeign(w http.ResponseWriter, r *http.Request, offers OfferStore, offerID primitive.ObjectID) {
	exists, err := offers.Exists(r.Context(), offerID)
	if err != nil {
		slog.Error("Error checking offer", "offer", offerID.Hex(), "error", err)
		http.Error(w, "Error checking offer", http.StatusInternalServerError)
		return
	}
	if exists {
		http.Error(w, "Offer belongs to another user", http.StatusForbidden)
		return
	}
	http.Error(w, "Offer not found", http.StatusNotFound)
}

func markFavorites(ctx context.Context, favorites FavoriteStore, userID primitive.ObjectID, list []models.OfferEntity) {
	if len(list) == 0 {
		return
	}
	ids := make([]primitive.ObjectID, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	favSet, err := favorites.FavoriteSet(ctx, userID, ids)
	if err != nil {
		slog.Warn("Error fetching favorites", "user", userID.Hex(), "error", err)
		return
	}
	for i := range list {
		list[i].IsFavorite = favSet[list[i].ID]
	}
}

// decodeValidated reads the body, checks it against schema and decodes it into dst.
// It writes the error response itself and reports whether the handler may continue.
func decodeValidated(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := validateBody(schema, body); err != nil {
		slog.Warn("Request validation failed", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		slog.Warn("Invalid request body", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
