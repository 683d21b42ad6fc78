package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/dcode-github/six_cities/backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddFavorite marks an offer for the user and drops cached offer lists.
func AddFavorite(offers OfferStore, favorites FavoriteStore, cache OfferCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req struct {
			OfferID primitive.ObjectID `json:"offerId"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			slog.Warn("Invalid request data", "error", err)
			http.Error(w, "Invalid request data", http.StatusBadRequest)
			return
		}
		if req.OfferID.IsZero() {
			http.Error(w, "offerId is required", http.StatusBadRequest)
			return
		}

		exists, err := offers.Exists(r.Context(), req.OfferID)
		if err != nil {
			slog.Error("Failed to check offer", "offer", req.OfferID.Hex(), "error", err)
			http.Error(w, "Failed to check offer", http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, "Offer not found", http.StatusNotFound)
			return
		}

		fav, err := favorites.Add(r.Context(), userID, req.OfferID)
		if errors.Is(err, repository.ErrAlreadyExists) {
			http.Error(w, "Offer is already in favorites", http.StatusConflict)
			return
		}
		if err != nil {
			slog.Error("Failed to add offer to favorites", "error", err)
			http.Error(w, "Failed to add offer to favorites", http.StatusInternalServerError)
			return
		}

		invalidateAsync(cache)

		writeJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "Offer added to favorites",
			Data:    fav,
		})
	}
}

func GetFavorites(favorites FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		list, err := favorites.List(r.Context(), userID)
		if err != nil {
			slog.Error("Failed to fetch favorite offers", "user", userID.Hex(), "error", err)
			http.Error(w, "Failed to fetch favorite offers", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Fetched favorite offers",
			Data:    list,
		})
	}
}

func DeleteFavorite(favorites FavoriteStore, cache OfferCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		offerID, ok := pathObjectID(w, r, "id")
		if !ok {
			return
		}

		err := favorites.Remove(r.Context(), userID, offerID)
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Favorite not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Failed to remove offer from favorites", "error", err)
			http.Error(w, "Failed to remove offer from favorites", http.StatusInternalServerError)
			return
		}

		invalidateAsync(cache)

		writeJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Offer removed from favorites",
		})
	}
}
