package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dcode-github/six_cities/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

func GetComments(offers OfferStore, comments CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offerID, ok := pathObjectID(w, r, "id")
		if !ok {
			return
		}
		if !offerExists(w, r, offers, offerID) {
			return
		}

		list, err := comments.FindByOfferID(r.Context(), offerID)
		if err != nil {
			slog.Error("Failed to fetch comments", "offer", offerID.Hex(), "error", err)
			http.Error(w, "Failed to fetch comments", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CreateComment stores the comment, bumps the offer's comment count and recomputes its rating.
func CreateComment(offers OfferStore, comments CommentStore, cache OfferCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		offerID, ok := pathObjectID(w, r, "id")
		if !ok {
			return
		}

		var req commentRequest
		if !decodeValidated(w, r, createCommentSchema, &req) {
			return
		}
		if !offerExists(w, r, offers, offerID) {
			return
		}

		comment, err := comments.Create(r.Context(), models.Comment{
			Text:      strings.TrimSpace(req.Text),
			Rating:    req.Rating,
			OfferID:   offerID,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			slog.Error("Failed to create comment", "offer", offerID.Hex(), "error", err)
			http.Error(w, "Failed to create comment", http.StatusInternalServerError)
			return
		}

		if err := offers.IncCommentCount(r.Context(), offerID); err != nil {
			slog.Error("Failed to increment comment count", "offer", offerID.Hex(), "error", err)
		}
		rating, count, err := offers.CalculateRating(r.Context(), offerID)
		if err != nil {
			slog.Error("Failed to recompute rating", "offer", offerID.Hex(), "error", err)
		} else {
			slog.Debug("Offer rating recomputed", "offer", offerID.Hex(), "rating", rating, "comments", count)
		}

		invalidateAsync(cache)

		writeJSON(w, http.StatusCreated, comment)
	}
}

func offerExists(w http.ResponseWriter, r *http.Request, offers OfferStore, offerID primitive.ObjectID) bool {
	exists, err := offers.Exists(r.Context(), offerID)
	if err != nil {
		slog.Error("Failed to check offer", "offer", offerID.Hex(), "error", err)
		http.Error(w, "Failed to check offer", http.StatusInternalServerError)
		return false
	}
	if !exists {
		http.Error(w, "Offer not found", http.StatusNotFound)
		return false
	}
	return true
}
