package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const UserIDKey = ContextKey("userID")

// currentUser returns the authenticated user id, if the request carries one.
func currentUser(r *http.Request) (primitive.ObjectID, bool) {
	raw, ok := r.Context().Value(UserIDKey).(string)
	if !ok || raw == "" {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := currentUser(r)
	if !ok {
		slog.Warn("User ID missing in context", "path", r.URL.Path)
		http.Error(w, "User ID missing in context", http.StatusUnauthorized)
	}
	return id, ok
}

func pathObjectID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	raw := mux.Vars(r)[name]
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		slog.Warn("Invalid object id", "param", name, "value", raw)
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
