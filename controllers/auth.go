package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/dcode-github/six_cities/backend/repository"
	"github.com/dcode-github/six_cities/backend/utils"
)

type Response struct {
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

type registerRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Avatar   string          `json:"avatar"`
	Password string          `json:"password"`
	Type     models.UserType `json:"type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterUser(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeValidated(w, r, registerSchema, &req) {
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))

		if _, err := users.FindByEmail(r.Context(), email); err == nil {
			slog.Warn("User email already exists", "email", email)
			http.Error(w, "Email already exists", http.StatusConflict)
			return
		} else if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("Error looking up user", "email", email, "error", err)
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}

		hashedPwd, err := utils.HashPassword(req.Password)
		if err != nil {
			slog.Error("Error hashing password", "error", err)
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}

		userType := req.Type
		if userType == "" {
			userType = models.UserRegular
		}
		user, err := users.Create(r.Context(), models.User{
			Name:      strings.TrimSpace(req.Name),
			Email:     email,
			Avatar:    req.Avatar,
			Password:  hashedPwd,
			Type:      userType,
			CreatedAt: time.Now().UTC(),
		})
		if errors.Is(err, repository.ErrAlreadyExists) {
			http.Error(w, "Email already exists", http.StatusConflict)
			return
		}
		if err != nil {
			slog.Error("Error inserting user into the database", "error", err)
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}

		slog.Info("User registered", "user", user.ID.Hex())
		writeJSON(w, http.StatusCreated, Response{Message: "User registered successfully", User: user})
	}
}

func LoginUser(users UserStore, tokens *utils.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials loginRequest
		if !decodeValidated(w, r, loginSchema, &credentials) {
			return
		}
		email := strings.ToLower(strings.TrimSpace(credentials.Email))

		dbUser, err := users.FindByEmail(r.Context(), email)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				slog.Error("Error looking up user", "email", email, "error", err)
			}
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		if !utils.CheckPasswordHash(credentials.Password, dbUser.Password) {
			slog.Warn("Invalid credentials", "email", email)
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := tokens.Generate(dbUser.ID.Hex(), dbUser.Email)
		if err != nil {
			slog.Error("Error generating JWT token", "error", err)
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, Response{Message: "Login successful", Token: token, User: dbUser})
	}
}

// GetCurrentUser returns the user behind the bearer token.
func GetCurrentUser(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		user, err := users.FindByID(r.Context(), userID)
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Error fetching user", "user", userID.Hex(), "error", err)
			http.Error(w, "Error fetching user", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func UpdateAvatar(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req struct {
			Avatar string `json:"avatar"`
		}
		if !decodeValidated(w, r, avatarSchema, &req) {
			return
		}

		user, err := users.UpdateAvatar(r.Context(), userID, req.Avatar)
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Avatar update failed", "user", userID.Hex(), "error", err)
			http.Error(w, "Avatar update failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
