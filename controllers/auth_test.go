package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dcode-github/six_cities/backend/models"
	"github.com/dcode-github/six_cities/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newMemUsers()
	tokens := utils.NewTokenService("test-secret")
	register := RegisterUser(users)
	login := LoginUser(users, tokens)

	rec := httptest.NewRecorder()
	register(rec, jsonRequest(t, "POST", "/register", map[string]string{
		"name":     "Alice",
		"email":    "Alice@Example.com",
		"password": "secret1",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret1")

	stored, err := users.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.UserRegular, stored.Type)
	assert.NotEqual(t, "secret1", stored.Password)

	t.Run("duplicate email", func(t *testing.T) {
		rec := httptest.NewRecorder()
		register(rec, jsonRequest(t, "POST", "/register", map[string]string{
			"name": "Alice", "email": "alice@example.com", "password": "secret1",
		}))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		register(rec, jsonRequest(t, "POST", "/register", map[string]string{
			"name": "Bob", "email": "not-an-email", "password": "secret1",
		}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		register(rec, jsonRequest(t, "POST", "/register", map[string]string{
			"name": "Bob", "email": "bob@example.com", "password": "123",
		}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		register(rec, jsonRequest(t, "POST", "/register", map[string]string{
			"name": "Bob", "email": "bob@example.com", "password": "secret1", "type": "admin",
		}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		login(rec, jsonRequest(t, "POST", "/login", map[string]string{"email": "alice@example.com", "password": "secret1"}))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		claims, err := tokens.Validate(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, stored.ID.Hex(), claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		login(rec, jsonRequest(t, "POST", "/login", map[string]string{"email": "alice@example.com", "password": "nope"}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		login(rec, jsonRequest(t, "POST", "/login", map[string]string{"email": "carol@example.com", "password": "secret1"}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCurrentUserAndAvatar(t *testing.T) {
	users := newMemUsers()
	user, err := users.Create(context.Background(), models.User{Name: "Alice", Email: "alice@example.com", Type: models.UserPro})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	GetCurrentUser(users)(rec, withUser(httptest.NewRequest("GET", "/api/me", nil), user.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")

	rec = httptest.NewRecorder()
	UpdateAvatar(users)(rec, withUser(jsonRequest(t, "PUT", "/api/me/avatar", map[string]string{"avatar": "me.png"}), user.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	got, _ := users.FindByID(context.Background(), user.ID)
	assert.Equal(t, "me.png", got.Avatar)

	rec = httptest.NewRecorder()
	UpdateAvatar(users)(rec, withUser(jsonRequest(t, "PUT", "/api/me/avatar", map[string]string{"avatar": "me.gif"}), user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	GetCurrentUser(users)(rec, withUser(httptest.NewRequest("GET", "/api/me", nil), primitive.NewObjectID()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
