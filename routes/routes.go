package routes

import (
	"github.com/dcode-github/six_cities/backend/controllers"
	"github.com/dcode-github/six_cities/backend/middleware"
	"github.com/dcode-github/six_cities/backend/utils"
	"github.com/gorilla/mux"
)

type Dependencies struct {
	Users     controllers.UserStore
	Offers    controllers.OfferStore
	Comments  controllers.CommentStore
	Favorites controllers.FavoriteStore
	Cache     controllers.OfferCache
	Tokens    *utils.TokenService
}

func Routes(router *mux.Router, deps Dependencies) {
	cache := deps.Cache
	if cache == nil {
		cache = controllers.NoopCache{}
	}

	// Auth routes
	router.HandleFunc("/register", controllers.RegisterUser(deps.Users)).Methods("POST")
	router.HandleFunc("/login", controllers.LoginUser(deps.Users, deps.Tokens)).Methods("POST")

	// Public reads; a valid token marks favorites
	public := router.PathPrefix("/offers").Subrouter()
	public.Use(middleware.OptionalAuth(deps.Tokens))
	public.HandleFunc("", controllers.GetOffers(deps.Offers, deps.Favorites, cache)).Methods("GET")
	public.HandleFunc("/premium", controllers.GetPremiumOffers(deps.Offers, deps.Favorites)).Methods("GET")
	public.HandleFunc("/{id}", controllers.GetOffer(deps.Offers, deps.Favorites)).Methods("GET")
	public.HandleFunc("/{id}/comments", controllers.GetComments(deps.Offers, deps.Comments)).Methods("GET")

	// Routes that require authentication
	authenticated := router.PathPrefix("/api").Subrouter()
	authenticated.Use(middleware.AuthMiddleware(deps.Tokens))

	// User routes
	authenticated.HandleFunc("/me", controllers.GetCurrentUser(deps.Users)).Methods("GET")
	authenticated.HandleFunc("/me/avatar", controllers.UpdateAvatar(deps.Users)).Methods("PUT")

	// Offer routes
	authenticated.HandleFunc("/offers", controllers.CreateOffer(deps.Offers, cache)).Methods("POST")
	authenticated.HandleFunc("/offers/{id}", controllers.UpdateOffer(deps.Offers, cache)).Methods("PUT", "PATCH")
	authenticated.HandleFunc("/offers/{id}", controllers.DeleteOffer(deps.Offers, deps.Comments, deps.Favorites, cache)).Methods("DELETE")
	authenticated.HandleFunc("/offers/{id}/comments", controllers.CreateComment(deps.Offers, deps.Comments, cache)).Methods("POST")

	// Favorites routes
	authenticated.HandleFunc("/favorites", controllers.AddFavorite(deps.Offers, deps.Favorites, cache)).Methods("POST")
	authenticated.HandleFunc("/favorites", controllers.GetFavorites(deps.Favorites)).Methods("GET")
	authenticated.HandleFunc("/favorites/{id}", controllers.DeleteFavorite(deps.Favorites, cache)).Methods("DELETE")
}
