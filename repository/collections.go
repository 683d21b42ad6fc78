package repository

const (
	UsersCollection     = "users"
	OffersCollection    = "offers"
	CommentsCollection  = "comments"
	FavoritesCollection = "favorites"
)
