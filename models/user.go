package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	Password  string             `bson:"password" json:"-"`
	Type      UserType           `bson:"type" json:"type"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewUserFromOwner builds a user record for an offer owner. passwordHash is stored as is.
func NewUserFromOwner(o Owner, passwordHash string) User {
	t := o.Type
	if t == "" {
		t = UserRegular
	}
	return User{
		Name:     o.Name,
		Email:    o.Email,
		Avatar:   o.Avatar,
		Password: passwordHash,
		Type:     t,
	}
}
