package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 0
	MaxRating = 5

	MinPrice = 100
	MaxPrice = 100000

	OfferImagesCount = 6
)

type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

type Owner struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Avatar   string   `json:"avatar"`
	Password string   `json:"-"`
	Type     UserType `json:"type"`
}

// Offer is one listing as read from an import file, before it is stored.
type Offer struct {
	Title         string
	Description   string
	OpenDate      time.Time
	City          City
	Preview       string
	Images        []string
	IsPremium     bool
	IsFavorite    bool
	Rating        float64
	HousingType   HousingType
	RoomsCount    int
	GuestsCount   int
	Price         int
	Amenities     []Amenity
	Owner         Owner
	CommentsCount int
	Coordinates   Coordinates
}

type OfferEntity struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	OpenDate      time.Time          `bson:"openDate" json:"openDate"`
	City          City               `bson:"city" json:"city"`
	Preview       string             `bson:"preview" json:"preview"`
	Images        []string           `bson:"images" json:"images"`
	IsPremium     bool               `bson:"isPremium" json:"isPremium"`
	IsFavorite    bool               `bson:"-" json:"isFavorite"`
	Rating        float64            `bson:"rating" json:"rating"`
	HousingType   HousingType        `bson:"housingType" json:"housingType"`
	RoomsCount    int                `bson:"roomsCount" json:"roomsCount"`
	GuestsCount   int                `bson:"guestsCount" json:"guestsCount"`
	Price         int                `bson:"price" json:"price"`
	Amenities     []Amenity          `bson:"amenities" json:"amenities"`
	OwnerID       primitive.ObjectID `bson:"owner" json:"ownerId"`
	Owner         *User              `bson:"ownerDetails,omitempty" json:"owner,omitempty"`
	CommentsCount int                `bson:"commentsCount" json:"commentsCount"`
	Coordinates   Coordinates        `bson:"coordinates" json:"coordinates"`
	Geohash       string             `bson:"geohash" json:"-"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewOfferEntity copies an offer into its stored form. The owner becomes a reference.
func NewOfferEntity(o Offer, ownerID primitive.ObjectID) OfferEntity {
	images := make([]string, len(o.Images))
	copy(images, o.Images)
	amenities := make([]Amenity, len(o.Amenities))
	copy(amenities, o.Amenities)

	return OfferEntity{
		Title:         o.Title,
		Description:   o.Description,
		OpenDate:      o.OpenDate,
		City:          o.City,
		Preview:       o.Preview,
		Images:        images,
		IsPremium:     o.IsPremium,
		Rating:        o.Rating,
		HousingType:   o.HousingType,
		RoomsCount:    o.RoomsCount,
		GuestsCount:   o.GuestsCount,
		Price:         o.Price,
		Amenities:     amenities,
		OwnerID:       ownerID,
		CommentsCount: o.CommentsCount,
		Coordinates:   o.Coordinates,
	}
}

// OfferFromEntity is the reverse of NewOfferEntity. Owner is filled only when
// the entity was loaded together with its owner document.
func OfferFromEntity(e OfferEntity) Offer {
	o := Offer{
		Title:         e.Title,
		Description:   e.Description,
		OpenDate:      e.OpenDate,
		City:          e.City,
		Preview:       e.Preview,
		Images:        append([]string(nil), e.Images...),
		IsPremium:     e.IsPremium,
		IsFavorite:    e.IsFavorite,
		Rating:        e.Rating,
		HousingType:   e.HousingType,
		RoomsCount:    e.RoomsCount,
		GuestsCount:   e.GuestsCount,
		Price:         e.Price,
		Amenities:     append([]Amenity(nil), e.Amenities...),
		CommentsCount: e.CommentsCount,
		Coordinates:   e.Coordinates,
	}
	if e.Owner != nil {
		o.Owner = Owner{
			Name:   e.Owner.Name,
			Email:  e.Owner.Email,
			Avatar: e.Owner.Avatar,
			Type:   e.Owner.Type,
		}
	}
	return o
}
