package tsv

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dcode-github/six_cities/backend/models"
	"golang.org/x/text/unicode/norm"
)

const (
	FieldSeparator       = "\t"
	ListSeparator        = ";"
	CoordinatesSeparator = ","

	DateLayout = "2006-01-02"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldOpenDate
	fieldCity
	fieldPreview
	fieldImages
	fieldIsPremium
	fieldIsFavorite
	fieldRating
	fieldHousingType
	fieldRooms
	fieldGuests
	fieldPrice
	fieldAmenities
	fieldOwnerName
	fieldOwnerEmail
	fieldOwnerAvatar
	fieldOwnerType
	fieldCommentsCount
	fieldCoordinates

	FieldCount
)

var fieldNames = [FieldCount]string{
	"title", "description", "openDate", "city", "preview", "images",
	"isPremium", "isFavorite", "rating", "housingType", "rooms", "guests",
	"price", "amenities", "ownerName", "ownerEmail", "ownerAvatar", "ownerType",
	"commentsCount", "coordinates",
}

var (
	errEmpty      = errors.New("must not be empty")
	errNotFinite  = errors.New("not a finite number")
	errOutOfRange = errors.New("out of range")
)

// ParseOffer converts one record into an offer. Every field is checked and the
// first failure is returned as a *ParseError. The owner password is left empty.
func ParseOffer(line string) (models.Offer, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, FieldSeparator)
	if len(fields) != FieldCount {
		return models.Offer{}, &ParseError{
			Field: "record",
			Value: truncate(line, 64),
			Err:   fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), FieldCount),
		}
	}

	p := &recordParser{fields: fields}
	offer := models.Offer{
		Title:         p.required(fieldTitle),
		Description:   p.text(fieldDescription),
		OpenDate:      p.date(fieldOpenDate),
		City:          p.city(fieldCity),
		Preview:       p.text(fieldPreview),
		Images:        p.list(fieldImages),
		IsPremium:     p.boolean(fieldIsPremium),
		IsFavorite:    p.boolean(fieldIsFavorite),
		Rating:        p.float(fieldRating, models.MinRating, models.MaxRating),
		HousingType:   p.housingType(fieldHousingType),
		RoomsCount:    p.integer(fieldRooms, 1, math.MaxInt32),
		GuestsCount:   p.integer(fieldGuests, 1, math.MaxInt32),
		Price:         p.integer(fieldPrice, models.MinPrice, models.MaxPrice),
		Amenities:     p.amenities(fieldAmenities),
		Owner: models.Owner{
			Name:     p.text(fieldOwnerName),
			Email:    p.email(fieldOwnerEmail),
			Avatar:   p.text(fieldOwnerAvatar),
			Password: "",
			Type:     p.userType(fieldOwnerType),
		},
		CommentsCount: p.integer(fieldCommentsCount, 0, math.MaxInt32),
		Coordinates:   p.coordinates(fieldCoordinates),
	}
	if p.err != nil {
		return models.Offer{}, p.err
	}

	return offer, nil
}

// recordParser keeps the first conversion error; later calls still return zero values.
type recordParser struct {
	fields []string
	err    error
}

func (p *recordParser) fail(i int, err error) {
	if p.err == nil {
		p.err = &ParseError{Field: fieldNames[i], Value: p.fields[i], Err: err}
	}
}

func (p *recordParser) text(i int) string {
	return norm.NFC.String(strings.TrimSpace(p.fields[i]))
}

func (p *recordParser) required(i int) string {
	s := p.text(i)
	if s == "" {
		p.fail(i, errEmpty)
	}
	return s
}

func (p *recordParser) email(i int) string {
	s := p.required(i)
	if s != "" && !strings.Contains(s, "@") {
		p.fail(i, errors.New("not an email address"))
	}
	return s
}

func (p *recordParser) boolean(i int) bool {
	return p.text(i) == "true"
}

func (p *recordParser) date(i int) time.Time {
	s := p.text(i)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		p.fail(i, errors.New("not an RFC3339 or YYYY-MM-DD date"))
		return time.Time{}
	}
	return t
}

func (p *recordParser) list(i int) []string {
	return splitList(p.text(i))
}

func (p *recordParser) float(i int, lo, hi float64) float64 {
	v, err := parseFinite(p.text(i))
	if err != nil {
		p.fail(i, err)
		return 0
	}
	if v < lo || v > hi {
		p.fail(i, fmt.Errorf("%w [%v, %v]", errOutOfRange, lo, hi))
		return 0
	}
	return v
}

func (p *recordParser) integer(i int, lo, hi int) int {
	v, err := strconv.Atoi(p.text(i))
	if err != nil {
		p.fail(i, errors.New("not an integer"))
		return 0
	}
	if v < lo || v > hi {
		p.fail(i, fmt.Errorf("%w [%d, %d]", errOutOfRange, lo, hi))
		return 0
	}
	return v
}

func (p *recordParser) city(i int) models.City {
	c, err := models.ParseCity(p.text(i))
	if err != nil {
		p.fail(i, err)
	}
	return c
}

func (p *recordParser) housingType(i int) models.HousingType {
	h, err := models.ParseHousingType(p.text(i))
	if err != nil {
		p.fail(i, err)
	}
	return h
}

func (p *recordParser) userType(i int) models.UserType {
	t, err := models.ParseUserType(p.text(i))
	if err != nil {
		p.fail(i, err)
	}
	return t
}

func (p *recordParser) amenities(i int) []models.Amenity {
	a, err := models.ParseAmenities(splitList(p.text(i)))
	if err != nil {
		p.fail(i, err)
		return []models.Amenity{}
	}
	return a
}

func (p *recordParser) coordinates(i int) models.Coordinates {
	parts := strings.Split(p.text(i), CoordinatesSeparator)
	if len(parts) != 2 {
		p.fail(i, errors.New("want latitude,longitude"))
		return models.Coordinates{}
	}

	lat, err := parseFinite(strings.TrimSpace(parts[0]))
	if err != nil {
		p.fail(i, fmt.Errorf("latitude: %w", err))
		return models.Coordinates{}
	}
	lon, err := parseFinite(strings.TrimSpace(parts[1]))
	if err != nil {
		p.fail(i, fmt.Errorf("longitude: %w", err))
		return models.Coordinates{}
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		p.fail(i, errOutOfRange)
		return models.Coordinates{}
	}

	return models.Coordinates{Latitude: lat, Longitude: lon}
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func splitList(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	for _, item := range strings.Split(s, ListSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
