package models

type Amenity string

const (
	AmenityBreakfast       Amenity = "Breakfast"
	AmenityAirConditioning Amenity = "Air conditioning"
	AmenityWorkspace       Amenity = "Laptop friendly workspace"
	AmenityBabySeat        Amenity = "Baby seat"
	AmenityWasher          Amenity = "Washer"
	AmenityTowels          Amenity = "Towels"
	AmenityFridge          Amenity = "Fridge"
)

var Amenities = []Amenity{
	AmenityBreakfast,
	AmenityAirConditioning,
	AmenityWorkspace,
	AmenityBabySeat,
	AmenityWasher,
	AmenityTowels,
	AmenityFridge,
}

func LookupAmenity(s string) (Amenity, bool) {
	for _, a := range Amenities {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

func ParseAmenity(s string) (Amenity, error) {
	a, ok := LookupAmenity(s)
	if !ok {
		return "", unknown("amenity", s)
	}
	return a, nil
}

// ParseAmenities parses every item and drops repeats, keeping first-seen order.
func ParseAmenities(items []string) ([]Amenity, error) {
	out := make([]Amenity, 0, len(items))
	seen := make(map[Amenity]bool, len(items))
	for _, item := range items {
		a, err := ParseAmenity(item)
		if err != nil {
			return nil, err
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out, nil
}
