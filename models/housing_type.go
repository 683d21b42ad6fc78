package models

type HousingType string

const (
	HousingApartment HousingType = "apartment"
	HousingHouse     HousingType = "house"
	HousingRoom      HousingType = "room"
	HousingHotel     HousingType = "hotel"
)

var HousingTypes = []HousingType{HousingApartment, HousingHouse, HousingRoom, HousingHotel}

func LookupHousingType(s string) (HousingType, bool) {
	for _, h := range HousingTypes {
		if string(h) == s {
			return h, true
		}
	}
	return "", false
}

func ParseHousingType(s string) (HousingType, error) {
	h, ok := LookupHousingType(s)
	if !ok {
		return "", unknown("housing type", s)
	}
	return h, nil
}
