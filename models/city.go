package models

type City string

const (
	CityParis      City = "Paris"
	CityCologne    City = "Cologne"
	CityBrussels   City = "Brussels"
	CityAmsterdam  City = "Amsterdam"
	CityHamburg    City = "Hamburg"
	CityDusseldorf City = "Dusseldorf"
)

var Cities = []City{CityParis, CityCologne, CityBrussels, CityAmsterdam, CityHamburg, CityDusseldorf}

// CityCoordinates holds the city centre used when an offer has no explicit location.
var CityCoordinates = map[City]Coordinates{
	CityParis:      {Latitude: 48.85661, Longitude: 2.351499},
	CityCologne:    {Latitude: 50.938361, Longitude: 6.959974},
	CityBrussels:   {Latitude: 50.846557, Longitude: 4.351697},
	CityAmsterdam:  {Latitude: 52.370216, Longitude: 4.895168},
	CityHamburg:    {Latitude: 53.550341, Longitude: 10.000654},
	CityDusseldorf: {Latitude: 51.225402, Longitude: 6.776314},
}

func LookupCity(s string) (City, bool) {
	for _, c := range Cities {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func ParseCity(s string) (City, error) {
	c, ok := LookupCity(s)
	if !ok {
		return "", unknown("city", s)
	}
	return c, nil
}
