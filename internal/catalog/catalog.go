package catalog

import (
	"strings"

	"github.com/alexivanou/placefinder/internal/model"
)

// Catalog is an ordered, read-only list of places
type Catalog struct {
	places []model.Place
	byID   map[string]int
}

// New builds a catalog preserving declaration order. Later duplicates of an id are dropped.
func New(places []model.Place) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(places))}
	for _, p := range places {
		if _, exists := c.byID[p.ID]; exists {
			continue
		}
		c.byID[p.ID] = len(c.places)
		c.places = append(c.places, p.Clone())
	}
	return c
}

// Places returns copies of all entries in declaration order
func (c *Catalog) Places() []model.Place {
	out := make([]model.Place, len(c.places))
	for i, p := range c.places {
		out[i] = p.Clone()
	}
	return out
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.places)
}

// Get returns the entry with the given id
func (c *Catalog) Get(id string) (model.Place, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return model.Place{}, false
	}
	return c.places[idx].Clone(), true
}

// Filter returns up to limit entries whose name or address contains query
// (case-insensitive). limit <= 0 means no limit.
func (c *Catalog) Filter(query string, limit int) []model.Place {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return nil
	}
	var out []model.Place
	for _, p := range c.places {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.FormattedAddress), term) {
			out = append(out, p.Clone())
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// Fallback returns the built-in fallback catalog offered when the search box is empty
func Fallback() *Catalog {
	return New(fallbackPlaces)
}

// Mock returns the catalog served by the offline provider
func Mock() *Catalog {
	return New(mockPlaces)
}

// DefaultPlace is the landmark shown before the first search
func DefaultPlace() model.Place {
	return model.Place{
		ID:               "default-maybank-tower",
		Name:             "Maybank Tower",
		FormattedAddress: "100, Jalan Tun Perak, Kuala Lumpur City Centre, 50050 Kuala Lumpur, Malaysia",
		Location:         model.Location{Lat: 3.1488, Lng: 101.7140},
		Types:            []string{"point_of_interest", "establishment"},
	}
}

var fallbackPlaces = []model.Place{
	{
		ID:               "fallback-1",
		Name:             "Petronas Twin Towers",
		FormattedAddress: "Kuala Lumpur City Centre, Kuala Lumpur, Malaysia",
		Location:         model.Location{Lat: 3.1578, Lng: 101.7119},
		Types:            []string{"tourist_attraction", "point_of_interest"},
		PlaceID:          "fallback-petronas",
	},
	{
		ID:               "fallback-2",
		Name:             "Batu Caves",
		FormattedAddress: "Gombak, Selangor, Malaysia",
		Location:         model.Location{Lat: 3.2379, Lng: 101.6841},
		Types:            []string{"tourist_attraction", "hindu_temple", "place_of_worship"},
		PlaceID:          "fallback-batu-caves",
	},
	{
		ID:               "fallback-3",
		Name:             "Merdeka Square",
		FormattedAddress: "Jalan Raja, Kuala Lumpur, Malaysia",
		Location:         model.Location{Lat: 3.1478, Lng: 101.6953},
		Types:            []string{"tourist_attraction", "point_of_interest"},
		PlaceID:          "fallback-merdeka",
	},
	{
		ID:               "fallback-4",
		Name:             "Kuala Lumpur Tower",
		FormattedAddress: "Jalan Puncak, Kuala Lumpur, Malaysia",
		Location:         model.Location{Lat: 3.1529, Lng: 101.7033},
		Types:            []string{"tourist_attraction", "point_of_interest"},
		PlaceID:          "fallback-kl-tower",
	},
	{
		ID:               "fallback-5",
		Name:             "Sunway Lagoon",
		FormattedAddress: "Bandar Sunway, Petaling Jaya, Selangor, Malaysia",
		Location:         model.Location{Lat: 3.0688, Lng: 101.6054},
		Types:            []string{"amusement_park", "tourist_attraction"},
		PlaceID:          "fallback-sunway",
	},
	{
		ID:               "fallback-6",
		Name:             "Central Park",
		FormattedAddress: "New York, NY, USA",
		Location:         model.Location{Lat: 40.7829, Lng: -73.9654},
		Types:            []string{"park", "tourist_attraction"},
		PlaceID:          "fallback-central-park",
	},
	{
		ID:               "fallback-7",
		Name:             "Eiffel Tower",
		FormattedAddress: "Champ de Mars, Paris, France",
		Location:         model.Location{Lat: 48.8584, Lng: 2.2945},
		Types:            []string{"tourist_attraction", "point_of_interest"},
		PlaceID:          "fallback-eiffel",
	},
	{
		ID:               "fallback-8",
		Name:             "Tokyo Tower",
		FormattedAddress: "Minato City, Tokyo, Japan",
		Location:         model.Location{Lat: 35.6586, Lng: 139.7454},
		Types:            []string{"tourist_attraction", "point_of_interest"},
		PlaceID:          "fallback-tokyo-tower",
	},
	{
		ID:               "fallback-9",
		Name:             "Sydney Opera House",
		FormattedAddress: "Sydney NSW, Australia",
		Location:         model.Location{Lat: -33.8568, Lng: 151.2153},
		Types:            []string{"tourist_attraction", "performing_arts_theater"},
		PlaceID:          "fallback-sydney-opera",
	},
	{
		ID:               "fallback-10",
		Name:             "Big Ben",
		FormattedAddress: "Westminster, London, United Kingdom",
		Location:         model.Location{Lat: 51.5007, Lng: -0.1246},
		Types:            []string{"tourist_attraction", "point_of_interest"},
		PlaceID:          "fallback-big-ben",
	},
}

var mockPlaces = []model.Place{
	{
		ID:               "mock-1",
		Name:             "Statue of Liberty",
		FormattedAddress: "Liberty Island, New York, NY 10004, USA",
		Location:         model.Location{Lat: 40.6892, Lng: -74.0445},
		Types:            []string{"tourist_attraction", "point_of_interest"},
	},
	{
		ID:               "mock-2",
		Name:             "Times Square",
		FormattedAddress: "Manhattan, NY 10036, USA",
		Location:         model.Location{Lat: 40.758, Lng: -73.9855},
		Types:            []string{"tourist_attraction", "point_of_interest"},
	},
	{
		ID:               "mock-3",
		Name:             "Central Park",
		FormattedAddress: "New York, NY, USA",
		Location:         model.Location{Lat: 40.7829, Lng: -73.9654},
		Types:            []string{"park", "tourist_attraction", "point_of_interest"},
	},
	{
		ID:               "mock-4",
		Name:             "Empire State Building",
		FormattedAddress: "20 W 34th St., New York, NY 10001, USA",
		Location:         model.Location{Lat: 40.7484, Lng: -73.9857},
		Types:            []string{"tourist_attraction", "point_of_interest"},
	},
	{
		ID:               "mock-5",
		Name:             "Brooklyn Bridge",
		FormattedAddress: "New York, NY 10038, USA",
		Location:         model.Location{Lat: 40.7061, Lng: -73.9969},
		Types:            []string{"tourist_attraction", "point_of_interest"},
	},
	{
		ID:               "mock-6",
		Name:             "Golden Gate Bridge",
		FormattedAddress: "Golden Gate Bridge, San Francisco, CA, USA",
		Location:         model.Location{Lat: 37.8199, Lng: -122.4783},
		Types:            []string{"tourist_attraction", "point_of_interest"},
	},
	{
		ID:               "mock-7",
		Name:             "Eiffel Tower",
		FormattedAddress: "Champ de Mars, 5 Avenue Anatole France, 75007 Paris, France",
		Location:         model.Location{Lat: 48.8584, Lng: 2.2945},
		Types:            []string{"tourist_attraction", "point_of_interest"},
	},
	{
		ID:               "mock-8",
		Name:             "Big Ben",
		FormattedAddress: "Westminster, London SW1A 0AA, UK",
		Location:         model.Location{Lat: 51.5007, Lng: -0.1246},
		Types:            []string{"tourist_attraction", "point_of_interest"},
	},
	{
		ID:               "mock-9",
		Name:             "Sydney Opera House",
		FormattedAddress: "Bennelong Point, Sydney NSW 2000, Australia",
		Location:         model.Location{Lat: -33.8568, Lng: 151.2153},
		Types:            []string{"tourist_attraction", "point_of_interest"},
	},
	{
		ID:               "mock-10",
		Name:             "Tokyo Tower",
		FormattedAddress: "4-2-8 Shiba-koen, Minato City, Tokyo 105-0011, Japan",
		Location:         model.Location{Lat: 35.6586, Lng: 139.7454},
		Types:            []string{"tourist_attraction", "point_of_interest"},
	},
}
