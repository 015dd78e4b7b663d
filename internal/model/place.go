package model

// Location represents geographic coordinates
type Location struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// IsResolved reports whether the location carries real coordinates.
// (0,0) is the "unresolved" sentinel; a real place at exactly (0,0) is
// indistinguishable from an unresolved one.
func (l Location) IsResolved() bool {
	return l.Lat != 0 || l.Lng != 0
}

// Place represents a resolved (or predicted) place
type Place struct {
	ID               string   `json:"id" validate:"required"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formattedAddress"`
	Location         Location `json:"location"`
	Types            []string `json:"types,omitempty"`
	PlaceID          string   `json:"placeId,omitempty"`
}

// Clone returns a copy that shares no memory with p
func (p Place) Clone() Place {
	c := p
	if p.Types != nil {
		c.Types = append([]string(nil), p.Types...)
	}
	return c
}

// SearchQuery returns the text used for a text-search fallback
func (p Place) SearchQuery() string {
	if p.FormattedAddress != "" {
		return p.FormattedAddress
	}
	return p.Name
}

// SearchHistoryItem links a past query to the place it resolved to
type SearchHistoryItem struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	Place     Place  `json:"place"`
	Timestamp int64  `json:"timestamp"`
}

// PlacesState is the root aggregate owned by the state store
type PlacesState struct {
	CurrentPlace  *Place              `json:"currentPlace"`
	SearchHistory []SearchHistoryItem `json:"searchHistory"`
	IsLoading     bool                `json:"isLoading"`
	Error         *string             `json:"error"`
}

// Clone returns a deep copy of the state
func (s PlacesState) Clone() PlacesState {
	c := PlacesState{IsLoading: s.IsLoading}
	if s.CurrentPlace != nil {
		p := s.CurrentPlace.Clone()
		c.CurrentPlace = &p
	}
	if s.Error != nil {
		e := *s.Error
		c.Error = &e
	}
	c.SearchHistory = make([]SearchHistoryItem, len(s.SearchHistory))
	for i, item := range s.SearchHistory {
		item.Place = item.Place.Clone()
		c.SearchHistory[i] = item
	}
	return c
}

// AutocompleteOption is a transient suggestion shown to the user
type AutocompleteOption struct {
	Value      string `json:"value" validate:"required"`
	Place      Place  `json:"place"`
	IsHistory  bool   `json:"isHistory"`
	IsFallback bool   `json:"isFallback"`
}
