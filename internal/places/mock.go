package places

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexivanou/placefinder/internal/catalog"
	"github.com/alexivanou/placefinder/internal/model"
)

const mockSuggestionLimit = 5

// OfflineProvider answers from a fixed catalog. It backs the degraded mode used
// when no API key is configured.
type OfflineProvider struct {
	catalog *catalog.Catalog
}

// NewOfflineProvider creates a provider over c, or over the built-in mock places when c is nil
func NewOfflineProvider(c *catalog.Catalog) *OfflineProvider {
	if c == nil {
		c = catalog.Mock()
	}
	return &OfflineProvider{catalog: c}
}

func (p *OfflineProvider) Name() string { return "offline" }

func (p *OfflineProvider) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := p.catalog.Filter(input, mockSuggestionLimit)
	predictions := make([]Prediction, 0, len(matches))
	for _, place := range matches {
		predictions = append(predictions, Prediction{
			PlaceID:     place.ID,
			MainText:    place.Name,
			Description: describe(place),
		})
	}
	return predictions, nil
}

func (p *OfflineProvider) Details(ctx context.Context, placeID string) (*Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	place, ok := p.catalog.Get(placeID)
	if !ok {
		return nil, fmt.Errorf("details %s: %w", placeID, ErrNotFound)
	}
	c := fromPlace(place)
	return &c, nil
}

func (p *OfflineProvider) FindPlace(ctx context.Context, query string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrNotFound
	}
	matches := p.catalog.Filter(query, 1)
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return []Candidate{fromPlace(matches[0])}, nil
}

func describe(place model.Place) string {
	if place.FormattedAddress == "" {
		return place.Name
	}
	return place.Name + ", " + place.FormattedAddress
}

func fromPlace(place model.Place) Candidate {
	id := place.PlaceID
	if id == "" {
		id = place.ID
	}
	return Candidate{
		PlaceID:          id,
		Name:             place.Name,
		FormattedAddress: place.FormattedAddress,
		Lat:              place.Location.Lat,
		Lng:              place.Location.Lng,
		HasGeometry:      true,
		Types:            place.Types,
	}
}
