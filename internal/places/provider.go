package places

import "context"

// Prediction is a raw autocomplete entry as reported by a provider
type Prediction struct {
	PlaceID     string `validate:"required"`
	MainText    string
	Description string `validate:"required"`
}

// Candidate is a raw place as reported by the details and text-search calls
type Candidate struct {
	PlaceID          string
	Name             string `validate:"required_without=FormattedAddress"`
	FormattedAddress string
	Lat              float64 `validate:"gte=-90,lte=90"`
	Lng              float64 `validate:"gte=-180,lte=180"`
	HasGeometry      bool
	Types            []string
}

// Provider is the upstream autocomplete/details/text-search contract.
// Implementations report ErrNotFound and ErrProviderUnavailable (possibly
// wrapped) for zero results and an unusable upstream respectively.
type Provider interface {
	Name() string
	Autocomplete(ctx context.Context, input string) ([]Prediction, error)
	Details(ctx context.Context, placeID string) (*Candidate, error)
	FindPlace(ctx context.Context, query string) ([]Candidate, error)
}
