package places

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/alexivanou/placefinder/internal/model"
	"github.com/alexivanou/placefinder/internal/retry"
)

const (
	// DefaultMinInput is the shortest trimmed input that triggers an autocomplete call
	DefaultMinInput = 2

	// detailsTimeout bounds a shared details lookup once it is detached from its callers
	detailsTimeout = 10 * time.Second
)

// fallbackIDSpace namespaces ids generated for text-search results without a provider id
var fallbackIDSpace = uuid.MustParse("6f1c2a52-8d0e-4b6c-9f3a-2d7c1e5b9a40")

// Client normalises provider results into model.Place values.
// It never mutates application state.
type Client struct {
	provider    Provider
	logger      *zap.Logger
	validate    *validator.Validate
	minInput    int
	searchRetry retry.Policy
	group       singleflight.Group
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithLogger sets a logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMinInput sets the minimum autocomplete input length.
func WithMinInput(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.minInput = n
		}
	}
}

// WithSearchRetry sets the backoff policy for text search. The
// Retryable predicate is always replaced by IsRetryable.
func WithSearchRetry(p retry.Policy) ClientOption {
	return func(c *Client) {
		c.searchRetry = p
	}
}

// NewClient creates a Client over provider
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider: provider,
		logger:   zap.NewNop(),
		validate: validator.New(),
		minInput: DefaultMinInput,
		searchRetry: retry.Policy{
			MaxRetries: 3,
			BaseDelay:  time.Second,
			Multiplier: 2,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.searchRetry.Retryable = IsRetryable
	return c
}

// ProviderName reports which provider backs the client
func (c *Client) ProviderName() string {
	if c.provider == nil {
		return "none"
	}
	return c.provider.Name()
}

// IsRetryable reports whether a text-search failure deserves another attempt
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrProviderUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// Autocomplete returns predictions for input. Failures are logged and yield an
// empty list. Returned places carry the (0,0) location.
func (c *Client) Autocomplete(ctx context.Context, input string) []model.Place {
	trimmed := strings.TrimSpace(input)
	if utf8.RuneCountInString(trimmed) < c.minInput || c.provider == nil {
		return []model.Place{}
	}

	predictions, err := c.provider.Autocomplete(ctx, trimmed)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("Autocomplete failed", zap.Error(&AutocompleteError{Input: trimmed, Err: err}))
		}
		return []model.Place{}
	}

	places := make([]model.Place, 0, len(predictions))
	for _, p := range predictions {
		if err := c.validate.Struct(p); err != nil {
			c.logger.Debug("Dropping invalid prediction", zap.String("place_id", p.PlaceID), zap.Error(err))
			continue
		}
		name := p.MainText
		if name == "" {
			name = p.Description
		}
		places = append(places, model.Place{
			ID:               p.PlaceID,
			Name:             name,
			FormattedAddress: p.Description,
			PlaceID:          p.PlaceID,
		})
	}
	return places
}

// Details resolves placeID to a place with coordinates. Any failure, including a
// result without geometry, is logged and reported as nil. Concurrent lookups of
// the same id share one provider call.
func (c *Client) Details(ctx context.Context, placeID string) *model.Place {
	if placeID == "" || c.provider == nil {
		return nil
	}

	// The shared call outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := c.group.DoChan(placeID, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detailsTimeout)
		defer cancel()

		candidate, err := c.provider.Details(lookupCtx, placeID)
		if err != nil {
			return nil, err
		}
		if candidate == nil || !candidate.HasGeometry {
			return nil, fmt.Errorf("%w: missing geometry", ErrInvalidPlace)
		}
		place, err := c.toPlace(*candidate, "")
		if err != nil {
			return nil, err
		}
		return place, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil
	}
	if res.Err != nil {
		c.logger.Warn("Place details lookup failed", zap.Error(&DetailsLookupError{PlaceID: placeID, Err: res.Err}))
		return nil
	}

	place := res.Val.(model.Place).Clone()
	return &place
}

// SearchByQuery resolves free text to the best matching place, retrying with
// backoff. ErrProviderUnavailable is returned without retrying.
func (c *Client) SearchByQuery(ctx context.Context, query string) (model.Place, error) {
	query = strings.TrimSpace(query)
	if c.provider == nil {
		return model.Place{}, ErrProviderUnavailable
	}
	if query == "" {
		return model.Place{}, ErrNotFound
	}

	return retry.Do(ctx, c.searchRetry, c.logger, "searchPlaceByQuery", func(ctx context.Context) (model.Place, error) {
		candidates, err := c.provider.FindPlace(ctx, query)
		if err != nil {
			return model.Place{}, err
		}
		if len(candidates) == 0 {
			return model.Place{}, ErrNotFound
		}
		return c.toPlace(candidates[0], query)
	})
}

// toPlace validates a candidate. A non-empty query fills a missing name
// (first comma-separated segment), address and id.
func (c *Client) toPlace(candidate Candidate, query string) (model.Place, error) {
	if query != "" {
		if candidate.Name == "" {
			candidate.Name = strings.TrimSpace(strings.Split(query, ",")[0])
		}
		if candidate.FormattedAddress == "" {
			candidate.FormattedAddress = query
		}
	}
	if err := c.validate.Struct(candidate); err != nil {
		return model.Place{}, fmt.Errorf("%w: %v", ErrInvalidPlace, err)
	}

	id := candidate.PlaceID
	if id == "" {
		id = "generated-" + uuid.NewSHA1(fallbackIDSpace, []byte(strings.ToLower(query))).String()
	}

	place := model.Place{
		ID:               id,
		Name:             candidate.Name,
		FormattedAddress: candidate.FormattedAddress,
		Location:         model.Location{Lat: candidate.Lat, Lng: candidate.Lng},
		PlaceID:          candidate.PlaceID,
	}
	if len(candidate.Types) > 0 {
		place.Types = append([]string(nil), candidate.Types...)
	}
	return place, nil
}
