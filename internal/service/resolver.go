package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/alexivanou/placefinder/internal/analytics"
	"github.com/alexivanou/placefinder/internal/model"
	"github.com/alexivanou/placefinder/internal/places"
	"github.com/alexivanou/placefinder/internal/store"
)

// ErrHistoryItemNotFound is returned when a history id is unknown
var ErrHistoryItemNotFound = errors.New("history item not found")

// PlaceResolver is the subset of the places client used to resolve selections
type PlaceResolver interface {
	Details(ctx context.Context, placeID string) *model.Place
	SearchByQuery(ctx context.Context, query string) (model.Place, error)
}

// Outcome describes how a selection or submission ended
type Outcome string

const (
	OutcomeSelected Outcome = "selected"
	OutcomeSearched Outcome = "searched"
	OutcomeFailed   Outcome = "failed"
	OutcomeStale    Outcome = "stale"
	OutcomeIgnored  Outcome = "ignored"
)

// Guard reports whether an operation is still the latest one of its caller
type Guard func() bool

func alwaysCurrent() bool { return true }

// Resolver turns a chosen option or a submitted query into store transitions
type Resolver struct {
	store   *store.Store
	client  PlaceResolver
	tracker *analytics.Tracker
	logger  *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(s *store.Store, client PlaceResolver, tracker *analytics.Tracker, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracker == nil {
		tracker = analytics.NewTracker(logger)
	}
	return &Resolver{store: s, client: client, tracker: tracker, logger: logger}
}

// SelectOption resolves an autocomplete option. History and fallback options,
// and live options with a known location, never touch the network.
func (r *Resolver) SelectOption(ctx context.Context, option model.AutocompleteOption, current Guard) Outcome {
	if current == nil {
		current = alwaysCurrent
	}
	place := option.Place

	switch {
	case option.IsHistory:
		r.tracker.PlaceSelection(place.Name, analytics.SourceHistoryAutocomplete)
		r.store.SetCurrentPlaceWithHistory(place, place.Name)
		return OutcomeSelected

	case option.IsFallback:
		r.tracker.PlaceSelection(place.Name, analytics.SourceFallbackAutocomplete)
		r.store.SetCurrentPlaceWithHistory(place, place.Name)
		r.tracker.Search(place.Name, true)
		return OutcomeSelected
	}

	r.tracker.PlaceSelection(place.Name, analytics.SourceAutocomplete)

	if place.Location.IsResolved() {
		r.store.SetCurrentPlaceWithHistory(place, place.Name)
		r.tracker.Search(place.Name, true)
		return OutcomeSelected
	}

	if place.PlaceID != "" {
		details := r.client.Details(ctx, place.PlaceID)
		if !current() {
			r.logger.Debug("Dropping stale place details", zap.String("place_id", place.PlaceID))
			return OutcomeStale
		}
		if details != nil {
			r.store.SetCurrentPlaceWithHistory(*details, place.Name)
			r.tracker.Search(place.Name, true)
			return OutcomeSelected
		}
		r.logger.Info("Falling back to text search", zap.String("place_id", place.PlaceID))
	}

	return r.search(ctx, place.SearchQuery(), current)
}

// Submit runs a text search for free text typed by the user
func (r *Resolver) Submit(ctx context.Context, text string, current Guard) Outcome {
	if strings.TrimSpace(text) == "" {
		return OutcomeIgnored
	}
	if current == nil {
		current = alwaysCurrent
	}
	r.tracker.PlaceSelection(text, analytics.SourceEnter)
	return r.search(ctx, text, current)
}

func (r *Resolver) search(ctx context.Context, query string, current Guard) Outcome {
	r.store.SearchBegin(query)

	place, err := r.client.SearchByQuery(ctx, query)
	if !current() || errors.Is(err, context.Canceled) {
		r.logger.Debug("Dropping stale search result", zap.String("query", query))
		r.complete(r.store.SearchAbandon())
		return OutcomeStale
	}

	if err != nil {
		message := places.Message(err, places.FetchFailedMessage)
		r.logger.Warn("Search failed", zap.String("query", query), zap.Error(err))
		r.complete(r.store.SearchFail(message))
		r.tracker.Search(query, false)
		r.tracker.Error("searchPlace", message)
		return OutcomeFailed
	}

	r.complete(r.store.SearchSucceed(query, place))
	r.tracker.Search(query, true)
	return OutcomeSearched
}

func (r *Resolver) complete(err error) {
	if err != nil {
		r.logger.Error("Search completion rejected by store", zap.Error(err))
	}
}

// ViewHistoryItem makes a history entry current without touching history
func (r *Resolver) ViewHistoryItem(id string) error {
	item, ok := r.store.HistoryItem(id)
	if !ok {
		return ErrHistoryItemNotFound
	}
	r.tracker.PlaceSelection(item.Place.Name, analytics.SourceHistory)
	r.tracker.History(analytics.HistoryViewItem)
	r.store.SetCurrentPlace(item.Place)
	return nil
}

// RemoveHistoryItem deletes a history entry. Unknown ids are a no-op.
func (r *Resolver) RemoveHistoryItem(id string) bool {
	r.tracker.History(analytics.HistoryRemoveItem)
	return r.store.RemoveFromHistory(id)
}

// ClearHistory deletes all history entries
func (r *Resolver) ClearHistory() {
	r.tracker.History(analytics.HistoryClearAll)
	r.store.ClearHistory()
}
