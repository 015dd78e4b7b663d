package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alexivanou/placefinder/internal/analytics"
	"github.com/alexivanou/placefinder/internal/config"
	"github.com/alexivanou/placefinder/internal/debounce"
	"github.com/alexivanou/placefinder/internal/model"
	"github.com/alexivanou/placefinder/internal/store"
	"github.com/alexivanou/placefinder/internal/suggest"
)

// ErrEmptyQuery is returned when a search is submitted without text
var ErrEmptyQuery = errors.New("query must not be empty")

// Service provides business logic for the API
type Service struct {
	store    *store.Store
	blender  *suggest.Blender
	resolver *Resolver
	mapCfg   config.MapConfig
	debounce time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// Options holds optional Service settings
type Options struct {
	Map           config.MapConfig
	DebounceDelay time.Duration
	Tracker       *analytics.Tracker
	Logger        *zap.Logger
	Now           func() time.Time
}

// NewService creates a new service instance
func NewService(s *store.Store, client PlaceResolver, blender *suggest.Blender, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = analytics.NewTracker(logger)
	}
	delay := opts.DebounceDelay
	if delay <= 0 {
		delay = debounce.DefaultDelay
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:    s,
		blender:  blender,
		resolver: NewResolver(s, client, tracker, logger),
		mapCfg:   opts.Map,
		debounce: delay,
		logger:   logger,
		now:      now,
	}
}

// State returns the current snapshot
func (s *Service) State(ctx context.Context) model.PlacesState {
	return s.store.Snapshot()
}

// Suggest blends options for a single request without debouncing
func (s *Service) Suggest(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error) {
	options := s.blender.Blend(ctx, req.Query, req.Focused, s.store.History())
	return &model.SuggestResponse{Options: options}, nil
}

// Search submits free text and waits for the search to finish
func (s *Service) Search(ctx context.Context, req model.SearchRequest) (*model.PlacesState, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	outcome := s.resolver.Submit(ctx, req.Query, nil)
	if msg := s.store.ErrorMessage(); msg != "" {
		s.logger.Debug("Search finished with error",
			zap.String("query", req.Query),
			zap.String("error", msg),
			zap.Bool("other_search_pending", s.store.IsLoading()),
		)
	} else {
		s.logger.Debug("Search finished", zap.String("query", req.Query), zap.String("outcome", string(outcome)))
	}
	return s.snapshot(), nil
}

// Select resolves an option and waits for the resolution to finish
func (s *Service) Select(ctx context.Context, req model.SelectRequest) (*model.PlacesState, error) {
	s.resolver.SelectOption(ctx, req.Option, nil)
	return s.snapshot(), nil
}

// ViewHistoryItem shows a history entry without reordering history
func (s *Service) ViewHistoryItem(ctx context.Context, id string) (*model.PlacesState, error) {
	if err := s.resolver.ViewHistoryItem(id); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// RemoveHistoryItem deletes a history entry; unknown ids are not an error
func (s *Service) RemoveHistoryItem(ctx context.Context, id string) (*model.PlacesState, error) {
	if !s.resolver.RemoveHistoryItem(id) {
		s.logger.Debug("History item already absent", zap.String("id", id))
	}
	return s.snapshot(), nil
}

// ClearHistory deletes all history
func (s *Service) ClearHistory(ctx context.Context) (*model.PlacesState, error) {
	s.resolver.ClearHistory()
	return s.snapshot(), nil
}

// ClearError dismisses the error message
func (s *Service) ClearError(ctx context.Context) (*model.PlacesState, error) {
	if s.store.ErrorMessage() != "" {
		s.store.ClearError()
	}
	return s.snapshot(), nil
}

// ClearCurrentPlace hides the shown place; history is untouched
func (s *Service) ClearCurrentPlace(ctx context.Context) (*model.PlacesState, error) {
	current := s.store.CurrentPlace()
	if current == nil {
		return s.snapshot(), nil
	}
	s.store.ClearCurrentPlace()
	s.logger.Debug("Current place cleared", zap.String("id", current.ID))
	return s.snapshot(), nil
}

// History returns history entries with relative times
func (s *Service) History(ctx context.Context) []model.HistoryEntryView {
	now := s.now()
	history := s.store.History()
	views := make([]model.HistoryEntryView, 0, len(history))
	for _, item := range history {
		views = append(views, model.HistoryEntryView{
			SearchHistoryItem: item,
			RelativeTime:      FormatTimestamp(item.Timestamp, now),
		})
	}
	return views
}

// MapView returns what the map should show for the current state
func (s *Service) MapView(ctx context.Context) model.MapView {
	return BuildMapView(s.store.Snapshot(), s.mapCfg)
}

// NewSession starts an interactive search box session. The caller must Close it.
func (s *Service) NewSession(ctx context.Context, emit func(Event)) *Session {
	return newSession(ctx, s.store, s.blender, s.resolver, s.debounce, s.logger, emit)
}

func (s *Service) snapshot() *model.PlacesState {
	state := s.store.Snapshot()
	return &state
}
