package service

import (
	"context"

	"github.com/alexivanou/placefinder/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	State(ctx context.Context) model.PlacesState
	Suggest(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error)
	Search(ctx context.Context, req model.SearchRequest) (*model.PlacesState, error)
	Select(ctx context.Context, req model.SelectRequest) (*model.PlacesState, error)
	ViewHistoryItem(ctx context.Context, id string) (*model.PlacesState, error)
	RemoveHistoryItem(ctx context.Context, id string) (*model.PlacesState, error)
	ClearHistory(ctx context.Context) (*model.PlacesState, error)
	ClearError(ctx context.Context) (*model.PlacesState, error)
	ClearCurrentPlace(ctx context.Context) (*model.PlacesState, error)
	History(ctx context.Context) []model.HistoryEntryView
	MapView(ctx context.Context) model.MapView
	NewSession(ctx context.Context, emit func(Event)) *Session
}
