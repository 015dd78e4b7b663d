package analytics

import "go.uber.org/zap"

// Source identifies where a place selection came from
type Source string

const (
	SourceAutocomplete         Source = "autocomplete"
	SourceHistory              Source = "history"
	SourceHistoryAutocomplete  Source = "history-autocomplete"
	SourceFallbackAutocomplete Source = "fallback-autocomplete"
	SourceEnter                Source = "enter"
)

// HistoryAction is a user action on the history list
type HistoryAction string

const (
	HistoryClearAll   HistoryAction = "clear_all"
	HistoryRemoveItem HistoryAction = "remove_item"
	HistoryViewItem   HistoryAction = "view_item"
)

// Tracker records user-facing events as structured log entries
type Tracker struct {
	logger *zap.Logger
}

// NewTracker creates a tracker writing to logger
func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{logger: logger.Named("analytics")}
}

// Search records the outcome of a search
func (t *Tracker) Search(query string, found bool) {
	action := "Search Success"
	if !found {
		action = "Search Failed"
	}
	t.event("Search", action, zap.String("label", query))
}

// PlaceSelection records which list a place was picked from
func (t *Tracker) PlaceSelection(placeName string, source Source) {
	t.event("Place Selection", "Selected from "+string(source),
		zap.String("label", placeName),
		zap.String("source", string(source)),
	)
}

// History records an action on the history list
func (t *Tracker) History(action HistoryAction) {
	t.event("History", string(action))
}

// Error records a user visible failure
func (t *Tracker) Error(context, message string) {
	t.event("Error", context, zap.String("label", message))
}

func (t *Tracker) event(category, action string, fields ...zap.Field) {
	t.logger.Info("Analytics event",
		append([]zap.Field{zap.String("category", category), zap.String("action", action)}, fields...)...,
	)
}
