package suggest

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/placefinder/internal/catalog"
	"github.com/alexivanou/placefinder/internal/model"
)

const (
	// DefaultMaxSuggestions caps the history + fallback list
	DefaultMaxSuggestions = 5

	// DefaultMinQueryLength is the input length at which live predictions take over
	DefaultMinQueryLength = 2

	historyValuePrefix  = "history-"
	fallbackValuePrefix = "fallback-"
)

// Autocompleter returns live predictions. It must fail soft.
type Autocompleter interface {
	Autocomplete(ctx context.Context, input string) []model.Place
}

// Blender builds the option list for an input and focus state
type Blender struct {
	live      Autocompleter
	fallback  *catalog.Catalog
	max       int
	minLength int
}

// NewBlender creates a blender. A nil fallback uses the built-in catalog.
func NewBlender(live Autocompleter, fallback *catalog.Catalog, max, minLength int) *Blender {
	if fallback == nil {
		fallback = catalog.Fallback()
	}
	if max <= 0 {
		max = DefaultMaxSuggestions
	}
	if minLength <= 0 {
		minLength = DefaultMinQueryLength
	}
	return &Blender{live: live, fallback: fallback, max: max, minLength: minLength}
}

// IsShort reports whether input is below the live prediction threshold
func (b *Blender) IsShort(input string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(input)) < b.minLength
}

// Blend returns the options for input. Short input yields history then
// fallback entries when focused and nothing otherwise; longer input yields
// live predictions, or nothing when the provider fails.
func (b *Blender) Blend(ctx context.Context, input string, focused bool, history []model.SearchHistoryItem) []model.AutocompleteOption {
	if b.IsShort(input) {
		if !focused {
			return []model.AutocompleteOption{}
		}
		return b.Empty(history)
	}
	return b.Live(ctx, input)
}

// Empty returns history first (newest first) and fills the remaining slots
// with fallback places not already in history, in catalog order.
func (b *Blender) Empty(history []model.SearchHistoryItem) []model.AutocompleteOption {
	options := make([]model.AutocompleteOption, 0, b.max)

	for _, item := range history {
		if len(options) == b.max {
			break
		}
		options = append(options, model.AutocompleteOption{
			Value:     historyValuePrefix + item.ID,
			Place:     item.Place.Clone(),
			IsHistory: true,
		})
	}
	if len(options) == b.max {
		return options
	}

	inHistory := make(map[string]struct{}, len(history))
	for _, item := range history {
		inHistory[item.Place.ID] = struct{}{}
	}
	for _, place := range b.fallback.Places() {
		if len(options) == b.max {
			break
		}
		if _, ok := inHistory[place.ID]; ok {
			continue
		}
		options = append(options, model.AutocompleteOption{
			Value:      fallbackValuePrefix + place.ID,
			Place:      place,
			IsFallback: true,
		})
	}
	return options
}

// Live maps provider predictions 1:1 to options
func (b *Blender) Live(ctx context.Context, input string) []model.AutocompleteOption {
	if b.live == nil {
		return []model.AutocompleteOption{}
	}
	places := b.live.Autocomplete(ctx, input)
	options := make([]model.AutocompleteOption, 0, len(places))
	for _, place := range places {
		options = append(options, model.AutocompleteOption{
			Value: place.ID,
			Place: place,
		})
	}
	return options
}
