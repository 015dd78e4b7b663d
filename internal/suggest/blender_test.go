package suggest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alexivanou/placefinder/internal/catalog"
	"github.com/alexivanou/placefinder/internal/model"
)

type MockAutocompleter struct {
	mock.Mock
}

func (m *MockAutocompleter) Autocomplete(ctx context.Context, input string) []model.Place {
	args := m.Called(ctx, input)
	return args.Get(0).([]model.Place)
}

func historyOf(placeIDs ...string) []model.SearchHistoryItem {
	items := make([]model.SearchHistoryItem, 0, len(placeIDs))
	for i, id := range placeIDs {
		items = append(items, model.SearchHistoryItem{
			ID:    fmt.Sprintf("h%d", i),
			Query: id,
			Place: model.Place{ID: id, Name: "Place " + id, Location: model.Location{Lat: 1, Lng: 1}},
		})
	}
	return items
}

func values(options []model.AutocompleteOption) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		out = append(out, o.Value)
	}
	return out
}

func TestBlend_EmptyHistoryFocused(t *testing.T) {
	b := NewBlender(nil, nil, 0, 0)
	options := b.Blend(context.Background(), "", true, nil)

	require.Len(t, options, 5)
	fallback := catalog.Fallback().Places()
	for i, o := range options {
		assert.True(t, o.IsFallback)
		assert.False(t, o.IsHistory)
		assert.Equal(t, fallback[i].ID, o.Place.ID)
		assert.Equal(t, "fallback-"+fallback[i].ID, o.Value)
	}
}

func TestBlend_ShortInput(t *testing.T) {
	fallback := catalog.Fallback().Places()

	tests := []struct {
		name     string
		input    string
		focused  bool
		history  []model.SearchHistoryItem
		expected []string
	}{
		{
			name:     "not focused yields nothing",
			input:    "",
			focused:  false,
			history:  historyOf("p1"),
			expected: []string{},
		},
		{
			name:     "history first then fallback",
			input:    "a",
			focused:  true,
			history:  historyOf("p1", "p2"),
			expected: []string{"history-h0", "history-h1", "fallback-" + fallback[0].ID, "fallback-" + fallback[1].ID, "fallback-" + fallback[2].ID},
		},
		{
			name:     "fallback places already in history are skipped",
			input:    " ",
			focused:  true,
			history:  historyOf(fallback[0].ID),
			expected: []string{"history-h0", "fallback-" + fallback[1].ID, "fallback-" + fallback[2].ID, "fallback-" + fallback[3].ID, "fallback-" + fallback[4].ID},
		},
		{
			name:     "history capped at five",
			input:    "",
			focused:  true,
			history:  historyOf("p1", "p2", "p3", "p4", "p5", "p6"),
			expected: []string{"history-h0", "history-h1", "history-h2", "history-h3", "history-h4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := new(MockAutocompleter)
			b := NewBlender(live, nil, 5, 2)
			got := b.Blend(context.Background(), tt.input, tt.focused, tt.history)
			assert.Equal(t, tt.expected, values(got))
			live.AssertNotCalled(t, "Autocomplete", mock.Anything, mock.Anything)
		})
	}
}

func TestBlend_Deterministic(t *testing.T) {
	b := NewBlender(nil, nil, 5, 2)
	history := historyOf("p1", "p2")
	first := b.Blend(context.Background(), "", true, history)
	second := b.Blend(context.Background(), "", true, history)
	assert.Equal(t, first, second)
}

func TestBlend_LiveInput(t *testing.T) {
	live := new(MockAutocompleter)
	live.On("Autocomplete", mock.Anything, "Eiff").Return([]model.Place{
		{ID: "p1", Name: "Eiffel Tower", PlaceID: "p1"},
		{ID: "p2", Name: "Eiffel Street", PlaceID: "p2"},
	})

	b := NewBlender(live, nil, 5, 2)
	options := b.Blend(context.Background(), "Eiff", false, historyOf("x"))

	require.Len(t, options, 2)
	assert.Equal(t, []string{"p1", "p2"}, values(options))
	for _, o := range options {
		assert.False(t, o.IsHistory)
		assert.False(t, o.IsFallback)
	}
	live.AssertExpectations(t)
}

func TestBlend_LiveFailureIsSilent(t *testing.T) {
	live := new(MockAutocompleter)
	live.On("Autocomplete", mock.Anything, "zz").Return([]model.Place{})

	b := NewBlender(live, nil, 5, 2)
	assert.Empty(t, b.Blend(context.Background(), "zz", true, nil))
}

func TestBlend_CustomCatalog(t *testing.T) {
	c := catalog.New([]model.Place{{ID: "c1", Name: "Only"}})
	b := NewBlender(nil, c, 5, 2)
	options := b.Empty(nil)
	assert.Equal(t, []string{"fallback-c1"}, values(options))
}
