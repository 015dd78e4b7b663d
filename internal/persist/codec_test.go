package persist

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexivanou/placefinder/internal/model"
)

func testDecoder(limit int) Decoder {
	n := 0
	return Decoder{
		Limit: limit,
		Now:   func() time.Time { return time.UnixMilli(5000) },
		NewID: func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		},
	}
}

func item(id, placeID string, ts int64) model.SearchHistoryItem {
	return model.SearchHistoryItem{
		ID:        id,
		Query:     "q " + placeID,
		Place:     model.Place{ID: placeID, Name: "Name " + placeID, Location: model.Location{Lat: 1, Lng: 1}},
		Timestamp: ts,
	}
}

func TestEncodeDecode(t *testing.T) {
	history := []model.SearchHistoryItem{item("a", "p1", 2), item("b", "p2", 1)}
	payload, err := Encode(history)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"version":1`)

	got, err := testDecoder(20).Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, history, got)
}

func TestEncode_NilHistory(t *testing.T) {
	payload, err := Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"searchHistory":[]}`, string(payload))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		limit    int
		expected []string
		wantErr  bool
	}{
		{name: "empty payload", payload: "  ", limit: 20, expected: []string{}},
		{name: "bare array is version 0", payload: `[{"id":"a","query":"x","place":{"id":"p1"},"timestamp":1}]`, limit: 20, expected: []string{"p1"}},
		{name: "items without place id are dropped", payload: `{"version":1,"searchHistory":[{"id":"a","place":{"id":""}},{"id":"b","place":{"id":"p2"}}]}`, limit: 20, expected: []string{"p2"}},
		{name: "duplicates keep the newest", payload: `{"version":1,"searchHistory":[{"id":"a","place":{"id":"p1"}},{"id":"b","place":{"id":"p1"}},{"id":"c","place":{"id":"p2"}}]}`, limit: 20, expected: []string{"p1", "p2"}},
		{name: "limit is enforced", payload: `{"version":1,"searchHistory":[{"place":{"id":"p1"}},{"place":{"id":"p2"}},{"place":{"id":"p3"}}]}`, limit: 2, expected: []string{"p1", "p2"}},
		{name: "corrupt json", payload: `{"version":1,"searchHistory":[`, limit: 20, wantErr: true},
		{name: "newer version", payload: `{"version":9,"searchHistory":[]}`, limit: 20, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testDecoder(tt.limit).Decode([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := []string{}
			for _, it := range got {
				ids = append(ids, it.Place.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestDecode_FillsMissingFields(t *testing.T) {
	got, err := testDecoder(20).Decode([]byte(`{"version":1,"searchHistory":[{"place":{"id":"p1","name":"Louvre"}}]}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "gen-1", got[0].ID)
	assert.Equal(t, int64(5000), got[0].Timestamp)
	assert.Equal(t, "Louvre", got[0].Query)
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	_, err := testDecoder(20).Decode([]byte(`{"version":2}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
