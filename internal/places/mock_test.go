package places

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineProvider(t *testing.T) {
	p := NewOfflineProvider(nil)
	ctx := context.Background()

	t.Run("autocomplete filters by name", func(t *testing.T) {
		predictions, err := p.Autocomplete(ctx, "times")
		require.NoError(t, err)
		require.Len(t, predictions, 1)
		assert.Equal(t, "mock-2", predictions[0].PlaceID)
		assert.Equal(t, "Times Square", predictions[0].MainText)
	})

	t.Run("details by id", func(t *testing.T) {
		c, err := p.Details(ctx, "mock-1")
		require.NoError(t, err)
		assert.Equal(t, "Statue of Liberty", c.Name)
		assert.True(t, c.HasGeometry)

		_, err = p.Details(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find place returns first match", func(t *testing.T) {
		candidates, err := p.FindPlace(ctx, "central park")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "mock-3", candidates[0].PlaceID)

		_, err = p.FindPlace(ctx, "no such place anywhere")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("client in degraded mode", func(t *testing.T) {
		client := NewClient(p)
		places := client.Autocomplete(ctx, "Empire")
		require.NotEmpty(t, places)
		assert.Equal(t, "mock-4", places[0].ID)

		place := client.Details(ctx, "mock-4")
		require.NotNil(t, place)
		assert.True(t, place.Location.IsResolved())
	})
}
