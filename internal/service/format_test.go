package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexivanou/placefinder/internal/config"
	"github.com/alexivanou/placefinder/internal/model"
)

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ago      time.Duration
		expected string
	}{
		{name: "just now", ago: 10 * time.Second, expected: "Just now"},
		{name: "minutes", ago: 5 * time.Minute, expected: "5m ago"},
		{name: "hours", ago: 2 * time.Hour, expected: "2h ago"},
		{name: "days", ago: 3 * 24 * time.Hour, expected: "3d ago"},
		{name: "older than a week", ago: 10 * 24 * time.Hour, expected: "3/10/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimestamp(now.Add(-tt.ago).UnixMilli(), now))
		})
	}
}

func TestBuildMapView(t *testing.T) {
	cfg := config.MapConfig{DefaultLat: 3.1488, DefaultLng: 101.7140, DefaultZoom: 14, DefaultZoomEmpty: 11}

	t.Run("no place", func(t *testing.T) {
		view := BuildMapView(model.PlacesState{}, cfg)
		assert.Equal(t, model.Location{Lat: 3.1488, Lng: 101.7140}, view.Center)
		assert.Equal(t, 11, view.Zoom)
		assert.Nil(t, view.Marker)
	})

	t.Run("with place", func(t *testing.T) {
		p := model.Place{ID: "p1", Location: model.Location{Lat: 48.85, Lng: 2.35}}
		view := BuildMapView(model.PlacesState{CurrentPlace: &p}, cfg)
		assert.Equal(t, p.Location, view.Center)
		assert.Equal(t, 14, view.Zoom)
		assert.Equal(t, "p1", view.Marker.ID)
	})
}
