package service

import (
	"fmt"
	"time"

	"github.com/alexivanou/placefinder/internal/config"
	"github.com/alexivanou/placefinder/internal/model"
)

// FormatTimestamp renders an epoch-millis timestamp relative to now
func FormatTimestamp(timestamp int64, now time.Time) string {
	t := time.UnixMilli(timestamp)
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	}
	return t.In(now.Location()).Format("1/2/2006")
}

// BuildMapView centers on the current place, or on the default center when there is none
func BuildMapView(state model.PlacesState, cfg config.MapConfig) model.MapView {
	if state.CurrentPlace == nil {
		return model.MapView{
			Center: model.Location{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng},
			Zoom:   cfg.DefaultZoomEmpty,
		}
	}
	marker := state.CurrentPlace.Clone()
	return model.MapView{
		Center: marker.Location,
		Zoom:   cfg.DefaultZoom,
		Marker: &marker,
	}
}
