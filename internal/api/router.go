package api

import (
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alexivanou/placefinder/internal/service"
	"github.com/alexivanou/placefinder/internal/stats"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, logger *zap.Logger) *mux.Router {
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/state", handler.GetState).Methods("GET")
	v1.HandleFunc("/suggest", handler.Suggest).Methods("GET")
	v1.HandleFunc("/search", handler.Search).Methods("POST")
	v1.HandleFunc("/select", handler.Select).Methods("POST")
	v1.HandleFunc("/history", handler.GetHistory).Methods("GET")
	v1.HandleFunc("/history", handler.ClearHistory).Methods("DELETE")
	v1.HandleFunc("/history/{id}", handler.RemoveHistoryItem).Methods("DELETE")
	v1.HandleFunc("/history/{id}/view", handler.ViewHistoryItem).Methods("POST")
	v1.HandleFunc("/error", handler.ClearError).Methods("DELETE")
	v1.HandleFunc("/place", handler.ClearCurrentPlace).Methods("DELETE")
	v1.HandleFunc("/map", handler.GetMapView).Methods("GET")
	v1.HandleFunc("/ws", handler.HandleWebSocket).Methods("GET")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
