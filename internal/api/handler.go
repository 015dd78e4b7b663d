package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alexivanou/placefinder/internal/model"
	"github.com/alexivanou/placefinder/internal/service"
)

// maxBodyBytes caps request bodies for JSON endpoints
const maxBodyBytes = 1 << 16

// Handler handles HTTP requests
type Handler struct {
	service  service.ServiceInterface
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:  service,
		logger:   logger,
		validate: validator.New(),
	}
}

// GetState handles GET /api/v1/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	state := h.service.State(r.Context())
	h.writeJSON(w, http.StatusOK, state)
}

// Suggest handles GET /api/v1/suggest
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	req := model.SuggestRequest{
		Query:   r.URL.Query().Get("q"),
		Focused: true,
	}
	if focused := r.URL.Query().Get("focused"); focused != "" {
		v, err := strconv.ParseBool(focused)
		if err != nil {
			http.Error(w, "invalid focused parameter", http.StatusBadRequest)
			return
		}
		req.Focused = v
	}

	response, err := h.service.Suggest(r.Context(), req)
	if err != nil {
		h.logger.Error("Error building suggestions", zap.String("query", req.Query), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response)
}

// Search handles POST /api/v1/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	state, err := h.service.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Error searching place", zap.String("query", req.Query), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

// Select handles POST /api/v1/select
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req model.SelectRequest
	if !h.decode(w, r, &req) {
		return
	}

	state, err := h.service.Select(r.Context(), req)
	if err != nil {
		h.logger.Error("Error selecting option", zap.String("value", req.Option.Value), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

// GetHistory handles GET /api/v1/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.History(r.Context()))
}

// ViewHistoryItem handles POST /api/v1/history/{id}/view
func (h *Handler) ViewHistoryItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	state, err := h.service.ViewHistoryItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrHistoryItemNotFound) {
			http.Error(w, "history item not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Error viewing history item", zap.String("id", id), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

// RemoveHistoryItem handles DELETE /api/v1/history/{id}
func (h *Handler) RemoveHistoryItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	state, err := h.service.RemoveHistoryItem(r.Context(), id)
	if err != nil {
		h.logger.Error("Error removing history item", zap.String("id", id), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

// ClearHistory handles DELETE /api/v1/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ClearHistory(r.Context())
	if err != nil {
		h.logger.Error("Error clearing history", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

// ClearError handles DELETE /api/v1/error
func (h *Handler) ClearError(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ClearError(r.Context())
	if err != nil {
		h.logger.Error("Error clearing error message", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

// ClearCurrentPlace handles DELETE /api/v1/place
func (h *Handler) ClearCurrentPlace(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ClearCurrentPlace(r.Context())
	if err != nil {
		h.logger.Error("Error clearing current place", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

// GetMapView handles GET /api/v1/map
func (h *Handler) GetMapView(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.MapView(r.Context()))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// decode reads and validates a JSON body. It writes a 400 and returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			http.Error(w, "invalid field: "+verrs[0].Namespace(), http.StatusBadRequest)
			return false
		}
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}
