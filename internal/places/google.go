package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the Google Maps web services.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10
)

// Provider status values
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusRequestDenied  = "REQUEST_DENIED"
	statusInvalidRequest = "INVALID_REQUEST"
)

var defaultFields = []string{"place_id", "name", "formatted_address", "geometry", "types"}

// GoogleProvider talks to the Places web service
type GoogleProvider struct {
	baseURL    string
	apiKey     string
	language   string
	fields     []string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// GoogleOption configures the GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) GoogleOption {
	return func(g *GoogleProvider) {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) GoogleOption {
	return func(g *GoogleProvider) {
		g.httpClient = httpClient
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) GoogleOption {
	return func(g *GoogleProvider) {
		if requestsPerSecond > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithFields sets the field subset requested from details and text search.
func WithFields(fields []string) GoogleOption {
	return func(g *GoogleProvider) {
		if len(fields) > 0 {
			g.fields = fields
		}
	}
}

// WithLanguage sets the result language.
func WithLanguage(language string) GoogleOption {
	return func(g *GoogleProvider) {
		g.language = language
	}
}

// WithProviderLogger sets a logger.
func WithProviderLogger(logger *zap.Logger) GoogleOption {
	return func(g *GoogleProvider) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGoogleProvider creates a provider for the given API key
func NewGoogleProvider(apiKey string, opts ...GoogleOption) *GoogleProvider {
	g := &GoogleProvider{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		fields:  defaultFields,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Name identifies the provider in logs and stats
func (g *GoogleProvider) Name() string { return "google" }

type wireLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type wireGeometry struct {
	Location *wireLocation `json:"location"`
}

type wirePlace struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formatted_address"`
	Geometry         *wireGeometry `json:"geometry"`
	Types            []string      `json:"types"`
}

type wirePrediction struct {
	PlaceID              string `json:"place_id"`
	Description          string `json:"description"`
	StructuredFormatting struct {
		MainText string `json:"main_text"`
	} `json:"structured_formatting"`
}

type autocompleteResponse struct {
	Predictions  []wirePrediction `json:"predictions"`
	Status       string           `json:"status"`
	ErrorMessage string           `json:"error_message"`
}

type detailsResponse struct {
	Result       *wirePlace `json:"result"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message"`
}

type findPlaceResponse struct {
	Candidates   []wirePlace `json:"candidates"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
}

// Autocomplete calls place/autocomplete
func (g *GoogleProvider) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	params := url.Values{}
	params.Set("input", input)

	var resp autocompleteResponse
	if err := g.get(ctx, "/place/autocomplete/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status == statusZeroResults {
		return nil, nil
	}
	if err := checkStatus("autocomplete", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	predictions := make([]Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		predictions = append(predictions, Prediction{
			PlaceID:     p.PlaceID,
			MainText:    p.StructuredFormatting.MainText,
			Description: p.Description,
		})
	}
	return predictions, nil
}

// Details calls place/details
func (g *GoogleProvider) Details(ctx context.Context, placeID string) (*Candidate, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join(g.fields, ","))

	var resp detailsResponse
	if err := g.get(ctx, "/place/details/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus("details", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("details %s: %w", placeID, ErrNotFound)
	}

	c := toCandidate(*resp.Result)
	return &c, nil
}

// FindPlace calls place/findplacefromtext
func (g *GoogleProvider) FindPlace(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("input", query)
	params.Set("inputtype", "textquery")
	params.Set("fields", strings.Join(g.fields, ","))

	var resp findPlaceResponse
	if err := g.get(ctx, "/place/findplacefromtext/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus("findplacefromtext", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(resp.Candidates))
	for _, p := range resp.Candidates {
		candidates = append(candidates, toCandidate(p))
	}
	return candidates, nil
}

func toCandidate(p wirePlace) Candidate {
	c := Candidate{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		Types:            p.Types,
	}
	if p.Geometry != nil && p.Geometry.Location != nil {
		c.Lat = p.Geometry.Location.Lat
		c.Lng = p.Geometry.Location.Lng
		c.HasGeometry = true
	}
	return c
}

func checkStatus(endpoint, status, message string) error {
	switch status {
	case statusOK:
		return nil
	case statusZeroResults, statusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, &StatusError{Endpoint: endpoint, Status: status, Message: message})
	case statusRequestDenied, statusInvalidRequest:
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, &StatusError{Endpoint: endpoint, Status: status, Message: message})
	default:
		return &StatusError{Endpoint: endpoint, Status: status, Message: message}
	}
}

// get performs a GET request to the API.
func (g *GoogleProvider) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if g.apiKey == "" {
		return fmt.Errorf("%w: missing API key", ErrProviderUnavailable)
	}

	// Wait for rate limiter
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("key", g.apiKey)
	if g.language != "" {
		params.Set("language", g.language)
	}
	reqURL := fmt.Sprintf("%s%s?%s", g.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	g.logger.Debug("Places API request", zap.String("path", path))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// *url.Error text carries the request URL and with it the API key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			if urlErr.Timeout() {
				return fmt.Errorf("%w: %s", ErrTimeout, path)
			}
			err = urlErr.Err
		}
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{
			Endpoint: path,
			Status:   resp.Status,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %s: reading body", ErrTimeout, path)
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
