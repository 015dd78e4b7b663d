package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB       DBConfig
	Server   ServerConfig
	Provider ProviderConfig
	Search   SearchConfig
	Retry    RetryConfig
	Map      MapConfig
	Catalog  CatalogConfig
}

// DBType represents the storage backend used for persisted history
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeBadger     DBType = "badger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type      DBType
	Host      string
	Port      string
	User      string
	Password  string
	Name      string
	SSLMode   string
	Path      string
	BadgerDir string
}

// ProviderConfig holds settings for the places provider
type ProviderConfig struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	RateLimit int
	Language  string
	Fields    []string
}

// SearchConfig holds tunables for suggestions and history
type SearchConfig struct {
	HistoryLimit   int
	MaxSuggestions int
	MinQueryLength int
	DebounceDelay  time.Duration
}

// RetryConfig holds exponential backoff settings
type RetryConfig struct {
	MaxAttempts       int
	SearchAttempts    int
	BaseDelay         time.Duration
	BackoffMultiplier float64
}

// MapConfig holds the default map view
type MapConfig struct {
	DefaultLat       float64
	DefaultLng       float64
	DefaultZoom      int
	DefaultZoomEmpty int
}

// CatalogConfig points at an optional fallback catalog override
type CatalogConfig struct {
	Path string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		if c.Name != "" && c.Name != "placefinder" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	case DBTypeSQLite:
		return fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on", c.Path)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// IsSQLite returns true for both the in-memory and file backed SQLite modes
func (c DBConfig) IsSQLite() bool {
	return c.Type == DBTypeMemory || c.Type == DBTypeSQLite
}

// IsSQL returns false for the key-value backend
func (c DBConfig) IsSQL() bool {
	return c.Type != DBTypeBadger
}

// HasAPIKey reports whether a live provider can be used
func (c ProviderConfig) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// DefaultPlaceFields is the field subset requested from details and text search
var DefaultPlaceFields = []string{"place_id", "name", "formatted_address", "geometry", "types"}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// writeSlack is added on top of the search budget when deriving the write timeout
const writeSlack = 15 * time.Second

// SearchBudget is the longest a synchronous text search can take: every
// attempt runs into the provider timeout and every backoff delay is slept.
func (c *Config) SearchBudget() time.Duration {
	attempts := c.Retry.SearchAttempts + 1
	budget := time.Duration(attempts) * c.Provider.Timeout

	delay := float64(c.Retry.BaseDelay)
	for i := 0; i < c.Retry.SearchAttempts; i++ {
		budget += time.Duration(delay)
		delay *= c.Retry.BackoffMultiplier
	}
	return budget
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	switch dbType {
	case DBTypePostgreSQL, DBTypeMemory, DBTypeSQLite, DBTypeBadger:
	default:
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:      dbType,
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "5432"),
			User:      getEnv("DB_USER", "placefinder"),
			Password:  getEnv("DB_PASSWORD", "placefinder_password"),
			Name:      getEnv("DB_NAME", "placefinder"),
			SSLMode:   getEnv("DB_SSLMODE", "disable"),
			Path:      getEnv("DB_PATH", "data/placefinder.db"),
			BadgerDir: getEnv("BADGER_DIR", "data/badger"),
		},
		Server: ServerConfig{
			Port:         getEnv("APP_PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 0),
		},
		Provider: ProviderConfig{
			APIKey:    getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL:   getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api"),
			Timeout:   getEnvAsDuration("PLACES_TIMEOUT", 10*time.Second),
			RateLimit: getEnvAsInt("PLACES_RATE_LIMIT", 10),
			Language:  getEnv("PLACES_LANGUAGE", ""),
			Fields:    getEnvAsSlice("PLACES_FIELDS"),
		},
		Search: SearchConfig{
			HistoryLimit:   getEnvAsInt("SEARCH_HISTORY_LIMIT", 20),
			MaxSuggestions: getEnvAsInt("MAX_SUGGESTIONS", 5),
			MinQueryLength: getEnvAsInt("MIN_QUERY_LENGTH", 2),
			DebounceDelay:  getEnvAsDuration("AUTOCOMPLETE_DEBOUNCE", 300*time.Millisecond),
		},
		Retry: RetryConfig{
			MaxAttempts:       getEnvAsInt("MAX_RETRY_ATTEMPTS", 3),
			BaseDelay:         getEnvAsDuration("RETRY_DELAY", time.Second),
			BackoffMultiplier: getEnvAsFloat("RETRY_BACKOFF_MULTIPLIER", 2),
		},
		Map: MapConfig{
			DefaultLat:       getEnvAsFloat("DEFAULT_CENTER_LAT", 3.1488),
			DefaultLng:       getEnvAsFloat("DEFAULT_CENTER_LNG", 101.7140),
			DefaultZoom:      getEnvAsInt("DEFAULT_MAP_ZOOM", 14),
			DefaultZoomEmpty: getEnvAsInt("DEFAULT_MAP_ZOOM_NO_PLACE", 11),
		},
		Catalog: CatalogConfig{
			Path: getEnv("FALLBACK_CATALOG_PATH", ""),
		},
	}

	if config.Search.HistoryLimit <= 0 {
		return nil, fmt.Errorf("SEARCH_HISTORY_LIMIT must be positive, got %d", config.Search.HistoryLimit)
	}
	if len(config.Provider.Fields) == 0 {
		config.Provider.Fields = DefaultPlaceFields
	}
	if config.Retry.MaxAttempts < 0 {
		config.Retry.MaxAttempts = 3
	}
	// text search shares the global retry budget unless overridden
	config.Retry.SearchAttempts = getEnvAsInt("SEARCH_RETRY_ATTEMPTS", config.Retry.MaxAttempts)
	if config.Retry.SearchAttempts < 0 {
		config.Retry.SearchAttempts = config.Retry.MaxAttempts
	}
	if config.Retry.BackoffMultiplier < 1 {
		config.Retry.BackoffMultiplier = 1
	}
	// a response must never be cut off while a search is still retrying
	if floor := config.SearchBudget() + writeSlack; config.Server.WriteTimeout < floor {
		config.Server.WriteTimeout = floor
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("300ms") or bare milliseconds ("300")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
