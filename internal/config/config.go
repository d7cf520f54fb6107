// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ErrMissingAPIKey is returned when no generative-text credential is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable is required")

// Defaults used when the environment leaves a value unset.
const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultPort           = 8080
	DefaultProfileURLBase = "https://linkedin.com/in/"
	DefaultQRModulePixels = 10
	DefaultMaxUploadBytes = 10 << 20
	DefaultMaxConcurrency = 1
)

// Config holds every setting a generation needs. It is built once at startup
// and handed to the collaborators that need it.
type Config struct {
	APIKey string `json:"api_key,omitempty"` // Gemini API key
	Model  string `json:"model,omitempty"`   // Gemini model name
	Port   int    `json:"port,omitempty"`    // HTTP listen port

	// EnrichTimeout bounds each enrichment call. Zero means no timeout.
	EnrichTimeout time.Duration `json:"enrich_timeout,omitempty"`
	// MaxConcurrency bounds concurrent analysis calls. 1 keeps them sequential.
	MaxConcurrency int `json:"max_concurrency,omitempty"`

	// SanitizeDownloadNames escapes the candidate name in the download filename and link.
	SanitizeDownloadNames bool `json:"sanitize_download_names,omitempty"`

	ProfileURLBase string `json:"profile_url_base,omitempty"` // Prefix for the QR profile URL
	QRModulePixels int    `json:"qr_module_pixels,omitempty"` // Pixels per QR module
	MaxUploadBytes int64  `json:"max_upload_bytes,omitempty"` // Limit for uploaded job descriptions
	UseBrowser     bool   `json:"use_browser,omitempty"`      // Use headless browser for SPA job pages
	Verbose        bool   `json:"verbose,omitempty"`          // Print detailed debug information
}

// Default returns a Config with every default applied and no credential.
func Default() Config {
	return Config{
		Model:          DefaultModel,
		Port:           DefaultPort,
		MaxConcurrency: DefaultMaxConcurrency,
		ProfileURLBase: DefaultProfileURLBase,
		QRModulePixels: DefaultQRModulePixels,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
}

// Load builds a Config from environment variables.
// It returns ErrMissingAPIKey when no credential is present, after filling
// every other field so callers that never enrich can still use the result.
func Load() (*Config, error) {
	cfg := Default()

	cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	cfg.Model = getEnvString("LLM_MODEL", cfg.Model)
	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.EnrichTimeout = getEnvDuration("ENRICH_TIMEOUT", 0)
	cfg.MaxConcurrency = getEnvInt("MAX_CONCURRENT_ENRICHMENTS", cfg.MaxConcurrency)
	cfg.SanitizeDownloadNames = getEnvBool("SANITIZE_DOWNLOAD_NAMES", false)
	cfg.ProfileURLBase = getEnvString("PROFILE_URL_BASE", cfg.ProfileURLBase)
	cfg.QRModulePixels = getEnvInt("QR_MODULE_PX", cfg.QRModulePixels)
	cfg.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.UseBrowser = getEnvBool("USE_BROWSER", false)

	if err := cfg.Validate(); err != nil {
		return &cfg, err
	}
	return &cfg, nil
}

// LoadFile loads configuration overrides from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable for enrichment.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return c.ValidateRanges()
}

// ValidateRanges checks numeric settings without requiring a credential.
func (c *Config) ValidateRanges() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.EnrichTimeout < 0 {
		return fmt.Errorf("config error: 'enrich_timeout' must be non-negative")
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("config error: 'max_concurrency' must be at least 1")
	}
	if c.QRModulePixels < 1 {
		return fmt.Errorf("config error: 'qr_module_pixels' must be at least 1")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// The CLI uses it to layer a --config file over environment settings.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.ProfileURLBase == "" {
		result.ProfileURLBase = defaults.ProfileURLBase
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.EnrichTimeout == 0 {
		result.EnrichTimeout = defaults.EnrichTimeout
	}
	if result.MaxConcurrency == 0 {
		result.MaxConcurrency = defaults.MaxConcurrency
	}
	if result.QRModulePixels == 0 {
		result.QRModulePixels = defaults.QRModulePixels
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}

	// Bool fields: cannot distinguish unset from false, so either side enables them
	result.SanitizeDownloadNames = result.SanitizeDownloadNames || defaults.SanitizeDownloadNames
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
