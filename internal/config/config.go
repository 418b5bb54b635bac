package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend identifiers accepted in STORAGE_BACKEND.
const (
	StorageHTTP  = "http"
	StorageAzure = "azure"
	StorageLocal = "local"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	StorageBackend   string
	LocalImageDir    string
	AzureAccountName string
	AzureAccountKey  string

	FaceDetectorEndpoint string
	FaceDetectTimeout    time.Duration

	OCREnabled  bool
	OCRLanguage string

	// Side of the square a portrait is normalized to before analysis.
	NormalizeTargetSize int
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		StorageBackend:   getEnvOrDefault("STORAGE_BACKEND", StorageHTTP),
		LocalImageDir:    getEnvOrDefault("LOCAL_IMAGE_DIR", ""),
		AzureAccountName: getEnvOrDefault("AZURE_ACCOUNT_NAME", ""),
		AzureAccountKey:  getEnvOrDefault("AZURE_ACCOUNT_KEY", ""),

		FaceDetectorEndpoint: getEnvOrDefault("FACE_DETECTOR_ENDPOINT", ""),
		FaceDetectTimeout:    parseDurationOrDefault("FACE_DETECT_TIMEOUT", 10*time.Second),

		OCREnabled:  getEnvOrDefault("OCR_ENABLED", "false") == "true",
		OCRLanguage: getEnvOrDefault("OCR_LANGUAGE", "fra"),

		NormalizeTargetSize: int(parseIntOrDefault("NORMALIZE_TARGET_SIZE", 512)),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.AnalysisTimeout)
	}
	switch cfg.StorageBackend {
	case StorageHTTP, StorageAzure, StorageLocal:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == StorageAzure && (cfg.AzureAccountName == "" || cfg.AzureAccountKey == "") {
		return nil, fmt.Errorf("azure backend requires AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
	}
	if cfg.StorageBackend == StorageLocal && cfg.LocalImageDir == "" {
		return nil, fmt.Errorf("local backend requires LOCAL_IMAGE_DIR")
	}
	if cfg.NormalizeTargetSize <= 0 {
		return nil, fmt.Errorf("NORMALIZE_TARGET_SIZE must be > 0 (got %d)", cfg.NormalizeTargetSize)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
