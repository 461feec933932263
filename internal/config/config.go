package config

import (
	"os"
	"strconv"
	"strings"

	"pdf-toolbox/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort            string
	WorkspaceDir          string
	MaxFileSize           int64
	LogLevel              string
	DefaultDPI            int
	DefaultImageFormat    string
	EncryptionKeyLength   int
	AllowedOrigins        []string
	SupabaseURL           string
	SupabaseKey           string
	OperationHistoryTable string
	RequireAuth           bool
}

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:4173",
	"http://localhost:3000",
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:            getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		WorkspaceDir:          getEnvOrDefault("WORKSPACE_DIR", "./workspace"),
		MaxFileSize:           getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		DefaultDPI:            getEnvIntOrDefault("DEFAULT_DPI", 300),
		DefaultImageFormat:    getEnvOrDefault("DEFAULT_IMAGE_FORMAT", "png"),
		EncryptionKeyLength:   getEnvKeyLength("ENCRYPTION_KEY_LENGTH", 256),
		AllowedOrigins:        getEnvListOrDefault("ALLOWED_ORIGINS", defaultAllowedOrigins),
		SupabaseURL:           getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:           getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		OperationHistoryTable: getEnvOrDefault("OPERATION_HISTORY_TABLE", "operation_history"),
		RequireAuth:           getEnvBoolOrDefault("REQUIRE_AUTH", false),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetWorkspaceDir returns the directory all request paths are resolved against
func (c *AppConfig) GetWorkspaceDir() string {
	return c.WorkspaceDir
}

// GetMaxFileSize returns the maximum allowed upload size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

func (c *AppConfig) GetDefaultDPI() int {
	return c.DefaultDPI
}

func (c *AppConfig) GetDefaultImageFormat() string {
	return c.DefaultImageFormat
}

func (c *AppConfig) GetEncryptionKeyLength() int {
	return c.EncryptionKeyLength
}

func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

func (c *AppConfig) GetOperationHistoryTable() string {
	return c.OperationHistoryTable
}

func (c *AppConfig) GetRequireAuth() bool {
	return c.RequireAuth
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvKeyLength accepts only the key lengths the codec supports.
func getEnvKeyLength(key string, defaultValue int) int {
	switch n := getEnvIntOrDefault(key, defaultValue); n {
	case 40, 128, 256:
		return n
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
