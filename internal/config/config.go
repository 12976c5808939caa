// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	Indexing IndexingConfig
	Genre    GenreConfig
	Topics   TopicsConfig
	Server   ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds persistence layer paths.
type StorageConfig struct {
	// BasePath is the root for all mutable state (database, search index,
	// backups, model artifacts). Defaults to ~/Bookdex.
	BasePath   string
	DBPath     string // SQLite database file (default: {base}/bookdex.db)
	SearchPath string // full-text search index directory (default: {base}/search)
	BackupPath string // checkpoint backup directory (default: {base}/backups)
	ModelPath  string // topic model artifacts (default: {base}/models)
}

// IndexingConfig holds e-book ingestion configuration.
type IndexingConfig struct {
	LibraryPath    string        // root directory to scan for .epub files
	Workers        int           // concurrent analysis workers (default: NumCPU)
	Language       string        // auto, en, or fr (default: auto)
	SkipExisting   bool          // skip files whose fingerprint is already indexed (default: true)
	BookTimeout    time.Duration // per-book processing deadline (default: 2m)
	BackupInterval int           // commits between checkpoint backups, 0 disables (default: 100)
}

// GenreConfig holds genre classification configuration.
type GenreConfig struct {
	// RuleWeight and ModelWeight blend the keyword-rule distribution with
	// the trained model distribution (defaults 0.6 and 0.4).
	RuleWeight          float64
	ModelWeight         float64
	ConfidenceThreshold float64 // minimum confidence for secondary genres (default: 0.05)
	MaxSecondary        int     // secondary genres reported per book (default: 3)
	ModelPath           string  // trained classifier artifact; empty means rules-only
}

// TopicsConfig holds topic modeling configuration.
type TopicsConfig struct {
	K           int // number of topics (default: 10)
	MaxFeatures int // vocabulary size cap for vectorization (default: 1000)
	TopWords    int // keywords reported per topic (default: 10)
	MinDocs     int // minimum corpus size before fitting (default: 2)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	basePath := flag.String("base-path", "", "Base path for database, search index and backups")
	libraryPath := flag.String("library-path", "", "Path to the e-book library to index")
	serverName := flag.String("server-name", "", "Name for the server")

	// Indexing flags
	workers := flag.String("workers", "", "Concurrent analysis workers (default: number of CPUs)")
	language := flag.String("language", "", "Analysis language: auto, en, fr (default: auto)")
	skipExisting := flag.String("skip-existing", "", "Skip already-indexed files (default: true)")
	bookTimeout := flag.String("book-timeout", "", "Per-book processing deadline (default: 2m)")
	backupInterval := flag.String("backup-interval", "", "Commits between checkpoint backups, 0 disables (default: 100)")

	// Classification flags
	genreModelPath := flag.String("genre-model", "", "Path to trained genre model artifact (default: rules only)")
	topicK := flag.String("topics", "", "Number of topics to fit (default: 10)")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			BasePath: getConfigValue(*basePath, "BASE_PATH", ""),
		},
		Indexing: IndexingConfig{
			LibraryPath:    getConfigValue(*libraryPath, "LIBRARY_PATH", ""),
			Workers:        getIntConfigValue(*workers, "INDEX_WORKERS", runtime.NumCPU()),
			Language:       getConfigValue(*language, "INDEX_LANGUAGE", "auto"),
			SkipExisting:   getBoolConfigValue(*skipExisting, "INDEX_SKIP_EXISTING", true),
			BackupInterval: getIntConfigValue(*backupInterval, "BACKUP_INTERVAL", 100),
		},
		Genre: GenreConfig{
			RuleWeight:          getFloatConfigValue("", "GENRE_RULE_WEIGHT", 0.6),
			ModelWeight:         getFloatConfigValue("", "GENRE_MODEL_WEIGHT", 0.4),
			ConfidenceThreshold: getFloatConfigValue("", "GENRE_CONFIDENCE_THRESHOLD", 0.05),
			MaxSecondary:        getIntConfigValue("", "GENRE_MAX_SECONDARY", 3),
			ModelPath:           getConfigValue(*genreModelPath, "GENRE_MODEL_PATH", ""),
		},
		Topics: TopicsConfig{
			K:           getIntConfigValue(*topicK, "TOPIC_COUNT", 10),
			MaxFeatures: getIntConfigValue("", "TOPIC_MAX_FEATURES", 1000),
			TopWords:    getIntConfigValue("", "TOPIC_TOP_WORDS", 10),
			MinDocs:     getIntConfigValue("", "TOPIC_MIN_DOCS", 2),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "Bookdex Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
	}

	// Parse book timeout.
	bookTimeoutStr := getConfigValue(*bookTimeout, "BOOK_TIMEOUT", "2m")
	bookTimeoutDuration, err := time.ParseDuration(bookTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid book timeout %q: %w", bookTimeoutStr, err)
	}
	cfg.Indexing.BookTimeout = bookTimeoutDuration

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	// Expand and validate storage paths.
	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	// Expand and validate library path.
	if err := cfg.expandLibraryPath(); err != nil {
		return nil, fmt.Errorf("invalid library path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.BasePath == "" {
		return errors.New("storage base path cannot be empty after expansion")
	}

	validLanguages := map[string]bool{
		"auto": true,
		"en":   true,
		"fr":   true,
	}
	if !validLanguages[c.Indexing.Language] {
		return fmt.Errorf("invalid language: %s (must be auto, en, or fr)", c.Indexing.Language)
	}

	if c.Indexing.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Indexing.Workers)
	}

	if c.Indexing.BackupInterval < 0 {
		return fmt.Errorf("backup interval cannot be negative, got %d", c.Indexing.BackupInterval)
	}

	if c.Genre.RuleWeight < 0 || c.Genre.ModelWeight < 0 {
		return errors.New("genre fusion weights cannot be negative")
	}
	if c.Genre.RuleWeight+c.Genre.ModelWeight == 0 {
		return errors.New("genre fusion weights cannot both be zero")
	}
	if c.Genre.MaxSecondary < 0 {
		return fmt.Errorf("max secondary genres cannot be negative, got %d", c.Genre.MaxSecondary)
	}

	if c.Topics.K < 1 {
		return fmt.Errorf("topic count must be at least 1, got %d", c.Topics.K)
	}
	if c.Topics.MaxFeatures < c.Topics.K {
		return fmt.Errorf("topic vocabulary cap (%d) must be at least the topic count (%d)", c.Topics.MaxFeatures, c.Topics.K)
	}

	// LibraryPath can be empty - indexing can be triggered via the API with
	// an explicit path.

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStoragePaths expands the base path and derives the database, search,
// backup and model paths from it when they are not set explicitly.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultBase := filepath.Join(homeDir, "Bookdex")

	base, err := expandPath(c.Storage.BasePath, defaultBase)
	if err != nil {
		return err
	}
	c.Storage.BasePath = base

	if c.Storage.DBPath, err = expandPath(os.Getenv("DB_PATH"), filepath.Join(base, "bookdex.db")); err != nil {
		return err
	}
	if c.Storage.SearchPath, err = expandPath(os.Getenv("SEARCH_PATH"), filepath.Join(base, "search")); err != nil {
		return err
	}
	if c.Storage.BackupPath, err = expandPath(os.Getenv("BACKUP_PATH"), filepath.Join(base, "backups")); err != nil {
		return err
	}
	if c.Storage.ModelPath, err = expandPath(os.Getenv("MODEL_PATH"), filepath.Join(base, "models")); err != nil {
		return err
	}
	return nil
}

// expandLibraryPath expands ~ and makes the path absolute.
// If empty, leaves it empty so indexing can be triggered via the API.
func (c *Config) expandLibraryPath() error {
	if c.Indexing.LibraryPath == "" {
		return nil
	}

	expanded, err := expandPath(c.Indexing.LibraryPath, "")
	if err != nil {
		return err
	}
	c.Indexing.LibraryPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
