package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			BasePath: "/some/path",
		},
		Indexing: IndexingConfig{
			LibraryPath: "/books",
			Workers:     4,
			Language:    "auto",
		},
		Genre: GenreConfig{
			RuleWeight:  0.6,
			ModelWeight: 0.4,
		},
		Topics: TopicsConfig{
			K:           10,
			MaxFeatures: 1000,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"INFO", true},   // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Languages(t *testing.T) {
	tests := []struct {
		lang  string
		valid bool
	}{
		{"auto", true},
		{"en", true},
		{"fr", true},
		{"de", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			cfg := validConfig()
			cfg.Indexing.Language = tt.lang

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyStoragePath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.BasePath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "storage base path cannot be empty")
}

func TestValidate_Workers(t *testing.T) {
	cfg := validConfig()
	cfg.Indexing.Workers = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestValidate_GenreWeights(t *testing.T) {
	cfg := validConfig()
	cfg.Genre.RuleWeight = 0
	cfg.Genre.ModelWeight = 0

	err := cfg.Validate()
	assert.Error(t, err)

	cfg = validConfig()
	cfg.Genre.RuleWeight = -0.1
	err = cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_TopicBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Topics.K = 0

	err := cfg.Validate()
	assert.Error(t, err)

	cfg = validConfig()
	cfg.Topics.K = 50
	cfg.Topics.MaxFeatures = 20
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vocabulary cap")
}

func TestExpandStoragePaths_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{
			BasePath: "",
		},
	}

	err := cfg.expandStoragePaths()
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	expected := filepath.Join(homeDir, "Bookdex")
	assert.Equal(t, expected, cfg.Storage.BasePath)
	assert.Equal(t, filepath.Join(expected, "bookdex.db"), cfg.Storage.DBPath)
	assert.Equal(t, filepath.Join(expected, "search"), cfg.Storage.SearchPath)
	assert.Equal(t, filepath.Join(expected, "backups"), cfg.Storage.BackupPath)
	assert.Equal(t, filepath.Join(expected, "models"), cfg.Storage.ModelPath)
}

func TestExpandStoragePaths_TildeExpansion(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{
			BasePath: "~/my-data",
		},
	}

	err := cfg.expandStoragePaths()
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	expected := filepath.Join(homeDir, "my-data")
	assert.Equal(t, expected, cfg.Storage.BasePath)
}

func TestExpandStoragePaths_AbsolutePath(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{
			BasePath: "/absolute/path/to/data",
		},
	}

	err := cfg.expandStoragePaths()
	require.NoError(t, err)

	assert.Equal(t, "/absolute/path/to/data", cfg.Storage.BasePath)
}

func TestExpandLibraryPath_RelativePath(t *testing.T) {
	cfg := &Config{
		Indexing: IndexingConfig{
			LibraryPath: "relative/path",
		},
	}

	err := cfg.expandLibraryPath()
	require.NoError(t, err)

	// Should be converted to absolute path.
	assert.True(t, filepath.IsAbs(cfg.Indexing.LibraryPath))
	assert.Contains(t, cfg.Indexing.LibraryPath, "relative/path")
}

func TestExpandLibraryPath_EmptyStaysEmpty(t *testing.T) {
	cfg := &Config{}

	err := cfg.expandLibraryPath()
	require.NoError(t, err)
	assert.Empty(t, cfg.Indexing.LibraryPath)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	// Test flag value takes priority.
	result := getConfigValue("flag-value", "ENV_KEY", "default-value")
	assert.Equal(t, "flag-value", result)

	// Test env var when flag is empty.
	os.Setenv("TEST_ENV_KEY", "env-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_ENV_KEY")      //nolint:errcheck // Test cleanup

	result = getConfigValue("", "TEST_ENV_KEY", "default-value")
	assert.Equal(t, "env-value", result)

	// Test default when both are empty.
	result = getConfigValue("", "NONEXISTENT_KEY", "default-value")
	assert.Equal(t, "default-value", result)
}

func TestGetFloatConfigValue(t *testing.T) {
	os.Setenv("TEST_FLOAT_KEY", "0.75") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_FLOAT_KEY") //nolint:errcheck // Test cleanup

	assert.Equal(t, 0.75, getFloatConfigValue("", "TEST_FLOAT_KEY", 0.5))
	assert.Equal(t, 0.5, getFloatConfigValue("", "NONEXISTENT_FLOAT", 0.5))

	os.Setenv("TEST_FLOAT_BAD", "not-a-number") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_FLOAT_BAD")         //nolint:errcheck // Test cleanup
	assert.Equal(t, 0.5, getFloatConfigValue("", "TEST_FLOAT_BAD", 0.5))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	// Create temp .env file.
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `# Test env file
ENV=staging
LOG_LEVEL=debug
BASE_PATH=/test/path
# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	// Clear any existing env vars.
	os.Unsetenv("ENV")           //nolint:errcheck // Test cleanup
	os.Unsetenv("LOG_LEVEL")     //nolint:errcheck // Test cleanup
	os.Unsetenv("BASE_PATH")     //nolint:errcheck // Test cleanup
	os.Unsetenv("QUOTED_VALUE")  //nolint:errcheck // Test cleanup
	os.Unsetenv("SINGLE_QUOTED") //nolint:errcheck // Test cleanup
	defer func() {
		os.Unsetenv("ENV")           //nolint:errcheck // Test cleanup
		os.Unsetenv("LOG_LEVEL")     //nolint:errcheck // Test cleanup
		os.Unsetenv("BASE_PATH")     //nolint:errcheck // Test cleanup
		os.Unsetenv("QUOTED_VALUE")  //nolint:errcheck // Test cleanup
		os.Unsetenv("SINGLE_QUOTED") //nolint:errcheck // Test cleanup
	}()

	// Load the file.
	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Verify values were loaded.
	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "/test/path", os.Getenv("BASE_PATH"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	// Create temp .env file with invalid format.
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
ANOTHER_VALID=value
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	// Should return error.
	err = loadEnvFile(envFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	err := loadEnvFile("/nonexistent/file/.env")
	assert.Error(t, err)
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	// Set env var first.
	os.Setenv("TEST_VAR", "original-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_VAR")           //nolint:errcheck // Test cleanup

	// Create temp .env file that tries to override it.
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `TEST_VAR=new-value`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	// Load the file.
	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Original value should be preserved.
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}

func TestLoadEnvFile_Whitespace(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `  KEY_WITH_SPACES  =  value with spaces  `
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	os.Unsetenv("KEY_WITH_SPACES")       //nolint:errcheck // Test cleanup
	defer os.Unsetenv("KEY_WITH_SPACES") //nolint:errcheck // Test cleanup

	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Whitespace should be trimmed.
	assert.Equal(t, "value with spaces", os.Getenv("KEY_WITH_SPACES"))
}
