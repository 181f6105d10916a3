package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_EnvOverridesYAML(t *testing.T) {
	// Create a temp directory with a config.yaml
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
port: "8090"
env: "test"
database:
  host: "db.example.com"
  port: 5432
  user: "testuser"
  database: "testdb"
matching:
  max_pool_size: 150
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Change to temp directory so Load() finds config.yaml
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	// Clear env vars that might interfere with test
	os.Unsetenv("PGHOST")
	os.Unsetenv("MATCH_MAX_POOL_SIZE")

	// Set env vars to override YAML values
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify env vars override YAML
	if cfg.Port != "9090" {
		t.Errorf("expected Port=9090 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}

	// Verify version was set
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}

	// Verify YAML value used for database host (proves YAML was read)
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host=db.example.com (from yaml), got %s", cfg.Database.Host)
	}
	if cfg.Matching.MaxPoolSize != 150 {
		t.Errorf("expected Matching.MaxPoolSize=150 (from yaml), got %d", cfg.Matching.MaxPoolSize)
	}
}

func TestLoad_MissingConfigFileUsesEnv(t *testing.T) {
	tmpDir := t.TempDir()

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	os.Unsetenv("PORT")
	t.Setenv("PGHOST", "env-only-host")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed without config.yaml: %v", err)
	}

	if cfg.Database.Host != "env-only-host" {
		t.Errorf("expected Database.Host=env-only-host (from env), got %s", cfg.Database.Host)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected Port=8090 (default), got %s", cfg.Port)
	}
}

func TestLoad_MatchingDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	// Clear any env vars that might interfere
	os.Unsetenv("MATCH_MAX_POOL_SIZE")
	os.Unsetenv("MATCH_MIN_CONFIDENCE_FLOOR")
	os.Unsetenv("MATCH_DEFAULT_MIN_CONFIDENCE")
	os.Unsetenv("MATCH_MAX_SUGGESTIONS")
	os.Unsetenv("MATCH_CACHE_TTL_SECONDS")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify matching config defaults
	if cfg.Matching.MaxPoolSize != 200 {
		t.Errorf("expected MaxPoolSize=200 (default), got %d", cfg.Matching.MaxPoolSize)
	}
	if cfg.Matching.MinConfidenceFloor != 0.50 {
		t.Errorf("expected MinConfidenceFloor=0.50 (default), got %v", cfg.Matching.MinConfidenceFloor)
	}
	if cfg.Matching.DefaultMinConfidence != 0.90 {
		t.Errorf("expected DefaultMinConfidence=0.90 (default), got %v", cfg.Matching.DefaultMinConfidence)
	}
	if cfg.Matching.MaxSuggestions != 100 {
		t.Errorf("expected MaxSuggestions=100 (default), got %d", cfg.Matching.MaxSuggestions)
	}
	if cfg.Matching.CacheTTLSeconds != 300 {
		t.Errorf("expected CacheTTLSeconds=300 (default), got %d", cfg.Matching.CacheTTLSeconds)
	}
}

func TestLoad_MatchingValidation(t *testing.T) {
	tmpDir := t.TempDir()

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	// Default below the floor must be rejected
	t.Setenv("MATCH_MIN_CONFIDENCE_FLOOR", "0.80")
	t.Setenv("MATCH_DEFAULT_MIN_CONFIDENCE", "0.60")

	_, err = Load("test-version")
	if err == nil {
		t.Fatal("expected error when default_min_confidence is below the floor")
	}
	if !strings.Contains(err.Error(), "default_min_confidence") {
		t.Errorf("expected error to mention default_min_confidence, got: %v", err)
	}
}

func TestLoad_CORSOrigins(t *testing.T) {
	tmpDir := t.TempDir()

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.pitchrank.io, http://localhost:3000")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %d: %v", len(cfg.CORSAllowedOrigins), cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[0] != "https://app.pitchrank.io" {
		t.Errorf("expected first origin https://app.pitchrank.io, got %s", cfg.CORSAllowedOrigins[0])
	}
	if cfg.CORSAllowedOrigins[1] != "http://localhost:3000" {
		t.Errorf("expected second origin http://localhost:3000, got %s", cfg.CORSAllowedOrigins[1])
	}
}

func TestConnectionString(t *testing.T) {
	dbCfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5433,
		User:     "pitchrank",
		Password: "secret",
		Database: "pitchrank_test",
		SSLMode:  "disable",
	}

	got := dbCfg.ConnectionString()
	want := "host=localhost port=5433 user=pitchrank password=secret dbname=pitchrank_test sslmode=disable"
	if got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
