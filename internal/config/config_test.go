package config

import (
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("OPSLINE_ENV", "")
	t.Setenv("OPSLINE_HTTP_ADDR", "")
	t.Setenv("OPSLINE_DATA_DIR", "")
	t.Setenv("OPSLINE_DB_PATH", "")
	t.Setenv("OPSLINE_PROVIDER_BASE_URL", "")
	t.Setenv("OPSLINE_PROVIDER_TIMEOUT_SECONDS", "")
	t.Setenv("OPSLINE_RECORD_LIMIT", "")
	t.Setenv("OPSLINE_CACHE_TTL_SECONDS", "")
	t.Setenv("OPSLINE_CACHE_WARM_CRON", "")
	t.Setenv("OPSLINE_SESSION_MAX_TURNS", "")
	t.Setenv("OPSLINE_SYSTEM_PROMPT_FILE", "")
	t.Setenv("OPSLINE_LLM_BASE_URL", "")
	t.Setenv("OPSLINE_LLM_API_KEY", "")
	t.Setenv("OPSLINE_LLM_MODEL", "")
	t.Setenv("OPSLINE_LLM_TIMEOUT_SECONDS", "")
	t.Setenv("OPSLINE_LLM_MAX_TOOL_ROUNDS", "")
	t.Setenv("OPSLINE_MCP_CONFIG_FILE", "")

	cfg := FromEnv()
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != filepath.Join("/data", "opsline", "meta.sqlite") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ProviderBaseURL != "https://jsonplaceholder.typicode.com" {
		t.Errorf("ProviderBaseURL = %q", cfg.ProviderBaseURL)
	}
	if cfg.RecordLimit != 20 {
		t.Errorf("RecordLimit = %d", cfg.RecordLimit)
	}
	if cfg.CacheTTLSec != 300 {
		t.Errorf("CacheTTLSec = %d", cfg.CacheTTLSec)
	}
	if cfg.SessionMaxTurns != 24 {
		t.Errorf("SessionMaxTurns = %d", cfg.SessionMaxTurns)
	}
	if cfg.LLMMaxToolRounds != 4 {
		t.Errorf("LLMMaxToolRounds = %d", cfg.LLMMaxToolRounds)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("OPSLINE_DATA_DIR", "/tmp/opsline")
	t.Setenv("OPSLINE_DB_PATH", "")
	t.Setenv("OPSLINE_HTTP_ADDR", ":9090")
	t.Setenv("OPSLINE_RECORD_LIMIT", "50")
	t.Setenv("OPSLINE_CACHE_TTL_SECONDS", "not-a-number")

	cfg := FromEnv()
	if cfg.DataDir != "/tmp/opsline" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	// DBPath follows the data dir when not pinned explicitly.
	if cfg.DBPath != filepath.Join("/tmp/opsline", "opsline", "meta.sqlite") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RecordLimit != 50 {
		t.Errorf("RecordLimit = %d", cfg.RecordLimit)
	}
	// Unparseable numbers fall back to the default.
	if cfg.CacheTTLSec != 300 {
		t.Errorf("CacheTTLSec = %d", cfg.CacheTTLSec)
	}
}
