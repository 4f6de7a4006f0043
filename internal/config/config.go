// Package config reads runtime settings from OPSLINE_* environment
// variables with sensible defaults for local development.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DataDir     string
	DBPath      string

	ProviderBaseURL    string
	ProviderTimeoutSec int
	RecordLimit        int

	CacheTTLSec   int
	CacheWarmCron string

	SessionMaxTurns  int
	SystemPromptFile string

	LLMBaseURL       string
	LLMAPIKey        string
	LLMModel         string
	LLMTimeoutSec    int
	LLMMaxToolRounds int

	MCPConfigFile string
}

func FromEnv() Config {
	dataDir := stringOrDefault("OPSLINE_DATA_DIR", "/data")
	dbPath := stringOrDefault("OPSLINE_DB_PATH", filepath.Join(dataDir, "opsline", "meta.sqlite"))

	return Config{
		Environment: stringOrDefault("OPSLINE_ENV", "development"),
		HTTPAddr:    stringOrDefault("OPSLINE_HTTP_ADDR", ":8080"),
		DataDir:     dataDir,
		DBPath:      dbPath,

		ProviderBaseURL:    stringOrDefault("OPSLINE_PROVIDER_BASE_URL", "https://jsonplaceholder.typicode.com"),
		ProviderTimeoutSec: intOrDefault("OPSLINE_PROVIDER_TIMEOUT_SECONDS", 10),
		RecordLimit:        intOrDefault("OPSLINE_RECORD_LIMIT", 20),

		CacheTTLSec:   intOrDefault("OPSLINE_CACHE_TTL_SECONDS", 300),
		CacheWarmCron: stringOrDefault("OPSLINE_CACHE_WARM_CRON", "*/4 * * * *"),

		SessionMaxTurns:  intOrDefault("OPSLINE_SESSION_MAX_TURNS", 24),
		SystemPromptFile: stringOrDefault("OPSLINE_SYSTEM_PROMPT_FILE", filepath.Join(dataDir, "opsline", "system_prompt.md")),

		LLMBaseURL:       stringOrDefault("OPSLINE_LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:        strings.TrimSpace(os.Getenv("OPSLINE_LLM_API_KEY")),
		LLMModel:         stringOrDefault("OPSLINE_LLM_MODEL", "gpt-4o-mini"),
		LLMTimeoutSec:    intOrDefault("OPSLINE_LLM_TIMEOUT_SECONDS", 60),
		LLMMaxToolRounds: intOrDefault("OPSLINE_LLM_MAX_TOOL_ROUNDS", 4),

		MCPConfigFile: strings.TrimSpace(os.Getenv("OPSLINE_MCP_CONFIG_FILE")),
	}
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
