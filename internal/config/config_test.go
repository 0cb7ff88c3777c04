package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "LISTEN_ADDR", "GRAMMAR_PATH", "BACKUP_GRAMMAR_PATH",
		"DANCE_TYPE", "VERBOSE", "SENTRY_DSN", "CLOUDWATCH_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWhenEnvUnset(t *testing.T) {
	clearConfigEnv(t)
	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, EmbeddedGrammar, cfg.GrammarPath)
	assert.Equal(t, "", cfg.BackupGrammarPath)
	assert.Equal(t, "4", cfg.DanceType)
	assert.False(t, cfg.Verbose.Parsing)
	assert.False(t, cfg.Verbose.Matching)
	assert.False(t, cfg.Verbose.Breathing)
	assert.Equal(t, "", cfg.SentryDSN)
	assert.False(t, cfg.CloudWatchEnabled)
}

func TestLoadReadsEveryEnvVar(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("GRAMMAR_PATH", "/etc/setsinmotion/mainstream.grammar")
	t.Setenv("BACKUP_GRAMMAR_PATH", "/etc/setsinmotion/basic.grammar")
	t.Setenv("DANCE_TYPE", "hex")
	t.Setenv("VERBOSE", "parsing,breathing")
	t.Setenv("SENTRY_DSN", "https://example.invalid/dsn")
	t.Setenv("CLOUDWATCH_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/etc/setsinmotion/mainstream.grammar", cfg.GrammarPath)
	assert.Equal(t, "/etc/setsinmotion/basic.grammar", cfg.BackupGrammarPath)
	assert.Equal(t, "hex", cfg.DanceType)
	assert.True(t, cfg.Verbose.Parsing)
	assert.False(t, cfg.Verbose.Matching)
	assert.True(t, cfg.Verbose.Breathing)
	assert.Equal(t, "https://example.invalid/dsn", cfg.SentryDSN)
	assert.True(t, cfg.CloudWatchEnabled)
}

func TestLoadCloudWatchEnabledOnlyOnExactStringTrue(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CLOUDWATCH_ENABLED", "1")
	cfg := Load()
	assert.False(t, cfg.CloudWatchEnabled)
}

func TestVerboseHasTrimsWhitespaceAroundEntries(t *testing.T) {
	assert.True(t, verboseHas("parsing, matching , breathing", "matching"))
	assert.True(t, verboseHas("parsing, matching , breathing", "breathing"))
	assert.False(t, verboseHas("parsing, matching", "breathing"))
	assert.False(t, verboseHas("", "parsing"))
}

func TestGetEnvFallsBackToDefaultWhenUnset(t *testing.T) {
	t.Setenv("SETSINMOTION_TEST_UNSET_VAR", "")
	assert.Equal(t, "fallback", getEnv("SETSINMOTION_TEST_UNSET_VAR", "fallback"))
}

func TestGetEnvPrefersSetValue(t *testing.T) {
	t.Setenv("SETSINMOTION_TEST_SET_VAR", "explicit")
	assert.Equal(t, "explicit", getEnv("SETSINMOTION_TEST_SET_VAR", "fallback"))
}

func TestIsProductionOnlyTrueForProductionEnvironment(t *testing.T) {
	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.False(t, (&Config{Environment: "development"}).IsProduction())
	assert.False(t, (&Config{Environment: ""}).IsProduction())
}
