package config

import (
	"os"
	"strings"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/dancetype"
)

// Config holds the compiler session's environment-driven configuration.
// Note: this is stateless configuration - no database or auth secrets
// needed. Persistence of a saved call/grammar library is an explicit
// external collaborator, not this binary's concern.
type Config struct {
	// Environment
	Environment string
	ListenAddr  string // introspection API bind address, e.g. ":8080"

	// Grammar corpus. EmbeddedGrammar is the sentinel value that tells
	// internal/session to use the compiled-in corpus (pkg/embedded)
	// instead of reading GrammarPath/BackupGrammarPath from disk.
	GrammarPath       string // default grammar file compiled at session start
	BackupGrammarPath string // optional backup grammar, local entries override it
	DanceType         string // "2", "4", "6"/"hex", or "ring"

	// Verbose trace channels, spec.md §4.D/§6
	Verbose dancetype.VerboseFlags

	// Observability
	SentryDSN          string // Sentry DSN for error tracking
	CloudWatchEnabled  bool   // feature flag for CloudWatch metrics
}

// EmbeddedGrammar is the sentinel GrammarPath/BackupGrammarPath value
// selecting the compiled-in default corpus (pkg/embedded) rather than a
// filesystem path.
const EmbeddedGrammar = "embedded"

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		GrammarPath:       getEnv("GRAMMAR_PATH", EmbeddedGrammar),
		BackupGrammarPath: getEnv("BACKUP_GRAMMAR_PATH", ""),
		DanceType:         getEnv("DANCE_TYPE", "4"),
		Verbose: dancetype.VerboseFlags{
			Parsing:   verboseHas(getEnv("VERBOSE", ""), "parsing"),
			Matching:  verboseHas(getEnv("VERBOSE", ""), "matching"),
			Breathing: verboseHas(getEnv("VERBOSE", ""), "breathing"),
		},
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		CloudWatchEnabled: getEnv("CLOUDWATCH_ENABLED", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// verboseHas reports whether channel appears in a comma-separated
// --verbose list, e.g. "parsing,breathing".
func verboseHas(list, channel string) bool {
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == channel {
			return true
		}
	}
	return false
}

// IsProduction reports whether CloudWatch/Sentry should actually emit,
// mirroring the teacher's environment gate.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
