package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/api"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/config"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/dancetype"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/engine"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/session"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build.
var releaseVersion = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "setsinmotion@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            cfg.Environment != environmentProduction,
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("Sentry not configured (SENTRY_DSN not set)")
	}

	serve := flag.Bool("serve", false, "start the introspection HTTP API instead of compiling phrases")
	grammarPath := flag.String("grammar", cfg.GrammarPath, "path to the grammar file to compile")
	backupPath := flag.String("backup", cfg.BackupGrammarPath, "path to a backup grammar, local definitions override it")
	danceType := flag.String("dance-type", cfg.DanceType, "dance type: 2, 4, 6 (hex), or ring")
	verboseFlag := flag.String("verbose", "", "comma-separated trace channels: parsing,matching,breathing")
	listenAddr := flag.String("listen", cfg.ListenAddr, "introspection API bind address")
	flag.Parse()

	cfg.GrammarPath = *grammarPath
	cfg.BackupGrammarPath = *backupPath
	cfg.DanceType = *danceType
	cfg.ListenAddr = *listenAddr
	cfg.Verbose = parseVerbose(*verboseFlag)

	if *serve {
		runServer(cfg)
		return
	}

	runCLI(cfg, flag.Args())
}

func parseVerbose(s string) dancetype.VerboseFlags {
	var v dancetype.VerboseFlags
	for _, ch := range strings.Split(s, ",") {
		switch strings.TrimSpace(ch) {
		case "parsing":
			v.Parsing = true
		case "matching":
			v.Matching = true
		case "breathing":
			v.Breathing = true
		}
	}
	return v
}

func runServer(cfg *config.Config) {
	router := api.SetupRouter(cfg, releaseVersion)
	log.Printf("Starting setsinmotion introspection API on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func runCLI(cfg *config.Config, phrases []string) {
	if len(phrases) == 0 {
		fmt.Fprintln(os.Stderr, "usage: setsinmotion [flags] <phrase> [<phrase>...]")
		os.Exit(2)
	}

	sess, err := session.Load(cfg)
	if err != nil {
		log.Fatalf("loading session: %v", err)
	}

	results := sess.CompileAll(phrases)
	for _, r := range results {
		printResult(r)
	}

	for _, r := range results {
		if r.Err != nil {
			os.Exit(1)
		}
	}
}

func printResult(r *session.Result) {
	fmt.Printf("=== %q (stage %s, %s) ===\n", r.Phrase, r.Stage.ID.String(), r.Duration)
	if r.Err != nil {
		fmt.Println("FAILED:", r.Err.Error())
		return
	}
	plans, steps, tiles, terms := r.Stage.Counts()
	fmt.Printf("ok: %d plans, %d steps, %d tiles, %d terms tracked\n", plans, steps, tiles, terms)
	printPlan(r.Plan, 0)
}

// printPlan renders a Plan's Step/Tile tree to stdout, indenting one
// level per tile nesting, the CLI-friendly counterpart to the
// introspection API's JSON plan view (internal/api/view.go).
func printPlan(p *engine.Plan, depth int) {
	indent := strings.Repeat("  ", depth)
	if p.Result != nil {
		fmt.Printf("%sresult: %d dancers (%s)\n", indent, len(p.Result.Dancers), p.Result.Tag)
	}
	for i, step := range p.Steps {
		fmt.Printf("%sstep %d: %s", indent, i, stepKindLabel(step.Kind))
		if step.Interval != nil {
			fmt.Printf(" (%d beats, %d motions)", step.Interval.Beats, len(step.Interval.Motions))
		}
		fmt.Println()
		for _, tile := range step.Tiles {
			fmt.Printf("%s  tile mask=%012b\n", indent, tile.Mask)
			if tile.Plan != nil {
				printPlan(tile.Plan, depth+2)
			}
		}
	}
}

func stepKindLabel(k engine.StepKind) string {
	switch k {
	case engine.StepPrimitive:
		return "primitive"
	case engine.StepPart:
		return "part"
	case engine.StepCall:
		return "call"
	case engine.StepStartTogether:
		return "start_together"
	default:
		return "unknown"
	}
}
