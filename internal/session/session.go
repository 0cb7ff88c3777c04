// Package session is the Context-construction seam spec.md §9 calls for:
// "treat [globals] as an explicit configuration passed to a Context
// object at construction of a compile session." It loads a grammar (with
// backup-chain inheritance), selects a dance type, and builds one Stage
// per top-level call phrase, the way the teacher's handlers build one
// gin.Context-scoped request out of a shared *config.Config.
package session

import (
	"fmt"
	"os"
	"time"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/config"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/dancetype"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/engine"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/grammar"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/logger"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/parser"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/stage"
	"github.com/Conceptual-Machines/setsinmotion-go/pkg/embedded"
)

// Session wires one compiled Grammar (with its backup chain resolved) to
// a dance-type Context, ready to compile any number of call phrases.
type Session struct {
	Grammar *grammar.Grammar
	Ctx     *dancetype.Context
}

// Load reads cfg.GrammarPath (and, if set, cfg.BackupGrammarPath as the
// backup grammar's source) and builds a Session for cfg.DanceType.
// Grounded on the teacher's config.Load->SetupRouter wiring shape: load
// configuration once, hand the resolved object to everything downstream.
func Load(cfg *config.Config) (*Session, error) {
	kind, ok := dancetype.ParseKind(cfg.DanceType)
	if !ok {
		return nil, fmt.Errorf("unknown dance type %q", cfg.DanceType)
	}

	var backup *grammar.Grammar
	switch {
	case cfg.BackupGrammarPath == config.EmbeddedGrammar,
		cfg.GrammarPath == config.EmbeddedGrammar && cfg.BackupGrammarPath == "":
		// The compiled-in corpus chains mainstream -> basic itself; an
		// explicit BackupGrammarPath still overrides that default.
		var err error
		backup, err = grammar.Parse(string(embedded.BasicGrammar), nil)
		if err != nil {
			return nil, fmt.Errorf("parsing embedded basic grammar: %w", err)
		}
	case cfg.BackupGrammarPath != "":
		text, err := os.ReadFile(cfg.BackupGrammarPath)
		if err != nil {
			return nil, fmt.Errorf("reading backup grammar: %w", err)
		}
		backup, err = grammar.Parse(string(text), nil)
		if err != nil {
			return nil, fmt.Errorf("parsing backup grammar: %w", err)
		}
	}

	var text string
	if cfg.GrammarPath == config.EmbeddedGrammar {
		text = string(embedded.MainstreamGrammar)
	} else {
		b, err := os.ReadFile(cfg.GrammarPath)
		if err != nil {
			return nil, fmt.Errorf("reading grammar: %w", err)
		}
		text = string(b)
	}
	g, err := grammar.Parse(text, backup)
	if err != nil {
		return nil, fmt.Errorf("parsing grammar: %w", err)
	}
	for _, d := range g.Diagnostics() {
		logger.Warn("grammar diagnostic", logger.Fields{"message": d})
	}

	ctx := dancetype.NewContext(kind)
	ctx.Verbose = cfg.Verbose
	return &Session{Grammar: g, Ctx: ctx}, nil
}

// LoadFromText is Load without touching the filesystem, used by the
// introspection API where grammar text arrives in a request body.
func LoadFromText(grammarText, backupText, danceType string, verbose dancetype.VerboseFlags) (*Session, error) {
	kind, ok := dancetype.ParseKind(danceType)
	if !ok {
		return nil, fmt.Errorf("unknown dance type %q", danceType)
	}
	var backup *grammar.Grammar
	if backupText != "" {
		var err error
		backup, err = grammar.Parse(backupText, nil)
		if err != nil {
			return nil, fmt.Errorf("parsing backup grammar: %w", err)
		}
	}
	g, err := grammar.Parse(grammarText, backup)
	if err != nil {
		return nil, fmt.Errorf("parsing grammar: %w", err)
	}
	ctx := dancetype.NewContext(kind)
	ctx.Verbose = verbose
	return &Session{Grammar: g, Ctx: ctx}, nil
}

// Result is one phrase's compiled outcome: the Plan tree on success, or
// an Explanation on failure, plus the Stage it was constructed under and
// how long construction took (fed to internal/metrics).
type Result struct {
	Phrase   string
	Stage    *stage.Stage
	Plan     *engine.Plan
	Err      *explain.Explanation
	Duration time.Duration
}

// Compile parses and constructs one top-level call phrase against the
// Session's Grammar/Context, starting from the dance type's canonical
// formation, mirroring original_source/dance/dance.h's top-level
// "parse one phrase, build one Plan" entry point.
func (s *Session) Compile(phrase string) *Result {
	start := time.Now()
	stg := stage.New()
	res := &Result{Phrase: phrase, Stage: stg}

	if s.Ctx.Verbose.Parsing {
		logger.Debug("parsing phrase", logger.Fields{"phrase": phrase, "stage": stg.ID.String()})
	}

	p, err := parser.New(s.Grammar, phrase, nil, false)
	if err != nil {
		res.Err = wrapErr(err, explain.UserError, "lexing %q", phrase)
		res.Duration = time.Since(start)
		return res
	}
	call, err := p.ParseCall()
	if err != nil {
		res.Err = wrapErr(err, explain.UserError, "parsing %q", phrase)
		res.Duration = time.Since(start)
		return res
	}

	plan := engine.NewPlan(s.Grammar, s.Ctx, stg, s.Ctx.Dance.StartingGroup())
	if err := plan.Construct(call); err != nil {
		res.Err = asExplanation(err)
		logger.Error("compile failed", res.Err, logger.Fields{"phrase": phrase, "stage": stg.ID.String()})
	}
	res.Plan = plan
	res.Duration = time.Since(start)
	return res
}

// CompileAll runs Compile over each phrase in order, short-circuiting
// (stopping, not panicking) at the first failure's Result, the way a
// caller string composed of sequential calls acts in the original.
func (s *Session) CompileAll(phrases []string) []*Result {
	results := make([]*Result, 0, len(phrases))
	for _, phrase := range phrases {
		r := s.Compile(phrase)
		results = append(results, r)
		if r.Err != nil {
			break
		}
	}
	return results
}

func asExplanation(err error) *explain.Explanation {
	if e, ok := err.(*explain.Explanation); ok {
		return e
	}
	return explain.New(explain.ProgramBug, "unexpected compile error: %v", err)
}

// wrapErr normalizes a non-Explanation error (parser.ParseError, lexer
// errors) into one, since Wrap itself requires an *Explanation cause.
func wrapErr(err error, kind explain.Kind, format string, args ...any) *explain.Explanation {
	if e, ok := err.(*explain.Explanation); ok {
		return explain.Wrap(e, kind, format, args...)
	}
	return explain.Wrap(explain.New(kind, "%v", err), kind, format, args...)
}
