package api

import (
	"net/http"
	"os"
	"time"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/config"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/dancetype"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/metrics"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/session"
	"github.com/gin-gonic/gin"
)

// compileHandler serves POST /compile, grounded on the teacher's
// handlers.MagdaHandler.TestDSL (grammar/DSL text in, structured result
// out), generalized from one fixed DSL to an arbitrary grammar + dance
// type supplied per request.
type compileHandler struct {
	cfg     *config.Config
	metrics *metrics.Client
}

func newCompileHandler(cfg *config.Config, m *metrics.Client) *compileHandler {
	return &compileHandler{cfg: cfg, metrics: m}
}

type compileRequest struct {
	Grammar       string   `json:"grammar"`
	GrammarPath   string   `json:"grammar_path"`
	BackupGrammar string   `json:"backup_grammar"`
	DanceType     string   `json:"dance_type"`
	Phrases       []string `json:"phrases"`
	Verbose       []string `json:"verbose"`
}

type compileResponse struct {
	Phrase      string     `json:"phrase"`
	DurationMs  int64      `json:"duration_ms"`
	Plan        *planView  `json:"plan,omitempty"`
	Error       string     `json:"error,omitempty"`
}

func (h *compileHandler) Compile(c *gin.Context) {
	var req compileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	danceType := req.DanceType
	if danceType == "" {
		danceType = h.cfg.DanceType
	}

	grammarText := req.Grammar
	if grammarText == "" && req.GrammarPath != "" {
		b, err := os.ReadFile(req.GrammarPath)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reading grammar_path: " + err.Error()})
			return
		}
		grammarText = string(b)
	}
	if grammarText == "" {
		b, err := os.ReadFile(h.cfg.GrammarPath)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no grammar supplied and default unreadable: " + err.Error()})
			return
		}
		grammarText = string(b)
	}

	verbose := dancetype.VerboseFlags{}
	for _, v := range req.Verbose {
		switch v {
		case "parsing":
			verbose.Parsing = true
		case "matching":
			verbose.Matching = true
		case "breathing":
			verbose.Breathing = true
		}
	}

	sess, err := session.LoadFromText(grammarText, req.BackupGrammar, danceType, verbose)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	responses := make([]compileResponse, 0, len(req.Phrases))
	for _, phrase := range req.Phrases {
		start := time.Now()
		r := sess.Compile(phrase)
		duration := time.Since(start)
		resp := compileResponse{Phrase: phrase, DurationMs: duration.Milliseconds(), Plan: viewPlan(r.Plan)}
		success := r.Err == nil
		if r.Err != nil {
			resp.Error = r.Err.Error()
		}
		if h.metrics != nil {
			h.metrics.RecordCompile(danceType, success, duration)
		}
		responses = append(responses, resp)
		if !success {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": responses})
}

// healthCheck serves GET /healthz.
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// metricsHandler serves GET /metrics: a JSON snapshot rather than the
// Prometheus text format, carrying only the build version and the
// current time as a lightweight liveness signal, not a scrape target.
// The compile counters themselves live in CloudWatch/Sentry (spec §5);
// this endpoint does not read them back.
type metricsHandler struct {
	version string
}

func newMetricsHandler(version string) *metricsHandler {
	return &metricsHandler{version: version}
}

func (h *metricsHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": h.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
