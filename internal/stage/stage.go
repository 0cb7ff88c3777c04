// Package stage implements spec.md's Stage: "Arena that owns all Terms,
// Groups, Plans, Steps, Tiles, Intervals, Motions, and Explanations
// produced while constructing a single top-level call." Go's garbage
// collector already manages the memory those objects occupy, so this
// arena does not allocate — it is a per-call bookkeeping registry:
// assigning a stable session/call ID, counting objects for diagnostics,
// and collecting failure messages. It keeps no references to the
// Plans, Steps and Tiles it counts and offers no invalidation hooks.
// This mirrors
// the Conceptual-Machines-magda-api teacher's request-scoped context
// object (internal/api/router.go's use of gin.Context to carry a
// per-request session) more than it mirrors the original C++ arena,
// which existed to solve manual memory lifetime, not identity.
package stage

import "github.com/google/uuid"

// Stage is constructed once per top-level call phrase and discarded
// once that call's Plan tree is fully built (or fails).
type Stage struct {
	ID uuid.UUID

	planCount  int
	stepCount  int
	tileCount  int
	termCount  int
	failures   []string
}

// New creates a Stage with a fresh random ID.
func New() *Stage {
	return &Stage{ID: uuid.New()}
}

func (s *Stage) NextPlanID() int { s.planCount++; return s.planCount }
func (s *Stage) NextStepID() int { s.stepCount++; return s.stepCount }
func (s *Stage) NextTileID() int { s.tileCount++; return s.tileCount }

// Track records a constructed Term for diagnostics (object-count
// reporting in verbose mode); it does not retain a reference, since Go
// values are reclaimed by the garbage collector once unreachable.
func (s *Stage) Track() { s.termCount++ }

func (s *Stage) RecordFailure(msg string) { s.failures = append(s.failures, msg) }
func (s *Stage) Failures() []string       { return s.failures }

// Counts returns a snapshot for observability/metrics reporting.
func (s *Stage) Counts() (plans, steps, tiles, terms int) {
	return s.planCount, s.stepCount, s.tileCount, s.termCount
}
