// Package assess runs one-shot structured assessments against the
// decision-support service.
//
// The runner is stateless across invocations: starting a new assessment
// discards the previous result, and a failure clears any result so the UI
// never shows a stale answer beside an error banner.
package assess

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/oncoref/oncoref/internal/gateway"
)

// Advisory top-k bounds; the service is the authority on enforcement.
const (
	MinTopK = 1
	MaxTopK = 20
)

// Phase is the runner's position in Idle → Running → (Done | Failed).
type Phase int

// Runner phases.
const (
	Idle Phase = iota
	Running
	Done
	Failed
)

// Badge classifies an assessment string for display.
type Badge int

// Badge classes, checked in precedence order: urgent before unclear,
// everything else routine.
const (
	BadgeRoutine Badge = iota
	BadgeUnclear
	BadgeUrgent
)

func (b Badge) String() string {
	switch b {
	case BadgeUrgent:
		return "urgent"
	case BadgeUnclear:
		return "unclear"
	default:
		return "routine"
	}
}

// Classify maps an assessment string to its badge. Case-insensitive
// substring match; "urgent" wins over "unclear" when both appear.
func Classify(assessment string) Badge {
	a := strings.ToLower(assessment)
	switch {
	case strings.Contains(a, "urgent"):
		return BadgeUrgent
	case strings.Contains(a, "unclear"):
		return BadgeUnclear
	default:
		return BadgeRoutine
	}
}

// FormatConfidence renders a confidence value as a whole percentage,
// clamped to [0,1]. A missing confidence renders as an em dash.
func FormatConfidence(c *float64) string {
	if c == nil {
		return "—"
	}
	v := math.Min(math.Max(*c, 0), 1)
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

// ClampTopK coerces top-k into the advisory range.
func ClampTopK(topK int) int {
	if topK < MinTopK {
		return MinTopK
	}
	if topK > MaxTopK {
		return MaxTopK
	}
	return topK
}

// Runner holds the result of at most one assessment.
// Not safe for concurrent use; all calls happen on the event loop.
type Runner struct {
	client *gateway.Client

	phase  Phase
	result *gateway.AssessResult
	errMsg string
}

// NewRunner creates a runner backed by the given gateway client.
func NewRunner(client *gateway.Client) *Runner {
	return &Runner{client: client}
}

// Run performs one assessment. The prior result is discarded before the
// call is issued; on failure the runner holds only the error message.
// patient_id is trimmed before transmission.
func (r *Runner) Run(ctx context.Context, patientID string, topK int) (*gateway.AssessResult, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		err := fmt.Errorf("patient ID is empty")
		r.Fail(err.Error())
		return nil, err
	}

	r.Start()
	res, err := r.client.Assess(ctx, patientID, ClampTopK(topK))
	if err != nil {
		r.Fail(err.Error())
		return nil, err
	}
	r.Finish(res)
	return res, nil
}

// Start discards any prior result and marks the runner as running.
func (r *Runner) Start() {
	r.phase = Running
	r.result = nil
	r.errMsg = ""
}

// Finish records a successful result.
func (r *Runner) Finish(res *gateway.AssessResult) {
	r.phase = Done
	r.result = res
	r.errMsg = ""
}

// Fail records a failure, clearing any in-progress result.
func (r *Runner) Fail(msg string) {
	r.phase = Failed
	r.result = nil
	r.errMsg = msg
}

// Phase returns the runner's current phase.
func (r *Runner) Phase() Phase {
	return r.phase
}

// Result returns the latest successful result, or nil.
func (r *Runner) Result() *gateway.AssessResult {
	return r.result
}

// Err returns the latest failure message, or "".
func (r *Runner) Err() string {
	return r.errMsg
}
