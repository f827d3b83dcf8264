// Package analysis checks recorded flap sessions against what the
// orchestrator should have done. Everything here is plain arithmetic on
// the journal.
//
// Key capabilities:
//   - Expected step count from the cyclic vocabulary distance
//   - Overrun of the observed session time over the nominal one
//   - Flip rate via linear regression of completion time on step
//   - Slow flip detection via Z-score
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/journal"
	"github.com/Mr-Dark-debug/flapboard/pkg/timeutil"
)

// Analyzer reads sessions and flips from a journal store.
type Analyzer struct {
	store journal.Store
}

// NewAnalyzer creates an analyzer backed by store.
func NewAnalyzer(store journal.Store) *Analyzer {
	return &Analyzer{store: store}
}

// ============================================================
// Distance
// ============================================================

// Distance returns how many flips take a flap from one token to another
// in vocab, walking forward from the first position of from and stopping at
// the first position of to met on the way. A from outside vocab, such as
// an unset cursor or a snapped unknown token, lands on vocab[0] first. It
// reports false when to is not in vocab.
func Distance(vocab []string, from, to string) (int, bool) {
	if indexOf(vocab, to) < 0 {
		return 0, false
	}
	i, steps := indexOf(vocab, from), 0
	if i < 0 {
		i, steps = 0, 1
	}
	for vocab[i] != to {
		i = (i + 1) % len(vocab)
		steps++
	}
	return steps, true
}

func indexOf(vocab []string, t string) int {
	for i, v := range vocab {
		if v == t {
			return i
		}
	}
	return -1
}

// ============================================================
// Slow Flip Detection
// ============================================================

// SlowFlip identifies a flip that took abnormally long.
type SlowFlip struct {
	Step       int     `json:"step"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	DurationNs int64   `json:"duration_ns"`
	ZScore     float64 `json:"z_score"`
	Severity   string  `json:"severity"` // "low", "medium", "high"
}

// detectSlowFlips computes the Z-score of each completed flip's duration.
// A Z-score above 1.5 is reported; above 2.0 is "medium" and above 3.0
// is "high".
func detectSlowFlips(flips []*journal.Flip) []SlowFlip {
	var done []*journal.Flip
	for _, f := range flips {
		if f.Completed {
			done = append(done, f)
		}
	}
	if len(done) < 2 {
		return nil
	}

	durations := make([]float64, len(done))
	var sum, sumSq float64
	for i, f := range done {
		d := float64(f.DurationNs())
		durations[i] = d
		sum += d
		sumSq += d * d
	}

	n := float64(len(done))
	mean := sum / n
	variance := (sumSq / n) - (mean * mean)
	if variance <= 0 {
		return nil
	}
	stddev := math.Sqrt(variance)

	var slow []SlowFlip
	for i, f := range done {
		z := (durations[i] - mean) / stddev
		if z <= 1.5 {
			continue
		}
		severity := "low"
		if z > 3.0 {
			severity = "high"
		} else if z > 2.0 {
			severity = "medium"
		}
		slow = append(slow, SlowFlip{
			Step:       f.Step,
			From:       f.From,
			To:         f.To,
			DurationNs: f.DurationNs(),
			ZScore:     math.Round(z*100) / 100,
			Severity:   severity,
		})
	}

	sort.Slice(slow, func(i, j int) bool {
		return slow[i].ZScore > slow[j].ZScore
	})
	return slow
}

// ============================================================
// Flip Rate
// ============================================================

// dataPoint is one observation for regression: x is the step number and
// y the completion time in seconds since the session started.
type dataPoint struct {
	x float64
	y float64
}

// linearRegression computes ordinary least squares regression.
// Returns slope (m), intercept (b), and R-squared goodness of fit.
func linearRegression(points []dataPoint) (slope, intercept, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		sumX += p.x
		sumY += p.y
		sumXY += p.x * p.y
		sumX2 += p.x * p.x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for _, p := range points {
		predicted := slope*p.x + intercept
		ssRes += (p.y - predicted) * (p.y - predicted)
		ssTot += (p.y - meanY) * (p.y - meanY)
	}

	if ssTot == 0 {
		rSquared = 1.0
	} else {
		rSquared = 1 - ssRes/ssTot
	}

	return slope, intercept, rSquared
}

// ============================================================
// Session Report
// ============================================================

// SessionReport is the outcome of analysing one session.
type SessionReport struct {
	SessionID   string                `json:"session_id"`
	GeneratedAt string                `json:"generated_at"`
	Session     *journal.Session      `json:"session"`
	Stats       *journal.SessionStats `json:"stats"`

	ExpectedSteps int  `json:"expected_steps"`
	Reachable     bool `json:"reachable"`

	NominalNs  int64   `json:"nominal_ns"`
	ObservedNs int64   `json:"observed_ns"`
	Overrun    float64 `json:"overrun"` // observed / nominal

	SecondsPerFlip float64 `json:"seconds_per_flip"` // regression slope
	Intercept      float64 `json:"intercept"`
	RSquared       float64 `json:"r_squared"`

	SlowFlips []SlowFlip `json:"slow_flips"`
	Warnings  []string   `json:"warnings"`
}

// AnalyzeSession compares a session's flips with the step count and
// timing its vocabulary and duration imply.
func (a *Analyzer) AnalyzeSession(sessionID string) (*SessionReport, error) {
	sess, err := a.store.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	stats, err := a.store.GetSessionStats(sessionID)
	if err != nil {
		return nil, fmt.Errorf("gathering session stats: %w", err)
	}
	flips, err := a.store.QueryFlips(sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying flips: %w", err)
	}

	report := &SessionReport{
		SessionID:   sessionID,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Session:     sess,
		Stats:       stats,
	}

	report.ExpectedSteps, report.Reachable = Distance(sess.Vocabulary, sess.From, sess.Target)
	if sess.Kind == journal.KindSnap {
		report.ExpectedSteps = 0
	}

	report.NominalNs = int64(report.ExpectedSteps) * sess.FlipDurationNs
	if sess.EndTime != nil {
		report.ObservedNs = *sess.EndTime - sess.StartTime
	}
	if report.NominalNs > 0 && report.ObservedNs > 0 {
		report.Overrun = math.Round(float64(report.ObservedNs)/float64(report.NominalNs)*1000) / 1000
	}

	var points []dataPoint
	for _, f := range flips {
		if !f.Completed {
			continue
		}
		points = append(points, dataPoint{
			x: float64(f.Step),
			y: float64(*f.EndTime-sess.StartTime) / 1e9,
		})
	}
	slope, intercept, r2 := linearRegression(points)
	report.SecondsPerFlip = math.Round(slope*10000) / 10000
	report.Intercept = math.Round(intercept*10000) / 10000
	report.RSquared = math.Round(r2*1000) / 1000

	report.SlowFlips = detectSlowFlips(flips)
	report.Warnings = warnings(report)

	return report, nil
}

func warnings(r *SessionReport) []string {
	var out []string
	sess := r.Session

	if sess.Kind == journal.KindAnimated && !r.Reachable {
		out = append(out, fmt.Sprintf("⚠ UNREACHABLE TARGET: %q is not in the vocabulary; "+
			"the flap cycles until the request is replaced.", sess.Target))
	}
	if sess.Status == journal.StatusReached && r.Reachable && sess.Steps != r.ExpectedSteps {
		out = append(out, fmt.Sprintf("⚠ STEP MISMATCH: recorded %d flips, expected %d.",
			sess.Steps, r.ExpectedSteps))
	}
	if r.Overrun > 1.5 {
		out = append(out, fmt.Sprintf("⚠ OVERRUN: session took %.2fx its nominal time. "+
			"The host is likely dropping frames.", r.Overrun))
	}
	if r.Stats != nil && r.Stats.IncompleteFlips > 0 {
		out = append(out, fmt.Sprintf("%d flip(s) were cancelled before completing.",
			r.Stats.IncompleteFlips))
	}
	for _, s := range r.SlowFlips {
		if s.Severity == "high" {
			out = append(out, fmt.Sprintf("⚠ SLOW FLIP: step %d (%s→%s) took %s (Z-score: %.2f).",
				s.Step, s.From, s.To, timeutil.FormatDuration(time.Duration(s.DurationNs)), s.ZScore))
		}
	}
	return out
}

// FormatReport renders a report as markdown.
func FormatReport(report *SessionReport) string {
	var b strings.Builder
	sess := report.Session

	b.WriteString("# Flap Session Report\n\n")
	b.WriteString(fmt.Sprintf("**Session ID:** `%s`\n", report.SessionID))
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Flap | %d |\n", sess.Flap))
	b.WriteString(fmt.Sprintf("| Kind | %s |\n", sess.Kind))
	b.WriteString(fmt.Sprintf("| Status | %s |\n", sess.Status))
	b.WriteString(fmt.Sprintf("| From → Target | %q → %q |\n", sess.From, sess.Target))
	b.WriteString(fmt.Sprintf("| Started | %s |\n", timeutil.FormatTimestampFull(sess.StartTime)))
	b.WriteString(fmt.Sprintf("| Vocabulary Size | %d |\n", len(sess.Vocabulary)))
	if report.Reachable {
		b.WriteString(fmt.Sprintf("| Expected Steps | %d |\n", report.ExpectedSteps))
	} else {
		b.WriteString("| Expected Steps | unreachable |\n")
	}
	b.WriteString(fmt.Sprintf("| Recorded Steps | %d |\n", sess.Steps))
	if report.Stats != nil {
		b.WriteString(fmt.Sprintf("| Completed Flips | %d |\n", report.Stats.CompletedFlips))
		b.WriteString(fmt.Sprintf("| Cancelled Flips | %d |\n", report.Stats.IncompleteFlips))
	}
	b.WriteString("\n")

	if sess.Kind == journal.KindAnimated {
		b.WriteString("## Timing\n\n")
		b.WriteString(fmt.Sprintf("- **Nominal Flip:** %s\n", timeutil.FormatDuration(time.Duration(sess.FlipDurationNs))))
		b.WriteString(fmt.Sprintf("- **Nominal Session:** %s\n", timeutil.FormatDuration(time.Duration(report.NominalNs))))
		if report.ObservedNs > 0 {
			b.WriteString(fmt.Sprintf("- **Observed Session:** %s\n", timeutil.FormatDuration(time.Duration(report.ObservedNs))))
		}
		if report.Overrun > 0 {
			b.WriteString(fmt.Sprintf("- **Overrun:** %.3fx\n", report.Overrun))
		}
		b.WriteString(fmt.Sprintf("- **Flip Rate:** %.4f s/flip (R² %.3f)\n", report.SecondsPerFlip, report.RSquared))
		b.WriteString("\n")
	}

	if len(report.SlowFlips) > 0 {
		b.WriteString("## Slow Flips\n\n")
		b.WriteString("| Step | Flip | Duration | Z-Score | Severity |\n")
		b.WriteString("|------|------|----------|---------|----------|\n")
		for _, s := range report.SlowFlips {
			b.WriteString(fmt.Sprintf("| %d | %s→%s | %s | %.2f | %s |\n",
				s.Step, s.From, s.To, timeutil.FormatDuration(time.Duration(s.DurationNs)), s.ZScore, s.Severity))
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	return b.String()
}
