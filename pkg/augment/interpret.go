// Package augment implements the augmentation pipeline: interpreting
// service responses, deciding per item what to fill in, mutating course
// files safely and driving a whole directory.
package augment

import (
	"encoding/json"
	"strings"

	"github.com/coursedeck/enrich/pkg/course"
)

// Result pairs a summary with a duration estimate. It is consumed
// immediately by the item augmenter and never persisted on its own.
type Result struct {
	Summary          string
	EstimatedMinutes int
}

// HeuristicMinutes is the fixed estimate of the network-free path.
const HeuristicMinutes = 15

// The two-tier estimate rule: [validMin, validMax] is the validity band,
// [clampMin, clampMax] the clamp target. They are deliberately distinct
// bands, not one merged range.
const (
	validMin = 1
	validMax = 1000
	clampMin = 5
	clampMax = 120
)

// Interpret extracts a Result from the raw service response. It never
// fails: any response that does not yield a usable two-field object falls
// through to the heuristic derived from the caller-supplied title and
// description.
func Interpret(raw, fallbackTitle, fallbackDescription string) Result {
	// The service is allowed to wrap the JSON payload in prose. Everything
	// before the first brace is discarded; trailing text is tolerated by
	// decoding a single object off the front.
	candidate := raw
	if idx := strings.Index(raw, "{"); idx >= 0 {
		candidate = raw[idx:]
	}

	var parsed struct {
		Summary          string `json:"summary"`
		EstimatedMinutes int    `json:"estimated_minutes"`
	}
	if err := json.NewDecoder(strings.NewReader(candidate)).Decode(&parsed); err != nil {
		return Heuristic(fallbackTitle, fallbackDescription)
	}

	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" || parsed.EstimatedMinutes == 0 {
		// An empty summary or a falsy estimate never reaches the clamp.
		return Heuristic(fallbackTitle, fallbackDescription)
	}

	return Result{
		Summary:          truncate(summary, course.MaxSummaryLen),
		EstimatedMinutes: clampEstimate(parsed.EstimatedMinutes),
	}
}

// Heuristic derives a deterministic result from existing text: the first
// line of the description when non-empty, otherwise of the title, truncated
// to the summary bound, with a fixed estimate.
func Heuristic(title, description string) Result {
	source := description
	if strings.TrimSpace(source) == "" {
		source = title
	}
	summary := firstLine(source)
	if summary == "" {
		summary = firstLine(title)
	}
	return Result{
		Summary:          truncate(summary, course.MaxSummaryLen),
		EstimatedMinutes: HeuristicMinutes,
	}
}

// clampEstimate applies the two-tier rule. Values outside the validity band
// are forced to the nearest bound of the clamp target; valid values are
// then clamped into the target band.
func clampEstimate(minutes int) int {
	if minutes < validMin || minutes > validMax {
		if minutes > clampMax {
			return clampMax
		}
		return clampMin
	}
	if minutes < clampMin {
		return clampMin
	}
	if minutes > clampMax {
		return clampMax
	}
	return minutes
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
