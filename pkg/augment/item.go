package augment

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/coursedeck/enrich/pkg/course"
	"github.com/coursedeck/enrich/pkg/llm"
	"github.com/coursedeck/enrich/pkg/log"
)

// Completer is the remote call surface the augmenter consumes.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Options configures an Augmenter.
type Options struct {
	// Completer performs remote completions. It may be nil when LocalOnly
	// or DryRun is set; those paths never touch the service.
	Completer Completer

	// LocalOnly applies the heuristic result directly, no remote calls.
	LocalOnly bool

	// DryRun reports intent without calling the service or touching disk.
	DryRun bool

	// Patterns selects course files by name; Ignore excludes matches.
	Patterns []string
	Ignore   []string

	// Console receives per-item and per-file progress output.
	Console *log.Logger
}

// Augmenter fills missing summaries and time estimates.
type Augmenter struct {
	completer Completer
	localOnly bool
	dryRun    bool
	patterns  []string
	ignore    []string
	console   *log.Logger
}

// DefaultPatterns matches the course file encodings the loader understands.
var DefaultPatterns = []string{"*.json", "*.yaml", "*.yml"}

// New creates an augmenter.
func New(opts Options) *Augmenter {
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns
	}
	if opts.Console == nil {
		opts.Console = log.NewDefault()
	}
	return &Augmenter{
		completer: opts.Completer,
		localOnly: opts.LocalOnly,
		dryRun:    opts.DryRun,
		patterns:  opts.Patterns,
		ignore:    opts.Ignore,
		console:   opts.Console,
	}
}

// Item augments a single item in place and reports whether it changed.
// Items with both fields present are untouched. Only the fields that were
// actually missing are applied, so an item missing one field never has the
// other replaced. A failure on the remote path degrades to the heuristic
// result; it never propagates to the caller.
func (a *Augmenter) Item(ctx context.Context, item *course.Item) bool {
	needSummary := item.NeedsSummary()
	needEstimate := item.NeedsEstimate()
	if !needSummary && !needEstimate {
		a.console.LogItemOperation(log.ItemOperation{
			ItemID:    item.ID,
			Title:     item.Title,
			IsSkipped: true,
		})
		return false
	}

	if a.dryRun {
		a.console.LogItemOperation(log.ItemOperation{
			ItemID:    item.ID,
			Title:     item.Title,
			Summary:   needSummary,
			Estimate:  needEstimate,
			IsPlanned: true,
		})
		return false
	}

	result, degraded := a.resolve(ctx, item)

	if needSummary {
		item.Summary = result.Summary
	}
	if needEstimate {
		minutes := result.EstimatedMinutes
		item.EstimatedMinutes = &minutes
	}

	a.console.LogItemOperation(log.ItemOperation{
		ItemID:     item.ID,
		Title:      item.Title,
		Summary:    needSummary,
		Estimate:   needEstimate,
		IsDegraded: degraded,
	})

	return true
}

// resolve produces the augmentation result for an item, degraded reporting
// whether the remote path failed and the heuristic took over.
func (a *Augmenter) resolve(ctx context.Context, item *course.Item) (result Result, degraded bool) {
	if a.localOnly || a.completer == nil {
		return Heuristic(item.Title, item.SourceText()), false
	}

	raw, err := a.completer.Complete(ctx, BuildRequest(item))
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("item", item.ID).
			Msg("completion failed, falling back to heuristic")
		return Heuristic(item.Title, item.SourceText()), true
	}

	return Interpret(raw, item.Title, item.SourceText()), false
}
