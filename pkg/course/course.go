// Package course defines the persisted course document model and the
// load/save primitives used by the augmentation pipeline.
package course

import "strings"

// MaxSummaryLen is the upper bound for an item summary, in runes.
const MaxSummaryLen = 140

// Course is a persisted course document: an identifier, a title, a
// description and an ordered list of items.
type Course struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Items       []Item `json:"items" yaml:"items"`
}

// Item is a single learning unit within a course. Summary and
// EstimatedMinutes are the two augmentable fields: a summary counts as
// missing when it is empty after trimming, an estimate only when the field
// is absent entirely.
type Item struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`

	Summary          string `json:"summary,omitempty" yaml:"summary,omitempty"`
	EstimatedMinutes *int   `json:"estimated_minutes,omitempty" yaml:"estimated_minutes,omitempty"`
}

// NeedsSummary reports whether the item has no usable summary.
func (it *Item) NeedsSummary() bool {
	return strings.TrimSpace(it.Summary) == ""
}

// NeedsEstimate reports whether the item has no time estimate.
func (it *Item) NeedsEstimate() bool {
	return it.EstimatedMinutes == nil
}

// SourceText returns the text augmentation should derive from: the
// description when present, otherwise the notes, otherwise the title.
func (it *Item) SourceText() string {
	if strings.TrimSpace(it.Description) != "" {
		return it.Description
	}
	if strings.TrimSpace(it.Notes) != "" {
		return it.Notes
	}
	return ""
}
