package log

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogger_LogItemOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	logger.LogItemOperation(ItemOperation{
		ItemID:   "lesson-1",
		Title:    "Hello World",
		Summary:  true,
		Estimate: true,
	})

	out := buf.String()
	assert.Contains(t, out, "lesson-1")
	assert.Contains(t, out, "Hello World")
	assert.Contains(t, out, "summary, estimate")
}

func TestLogger_FormatSymbols(t *testing.T) {
	tests := []struct {
		name string
		op   ItemOperation
		want string
	}{
		{name: "applied", op: ItemOperation{ItemID: "i"}, want: "+"},
		{name: "planned", op: ItemOperation{ItemID: "i", IsPlanned: true}, want: "?"},
		{name: "degraded", op: ItemOperation{ItemID: "i", IsDegraded: true}, want: "~"},
		{name: "skipped", op: ItemOperation{ItemID: "i", IsSkipped: true}, want: "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, zerolog.Disabled)
			logger.LogItemOperation(tt.op)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestLogger_PlannedCount(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	assert.Zero(t, logger.PlannedCount())

	logger.LogItemOperation(ItemOperation{ItemID: "a", IsPlanned: true})
	logger.LogItemOperation(ItemOperation{ItemID: "b"})
	logger.LogItemOperation(ItemOperation{ItemID: "c", IsPlanned: true})

	assert.Equal(t, 2, logger.PlannedCount())
}

func TestLogger_Header(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.Disabled)

	logger.Header("augmenting course files in ./courses")

	out := buf.String()
	assert.Contains(t, out, "enrich")
	assert.Contains(t, out, "augmenting course files in ./courses")
}
