// Copyright 2025 coursedeck LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	itemIndent = 4  // spaces to indent item entries
	idWidth    = 24 // base width for item identifiers
	fieldWidth = 20 // width for the field summary column
)

// 🎯 ItemOperation represents a per-item augmentation outcome for logging
type ItemOperation struct {
	ItemID     string // item identifier
	Title      string // item title
	Summary    bool   // whether the summary field was (or would be) filled
	Estimate   bool   // whether the estimate field was (or would be) filled
	IsPlanned  bool   // dry-run: reported intent only
	IsDegraded bool   // remote path failed, heuristic result applied
	IsSkipped  bool   // nothing missing, item untouched
}

// 📦 FileOperation represents a per-file outcome for logging
type FileOperation struct {
	Path      string // course file path
	IsWritten bool   // backup created and file replaced
	IsPlanned bool   // dry-run, nothing touched
	IsFailed  bool   // file-level error, skipped
	Err       error  // the error when IsFailed
}

// 🎯 Logger handles console output alongside structured zerolog logging
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	operations []ItemOperation
}

// 🏭 New creates a new console logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🏭 NewDefault creates a logger writing to stderr at info level
func NewDefault() *Logger {
	return New(os.Stderr, zerolog.InfoLevel)
}

// 📝 formatItemOperation formats an item operation for display
func (l *Logger) formatItemOperation(op ItemOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsSkipped:
		symbol = '-'
		symbolColor = color.Faint
	case op.IsPlanned:
		symbol = '?'
		symbolColor = color.FgYellow
	case op.IsDegraded:
		symbol = '~'
		symbolColor = color.FgMagenta
	default:
		symbol = '+'
		symbolColor = color.FgGreen
	}

	fields := ""
	switch {
	case op.Summary && op.Estimate:
		fields = "summary, estimate"
	case op.Summary:
		fields = "summary"
	case op.Estimate:
		fields = "estimate"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", itemIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", idWidth, op.ItemID),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", fieldWidth, fields)),
		op.Title)
}

// 📝 LogItemOperation logs a per-item augmentation outcome
func (l *Logger) LogItemOperation(op ItemOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatItemOperation(op))

	l.zlog.Info().
		Str("item", op.ItemID).
		Str("title", op.Title).
		Bool("summary", op.Summary).
		Bool("estimate", op.Estimate).
		Bool("planned", op.IsPlanned).
		Bool("degraded", op.IsDegraded).
		Msg("item operation")
}

// 📝 StartFile prints the per-file header
func (l *Logger) StartFile(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(path))

	l.zlog.Info().Str("path", path).Msg("processing course file")
}

// 📝 LogFileOperation logs a per-file outcome
func (l *Logger) LogFileOperation(op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case op.IsFailed:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "✗"}).Println(op.Path)
		if op.Err != nil {
			pterm.Error.Println(op.Err)
		}
		l.zlog.Error().Err(op.Err).Str("path", op.Path).Msg("course file failed")
	case op.IsWritten:
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✓"}).Println(op.Path)
		l.zlog.Info().Str("path", op.Path).Msg("course file written")
	case op.IsPlanned:
		pterm.Info.WithPrefix(pterm.Prefix{Text: "…"}).Println(op.Path + " (dry-run)")
		l.zlog.Info().Str("path", op.Path).Msg("course file planned")
	default:
		l.zlog.Debug().Str("path", op.Path).Msg("course file unchanged")
	}
}

// 📝 Header logs a run header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("enrich")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📊 LogRunSummary prints the end-of-run batch summary
func (l *Logger) LogRunSummary(files, written, planned, failed int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf("%d files processed, %d written, %d planned, %d failed",
		files, written, planned, failed)
	if failed > 0 {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠"}).Println(msg)
	} else {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(msg)
	}

	l.zlog.Info().
		Int("files", files).
		Int("written", written).
		Int("planned", planned).
		Int("failed", failed).
		Msg("run complete")
}

// 🔢 PlannedCount returns how many item intents were reported so far
func (l *Logger) PlannedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, op := range l.operations {
		if op.IsPlanned {
			count++
		}
	}
	return count
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}
