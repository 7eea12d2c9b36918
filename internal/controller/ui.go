// Package controller provides output adapters for displaying probe results.
package controller

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "probe.dev/pkg/probe/internal/model"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

// Available output formats.
const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a format name.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch format := OutputFormat(value); format {
	case FormatTable, FormatJSON, FormatYAML:
		return format, nil
	case "":
		return FormatTable, nil
	}

	return "", fmt.Errorf("unsupported output format %q (want table, json or yaml)", value)
}

// DisplayOption is a functional option for the Display methods.
type DisplayOption func(*DisplayConfig)

// DisplayConfig holds per-call display settings.
type DisplayConfig struct {
	format OutputFormat
}

// WithFormat selects the output format.
func WithFormat(format OutputFormat) DisplayOption {
	return func(c *DisplayConfig) {
		c.format = format
	}
}

func newDisplayConfig(options []DisplayOption) DisplayConfig {
	config := DisplayConfig{format: FormatTable}
	for _, option := range options {
		option(&config)
	}

	return config
}

// UI defines the interface for displaying command results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplayTargets(ctx context.Context, targets []m.DebugTarget, options ...DisplayOption) error
	DisplaySourceMap(ctx context.Context, entries []m.SourceMapEntry, options ...DisplayOption) error
}

// NewUI returns the TUI when attached to a terminal and the SimpleUI otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	simple := NewSimpleUI(cmd)
	if isTTY {
		return NewTUI(cmd.OutOrStdout(), simple)
	}

	return simple
}

// IsTTY reports whether f is a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
