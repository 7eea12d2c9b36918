package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	m "probe.dev/pkg/probe/internal/model"
)

// SimpleUI implements UI by writing to the cobra command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// targetRow is the serialised form of a debug target.
type targetRow struct {
	File        string       `json:"file" yaml:"file"`
	Hash        string       `json:"hash,omitempty" yaml:"hash,omitempty"`
	Contract    string       `json:"contract" yaml:"contract"`
	Function    string       `json:"function" yaml:"function"`
	Visibility  m.Visibility `json:"visibility" yaml:"visibility"`
	StartLine   int          `json:"startLine" yaml:"startLine"`
	StartColumn int          `json:"startColumn" yaml:"startColumn"`
	EndLine     int          `json:"endLine" yaml:"endLine"`
	EndColumn   int          `json:"endColumn" yaml:"endColumn"`
}

func buildTargetRows(targets []m.DebugTarget) []targetRow {
	rows := make([]targetRow, 0, len(targets))

	for _, target := range targets {
		fn := target.Function
		rows = append(rows, targetRow{
			File:        string(target.Source.ShortPath),
			Hash:        target.Source.Hash,
			Contract:    fn.Contract,
			Function:    fn.DisplayName(),
			Visibility:  fn.Visibility,
			StartLine:   fn.Loc.Start.Line,
			StartColumn: fn.Loc.Start.Column,
			EndLine:     fn.Loc.End.Line,
			EndColumn:   fn.Loc.End.Column,
		})
	}

	return rows
}

// DisplayTargets prints the debug targets in the requested format.
func (s *SimpleUI) DisplayTargets(ctx context.Context, targets []m.DebugTarget, options ...DisplayOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := newDisplayConfig(options)
	rows := buildTargetRows(targets)

	switch config.format {
	case FormatJSON:
		return s.writeJSON(rows)
	case FormatYAML:
		return s.writeYAML(rows)
	}

	return s.outPrintf("%s", renderTargetsTable(rows))
}

func countFiles(rows []targetRow) int {
	files := make(map[string]struct{})
	for _, row := range rows {
		files[row.File] = struct{}{}
	}

	return len(files)
}

func renderTargetsTable(rows []targetRow) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Contract", "Function", "Visibility", "Lines"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT,
	})

	for _, row := range rows {
		table.Append([]string{
			row.File,
			row.Contract,
			row.Function,
			string(row.Visibility),
			fmt.Sprintf("%d-%d", row.StartLine, row.EndLine),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %s", humanize.Comma(int64(countFiles(rows)))),
		"", "", "",
		humanize.Comma(int64(len(rows))),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplaySourceMap prints decoded source map entries.
func (s *SimpleUI) DisplaySourceMap(ctx context.Context, entries []m.SourceMapEntry, options ...DisplayOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := newDisplayConfig(options)

	switch config.format {
	case FormatJSON:
		return s.writeJSON(entries)
	case FormatYAML:
		return s.writeYAML(entries)
	}

	return s.outPrintf("%s", renderSourceMapTable(entries))
}

func renderSourceMapTable(entries []m.SourceMapEntry) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"#", "Offset", "Length", "File", "Jump", "Modifier", "Position"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, entry := range entries {
		position := ""
		if entry.Position != nil {
			position = fmt.Sprintf("%d:%d", entry.Position.Line, entry.Position.Column)
		}

		table.Append([]string{
			strconv.Itoa(entry.Index),
			strconv.Itoa(entry.Offset),
			strconv.Itoa(entry.Length),
			strconv.Itoa(entry.File),
			entry.Jump,
			strconv.Itoa(entry.ModifierDepth),
			position,
		})
	}

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) writeJSON(value any) error {
	encoder := json.NewEncoder(s.cmd.OutOrStdout())
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}

func (s *SimpleUI) writeYAML(value any) error {
	encoder := yaml.NewEncoder(s.cmd.OutOrStdout())
	encoder.SetIndent(2)

	if err := encoder.Encode(value); err != nil {
		return err
	}

	return encoder.Close()
}

// outPrintf writes formatted output to the underlying cobra command's stdout.
func (s *SimpleUI) outPrintf(format string, args ...any) error {
	_, err := fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
	return err
}
