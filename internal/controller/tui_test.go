package controller

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "probe.dev/pkg/probe/internal/model"
)

func newTestPager(rows int) pagerModel {
	tableRows := make([]table.Row, 0, rows)
	for i := range rows {
		tableRows = append(tableRows, table.Row{fmt.Sprintf("row-%d", i)})
	}

	return newPagerModel("Probe", "summary", []table.Column{{Title: "Name", Width: 10}}, tableRows)
}

func TestPagerModel_NeedsPagination(t *testing.T) {
	assert.False(t, newTestPager(100).needsPagination(), "unknown height never paginates")
	assert.False(t, newTestPager(5).resize(80, 40).needsPagination())
	assert.True(t, newTestPager(100).resize(80, 40).needsPagination())
}

func TestPagerModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		model, cmd := newTestPager(3).Update(key)
		require.NotNil(t, cmd, key.String())

		pager, ok := model.(pagerModel)
		require.True(t, ok)
		assert.True(t, pager.quitting)
		assert.Empty(t, pager.View())
	}
}

func TestPagerModel_ScrollAndResize(t *testing.T) {
	var model tea.Model = newTestPager(50).resize(80, 20)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})

	pager, ok := model.(pagerModel)
	require.True(t, ok)
	assert.Equal(t, 2, pager.table.Cursor())
	assert.Contains(t, pager.View(), "row 3/50")

	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	pager, ok = model.(pagerModel)
	require.True(t, ok)
	assert.Equal(t, 30, pager.height)
	assert.Equal(t, 100, pager.width)
}

func TestTUI_DelegatesShortAndStructuredOutput(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)

	ui := NewTUI(out, NewSimpleUI(cmd))

	require.NoError(t, ui.DisplayTargets(context.Background(), sampleTargets()))
	assert.Contains(t, out.String(), "testIncrement")

	out.Reset()

	require.NoError(t, ui.DisplaySourceMap(context.Background(), []m.SourceMapEntry{{Jump: "-"}}, WithFormat(FormatYAML)))
	assert.Contains(t, out.String(), "jump:")
}
