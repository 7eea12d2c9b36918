package domain

import (
	"context"
	"log/slog"
	"strings"

	m "probe.dev/pkg/probe/internal/model"
)

const (
	// DebugCommand is the command identifier attached to every debug lens.
	DebugCommand = "Probe.Debug"
	// DebugTitle is the label shown by the editor.
	DebugTitle = "Debug"
)

// LensProvider is the host's two-phase annotation capability.
type LensProvider interface {
	// ProvideCodeLenses computes the lenses for doc. applicable is false when
	// the document is not a test file; lenses is then nil.
	ProvideCodeLenses(ctx context.Context, doc m.Document) (lenses []m.CodeLens, applicable bool, err error)
	// ResolveCodeLens completes a lens returned by ProvideCodeLenses.
	ResolveCodeLens(ctx context.Context, lens m.CodeLens) (m.CodeLens, error)
}

// DebugLensAdapter puts a "Debug" lens on every debug target of a test file
// and tells subscribers when lenses need recomputing.
type DebugLensAdapter struct {
	selector Selector
	changes  *Emitter
}

var _ LensProvider = (*DebugLensAdapter)(nil)

// NewDebugLensAdapter creates an adapter using selector for every request.
func NewDebugLensAdapter(selector Selector) *DebugLensAdapter {
	return &DebugLensAdapter{
		selector: selector,
		changes:  NewEmitter(),
	}
}

// IsTestFile reports whether filename follows the Solidity test file convention.
func IsTestFile(filename string) bool {
	return strings.Contains(filename, m.TestFileMarker)
}

// ProvideCodeLenses implements LensProvider.
func (a *DebugLensAdapter) ProvideCodeLenses(ctx context.Context, doc m.Document) ([]m.CodeLens, bool, error) {
	if !IsTestFile(doc.Filename) {
		return nil, false, nil
	}

	slog.Debug("providing code lenses", "file", doc.Filename, "version", doc.Version)

	functions, err := a.selector.SelectDebugTargets(ctx, doc.Filename, doc.Text)
	if err != nil {
		return nil, true, err
	}

	lenses := make([]m.CodeLens, 0, len(functions))
	for _, fn := range functions {
		lenses = append(lenses, ToCodeLens(fn))
	}

	slog.Debug("provided code lenses", "file", doc.Filename, "count", len(lenses))

	return lenses, true, nil
}

// ResolveCodeLens implements LensProvider. Lenses are complete when
// provided, so the input is returned unchanged.
func (a *DebugLensAdapter) ResolveCodeLens(_ context.Context, lens m.CodeLens) (m.CodeLens, error) {
	return lens, nil
}

// OnDidChangeCodeLenses registers fn to run whenever lenses should be recomputed.
func (a *DebugLensAdapter) OnDidChangeCodeLenses(fn func()) (unsubscribe func()) {
	return a.changes.Subscribe(fn)
}

// ConfigurationChanged signals subscribers to recompute lenses.
func (a *DebugLensAdapter) ConfigurationChanged() {
	slog.Debug("configuration changed, requesting lens refresh")
	a.changes.Fire()
}

// Close disposes every subscription.
func (a *DebugLensAdapter) Close() {
	slog.Debug("disposing lens subscriptions", "listeners", a.changes.Len())
	a.changes.Dispose()
}

// ToCodeLens maps a function declaration to its debug lens. Source lines are
// 1-based and become 0-based; columns are kept as they are.
func ToCodeLens(fn *m.FunctionDefinition) m.CodeLens {
	loc := fn.Loc

	return m.CodeLens{
		Range: m.Range{
			Start: m.LensPosition{Line: loc.Start.Line - 1, Character: loc.Start.Column},
			End:   m.LensPosition{Line: loc.End.Line - 1, Character: loc.End.Column},
		},
		Command: &m.Command{
			Title:     DebugTitle,
			Command:   DebugCommand,
			Arguments: []any{fn},
		},
	}
}
