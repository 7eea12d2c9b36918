package adapter

import (
	"context"
	"log/slog"

	m "probe.dev/pkg/probe/internal/model"
)

// SolidityFileAdapter encapsulates Solidity parsing so the domain layer can
// focus on selecting declarations while the grammar lives in an
// infrastructure component.
type SolidityFileAdapter interface {
	// Parse builds the source unit for the provided filename/source pair.
	// Malformed source returns a *ParseError.
	Parse(ctx context.Context, filename string, src []byte) (*m.SourceUnit, error)
}

// LocalSolidityFileAdapter provides a concrete SolidityFileAdapter backed by
// the generated solgo Solidity grammar.
type LocalSolidityFileAdapter struct{}

// NewLocalSolidityFileAdapter constructs a LocalSolidityFileAdapter.
func NewLocalSolidityFileAdapter() *LocalSolidityFileAdapter {
	return &LocalSolidityFileAdapter{}
}

// Parse runs the grammar over src and maps the tree onto the model.
func (a *LocalSolidityFileAdapter) Parse(ctx context.Context, filename string, src []byte) (*m.SourceUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unit, err := parseSource(filename, string(src))
	if err != nil {
		slog.Debug("parse failed", "file", filename, "error", err)
		return nil, err
	}

	slog.Debug("parsed source unit", "file", filename, "nodes", len(unit.Children))

	return unit, nil
}

// Visitor holds per-node-kind callbacks for Visit. A ContractDefinition
// callback returning false stops Visit from descending into that contract.
type Visitor struct {
	ContractDefinition func(contract *m.ContractDefinition) bool
	FunctionDefinition func(fn *m.FunctionDefinition)
}

// Visit walks node and its descendants in document order.
func Visit(node m.Node, v Visitor) {
	switch n := node.(type) {
	case *m.SourceUnit:
		for _, child := range n.Children {
			Visit(child, v)
		}
	case *m.ContractDefinition:
		if v.ContractDefinition != nil && !v.ContractDefinition(n) {
			return
		}

		for _, sub := range n.SubNodes {
			Visit(sub, v)
		}
	case *m.FunctionDefinition:
		if v.FunctionDefinition != nil {
			v.FunctionDefinition(n)
		}
	}
}
