// Package domain contains the debug-target selection and lens logic.
package domain

import (
	"context"
	"fmt"

	"probe.dev/pkg/probe/internal/adapter"
	m "probe.dev/pkg/probe/internal/model"
)

// Selector finds the functions a debug lens can be attached to.
type Selector interface {
	// SelectDebugTargets parses text and returns the qualifying functions in
	// document order. Parse failures are returned as *adapter.ParseError.
	SelectDebugTargets(ctx context.Context, filename string, text string) ([]*m.FunctionDefinition, error)
}

type selector struct {
	adapter.SolidityFileAdapter
}

// NewSelector creates a Selector parsing with the provided adapter.
func NewSelector(solidityAdapter adapter.SolidityFileAdapter) Selector {
	return &selector{SolidityFileAdapter: solidityAdapter}
}

func (s *selector) SelectDebugTargets(ctx context.Context, filename string, text string) ([]*m.FunctionDefinition, error) {
	if s.SolidityFileAdapter == nil {
		return nil, fmt.Errorf("missing solidity adapter")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unit, err := s.Parse(ctx, filename, []byte(text))
	if err != nil {
		return nil, err
	}

	// the text may be stale by now
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return CollectDebugTargets(unit), nil
}

// CollectDebugTargets returns the functions declared directly inside
// contracts of kind "contract" that are externally callable without
// arguments.
func CollectDebugTargets(unit *m.SourceUnit) []*m.FunctionDefinition {
	functions := make([]*m.FunctionDefinition, 0)

	for _, contract := range unit.Contracts() {
		if !isDebuggableContract(contract) {
			continue
		}

		adapter.Visit(contract, adapter.Visitor{
			FunctionDefinition: func(fn *m.FunctionDefinition) {
				if IsDebugTarget(fn) {
					functions = append(functions, fn)
				}
			},
		})
	}

	return functions
}

func isDebuggableContract(contract *m.ContractDefinition) bool {
	return contract.Kind == m.ContractKindContract
}

// IsDebugTarget reports whether fn is externally visible and takes no parameters.
func IsDebugTarget(fn *m.FunctionDefinition) bool {
	switch fn.Visibility {
	case m.VisibilityExternal, m.VisibilityPublic, m.VisibilityDefault:
		return len(fn.Parameters) == 0
	}

	return false
}
