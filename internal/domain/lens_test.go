package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"probe.dev/pkg/probe/internal/adapter"
	m "probe.dev/pkg/probe/internal/model"
)

const counterSource = `pragma solidity ^0.8.13;

contract CounterTest {
    function setUp() public {}

    function testIncrement() external {
        counter.increment();
    }

    function testFuzz(uint256 x) public {}
}
`

func newTestLensAdapter() *DebugLensAdapter {
	return NewDebugLensAdapter(newTestSelector())
}

func TestIsTestFile(t *testing.T) {
	assert.True(t, IsTestFile("/repo/test/Counter.t.sol"))
	assert.True(t, IsTestFile("Counter.t.sol"))
	assert.True(t, IsTestFile("weird.t.sol.bak"))
	assert.False(t, IsTestFile("/repo/src/Counter.sol"))
	assert.False(t, IsTestFile("Counter.ts"))
}

func TestProvideCodeLenses_NotApplicable(t *testing.T) {
	lenses, applicable, err := newTestLensAdapter().ProvideCodeLenses(context.Background(), m.Document{
		Filename: "/repo/src/Counter.sol",
		Text:     counterSource,
	})

	require.NoError(t, err)
	assert.False(t, applicable)
	assert.Nil(t, lenses)
}

func TestProvideCodeLenses_TestFile(t *testing.T) {
	lenses, applicable, err := newTestLensAdapter().ProvideCodeLenses(context.Background(), m.Document{
		Filename: "/repo/test/Counter.t.sol",
		Text:     counterSource,
	})

	require.NoError(t, err)
	require.True(t, applicable)
	require.Len(t, lenses, 2)

	setUp := lenses[0]
	assert.Equal(t, m.Range{
		Start: m.LensPosition{Line: 3, Character: 4},
		End:   m.LensPosition{Line: 3, Character: 29},
	}, setUp.Range)
	require.NotNil(t, setUp.Command)
	assert.Equal(t, DebugTitle, setUp.Command.Title)
	assert.Equal(t, DebugCommand, setUp.Command.Command)
	require.Len(t, setUp.Command.Arguments, 1)

	fn, ok := setUp.Command.Arguments[0].(*m.FunctionDefinition)
	require.True(t, ok)
	assert.Equal(t, "setUp", fn.Name)

	increment := lenses[1]
	assert.Equal(t, m.Range{
		Start: m.LensPosition{Line: 5, Character: 4},
		End:   m.LensPosition{Line: 7, Character: 4},
	}, increment.Range)
}

func TestProvideCodeLenses_EmptySuccess(t *testing.T) {
	lenses, applicable, err := newTestLensAdapter().ProvideCodeLenses(context.Background(), m.Document{
		Filename: "Empty.t.sol",
		Text:     "interface I { function a() external; }",
	})

	require.NoError(t, err)
	assert.True(t, applicable)
	require.NotNil(t, lenses)
	assert.Empty(t, lenses)
}

func TestProvideCodeLenses_ParseError(t *testing.T) {
	_, applicable, err := newTestLensAdapter().ProvideCodeLenses(context.Background(), m.Document{
		Filename: "Broken.t.sol",
		Text:     "contract Broken {",
	})

	require.Error(t, err)
	assert.True(t, applicable)

	var parseErr *adapter.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestToCodeLens_TranslatesLines(t *testing.T) {
	fn := &m.FunctionDefinition{
		Name: "foo",
		Loc: m.Location{
			Start: m.Position{Line: 10, Column: 2},
			End:   m.Position{Line: 12, Column: 6},
		},
	}

	lens := ToCodeLens(fn)

	assert.Equal(t, m.LensPosition{Line: 9, Character: 2}, lens.Range.Start)
	assert.Equal(t, m.LensPosition{Line: 11, Character: 6}, lens.Range.End)
	assert.Same(t, fn, lens.Command.Arguments[0])
}

func TestToCodeLens_FirstLineMapsToZero(t *testing.T) {
	unit, err := adapter.NewLocalSolidityFileAdapter().Parse(context.Background(), "One.t.sol",
		[]byte("contract OneLine { function test_a() public {} }"))
	require.NoError(t, err)

	targets := CollectDebugTargets(unit)
	require.Len(t, targets, 1)

	lens := ToCodeLens(targets[0])
	assert.Equal(t, m.LensPosition{Line: 0, Character: 19}, lens.Range.Start)
	assert.Equal(t, m.LensPosition{Line: 0, Character: 45}, lens.Range.End)
}

func TestResolveCodeLens_Identity(t *testing.T) {
	lenses := []m.CodeLens{
		{},
		ToCodeLens(&m.FunctionDefinition{Name: "a", Loc: m.Location{Start: m.Position{Line: 3}}}),
		{Range: m.Range{End: m.LensPosition{Line: 4, Character: 1}}, Data: "opaque"},
	}

	for _, lens := range lenses {
		resolved, err := newTestLensAdapter().ResolveCodeLens(context.Background(), lens)
		require.NoError(t, err)
		assert.Equal(t, lens, resolved)
	}
}

func TestDebugLensAdapter_ConfigurationChanged(t *testing.T) {
	lensAdapter := newTestLensAdapter()

	var fired int

	unsubscribe := lensAdapter.OnDidChangeCodeLenses(func() { fired++ })

	lensAdapter.ConfigurationChanged()
	assert.Equal(t, 1, fired)

	unsubscribe()
	lensAdapter.ConfigurationChanged()
	assert.Equal(t, 1, fired)

	lensAdapter.OnDidChangeCodeLenses(func() { fired++ })
	lensAdapter.Close()
	lensAdapter.ConfigurationChanged()
	assert.Equal(t, 1, fired)
}
