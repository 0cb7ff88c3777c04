package engine

import (
	"testing"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionBareHeadNoParens(t *testing.T) {
	pa, err := parseAction("$circulate", nil)
	require.NoError(t, err)
	assert.Equal(t, "circulate", pa.Head)
	assert.Empty(t, pa.Args)
}

func TestParseActionEmptyParens(t *testing.T) {
	pa, err := parseAction("$circulate()", nil)
	require.NoError(t, err)
	assert.Equal(t, "circulate", pa.Head)
	assert.Empty(t, pa.Args)
}

func TestParseActionSingleArg(t *testing.T) {
	pa, err := parseAction("$forward(2)", nil)
	require.NoError(t, err)
	assert.Equal(t, "forward", pa.Head)
	require.Len(t, pa.Args, 1)
	assert.Equal(t, 2, pa.Args[0].Int)
}

func TestParseActionMultipleArgs(t *testing.T) {
	pa, err := parseAction("$wheel(1, 2)", nil)
	require.NoError(t, err)
	assert.Equal(t, "wheel", pa.Head)
	require.Len(t, pa.Args, 2)
	assert.Equal(t, 1, pa.Args[0].Int)
	assert.Equal(t, 2, pa.Args[1].Int)
}

func TestParseActionArgSubstitutesCallerArgument(t *testing.T) {
	callArgs := []*term.Term{term.NewInteger(5)}
	pa, err := parseAction("$forward($0 + 1)", callArgs)
	require.NoError(t, err)
	assert.Equal(t, "forward", pa.Head)
	require.Len(t, pa.Args, 1)
	assert.Equal(t, 6, pa.Args[0].Int)
}

func TestParseActionMalformedTextNotAWord(t *testing.T) {
	_, err := parseAction("(2)", nil)
	require.Error(t, err)
}

func TestParseActionUnterminatedParens(t *testing.T) {
	_, err := parseAction("$forward(2", nil)
	require.Error(t, err)
}

func TestParseActionNestedParensInArg(t *testing.T) {
	pa, err := parseAction("$forward((1 + 1))", nil)
	require.NoError(t, err)
	require.Len(t, pa.Args, 1)
	assert.Equal(t, 2, pa.Args[0].Int)
}

func TestParseActionEmptyText(t *testing.T) {
	_, err := parseAction("", nil)
	require.Error(t, err)
}
