package lexer

import (
	"testing"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/token"
	"github.com/stretchr/testify/require"
)

type mapSynonyms map[string]string

func (m mapSynonyms) Expand(name string) (string, bool) {
	text, ok := m[name]
	return text, ok
}

type sliceArgs []string

func (s sliceArgs) Arg(index int) (string, bool) {
	if index < 0 || index >= len(s) {
		return "", false
	}
	return s[index], true
}

func allTokens(t *testing.T, l *Lexer) []token.Token {
	t.Helper()
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestLexerWordsAndFinalPartial(t *testing.T) {
	l := New("run fast", nil, nil, false)
	toks := allTokens(t, l)
	require.Len(t, toks, 3)
	require.Equal(t, token.WORD, toks[0].Type)
	require.Equal(t, "run", toks[0].Literal)
	// the last word before EOF is marked FINAL_PARTIAL for autocomplete.
	require.Equal(t, token.FINAL_PARTIAL, toks[1].Type)
	require.Equal(t, "fast", toks[1].Literal)
	require.Equal(t, token.EOF, toks[2].Type)
}

func TestLexerIntegerAndFraction(t *testing.T) {
	l := New("3 1/4 2 and 3/4 ", nil, nil, false)
	toks := allTokens(t, l)
	require.Equal(t, token.INTEGER, toks[0].Type)
	require.Equal(t, 3, toks[0].IntVal)

	require.Equal(t, token.FRACTION, toks[1].Type)
	require.Equal(t, 1, toks[1].Num)
	require.Equal(t, 4, toks[1].Denom)

	require.Equal(t, token.FRACTION, toks[2].Type)
	require.Equal(t, 2, toks[2].IntVal)
	require.Equal(t, 3, toks[2].Num)
	require.Equal(t, 4, toks[2].Denom)

	require.Equal(t, token.EOF, toks[3].Type)
}

func TestLexerOperatorsInDefinition(t *testing.T) {
	l := New("$0 and not $1", nil, sliceArgs{"centers", "ends"}, true)
	toks := allTokens(t, l)
	require.Equal(t, token.WORD, toks[0].Type)
	require.Equal(t, "centers", toks[0].Literal)
	require.Equal(t, token.AND, toks[1].Type)
	require.Equal(t, token.NOT, toks[2].Type)
	require.Equal(t, "ends", toks[3].Literal)
}

func TestLexerArgumentSubstitutionMissing(t *testing.T) {
	l := New("$5", nil, sliceArgs{"only one"}, true)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestLexerArgumentSubstitutionNoSource(t *testing.T) {
	l := New("$0", nil, nil, true)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestLexerSynonymExpansion(t *testing.T) {
	syn := mapSynonyms{"quarter": "1/4"}
	l := New("$quarter", syn, nil, false)
	tok, err := l.NextToken()
	require.NoError(t, err)
	require.Equal(t, token.FRACTION, tok.Type)
	require.Equal(t, 1, tok.Num)
	require.Equal(t, 4, tok.Denom)
}

func TestLexerSynonymCycleDetected(t *testing.T) {
	syn := mapSynonyms{"a": "$b", "b": "$a"}
	l := New("$a", syn, nil, false)
	_, err := l.NextToken()
	require.Error(t, err)
}

func TestLexerUnknownDollarWordIsLiteral(t *testing.T) {
	l := New("$until_home", nil, nil, false)
	tok, err := l.NextToken()
	require.NoError(t, err)
	require.Equal(t, token.WORD, tok.Type)
	require.Equal(t, "$until_home", tok.Literal)
}

func TestLexerIllegalCharacter(t *testing.T) {
	l := New("@", nil, nil, false)
	tok, err := l.NextToken()
	require.NoError(t, err)
	require.Equal(t, token.ILLEGAL, tok.Type)
}
