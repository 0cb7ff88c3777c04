package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	assert.Equal(t, "+", PLUS.String())
	assert.Equal(t, "and", AND.String())
	assert.Equal(t, "EOF", EOF.String())
	assert.Equal(t, "UNKNOWN", Type(999).String())
}

func TestLookupWord(t *testing.T) {
	assert.Equal(t, AND, LookupWord("and"))
	assert.Equal(t, OR, LookupWord("or"))
	assert.Equal(t, XOR, LookupWord("xor"))
	assert.Equal(t, NOT, LookupWord("not"))
	assert.Equal(t, WORD, LookupWord("centers"))
	assert.Equal(t, WORD, LookupWord(""))
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: WORD, Literal: "swing", Line: 2, Column: 5}
	assert.Equal(t, `WORD("swing")@2:5`, tok.String())
}
