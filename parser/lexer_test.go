package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The scanner classifies letter runs as spoken-word tokens; resolving them
// against the vocabulary is fold's job.
func TestScanEmitsSpokenWords(t *testing.T) {
	raw, err := scan("2 plus X squared")
	require.NoError(t, err)
	require.Len(t, raw, 4)

	assert.Equal(t, KindNumber, raw[0].Kind)
	assert.Equal(t, KindSpoken, raw[1].Kind)
	assert.Equal(t, "plus", raw[1].Raw)
	assert.Equal(t, KindSpoken, raw[2].Kind)
	assert.Equal(t, "x", raw[2].Raw, "words are lowercased at scan time")
	assert.Equal(t, KindSpoken, raw[3].Kind)
	assert.Equal(t, "squared", raw[3].Raw)
}

// No spoken-word token survives the full pipeline: every word either
// resolves or errors.
func TestTokenizeResolvesSpokenWords(t *testing.T) {
	tokens, err := Tokenize("three x squared plus two", DefaultVocabulary())
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
	for _, tok := range tokens {
		assert.NotEqual(t, KindSpoken, tok.Kind, "unresolved word %q", tok.Raw)
	}
}
