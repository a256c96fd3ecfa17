package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d missing a string representation", tok)
	}
}

func TestTokenGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}

func TestIsBinary(t *testing.T) {
	require.True(t, PLUS.IsBinary())
	require.True(t, LT.IsBinary())
	require.True(t, GTGT.IsBinary())
	require.False(t, NOT.IsBinary())
	require.False(t, LPAREN.IsBinary())
	require.False(t, EOF.IsBinary())
}
