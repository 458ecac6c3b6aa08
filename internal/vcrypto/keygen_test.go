package vcrypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateKeyNonce_Distinct(t *testing.T) {
	k1, n1, err := GenerateKeyNonce()
	require.NoError(t, err)
	k2, n2, err := GenerateKeyNonce()
	require.NoError(t, err)

	require.NotEqual(t, k1, k2)
	require.NotEqual(t, n1, n2)
}
