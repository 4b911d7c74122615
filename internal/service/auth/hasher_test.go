package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{}

	t.Run("hash password", func(t *testing.T) {
		got, err := h.Hash("password")

		require.NoError(t, err)
		require.NotEmpty(t, got)
		require.NotContains(t, got, "password", "hash should not contain the plaintext")
	})

	t.Run("hash and compare roundtrip", func(t *testing.T) {
		hash, err := h.Hash("password")
		require.NoError(t, err)

		require.NoError(t, h.Compare(hash, "password"), "compare should succeed for same password")
		require.Error(t, h.Compare(hash, "other-password"), "compare should fail for different password")
	})

	t.Run("same password different hashes", func(t *testing.T) {
		hash1, err := h.Hash("password")
		require.NoError(t, err)
		hash2, err := h.Hash("password")
		require.NoError(t, err)

		require.NotEqual(t, hash1, hash2, "bcrypt salts should make hashes differ")
	})

	t.Run("long password ok", func(t *testing.T) {
		// bcrypt alone rejects inputs longer than 72 bytes, sha256 prehash lifts that
		long := strings.Repeat("a", 100)

		hash, err := h.Hash(long)
		require.NoError(t, err)
		require.NoError(t, h.Compare(hash, long))
	})
}
