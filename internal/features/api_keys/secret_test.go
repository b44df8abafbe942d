package api_keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_VerifySecret_MatchingPlaintext_ReturnsTrue(t *testing.T) {
	digest, err := HashSecret("qg_test_0123456789abcdef0123456789abcdef")

	assert.NoError(t, err)
	assert.True(t, VerifySecret("qg_test_0123456789abcdef0123456789abcdef", digest))
}

func Test_VerifySecret_WrongPlaintext_ReturnsFalse(t *testing.T) {
	digest, err := HashSecret("qg_test_0123456789abcdef0123456789abcdef")

	assert.NoError(t, err)
	assert.False(t, VerifySecret("qg_test_ffffffffffffffffffffffffffffffff", digest))
}

func Test_VerifySecret_MalformedDigest_ReturnsFalse(t *testing.T) {
	assert.False(t, VerifySecret("anything", "not-a-bcrypt-digest"))
}

func Test_HashSecret_SamePlaintextTwice_ProducesDistinctDigests(t *testing.T) {
	first, err := HashSecret("qg_live_0123456789abcdef0123456789abcdef")
	assert.NoError(t, err)

	second, err := HashSecret("qg_live_0123456789abcdef0123456789abcdef")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}
