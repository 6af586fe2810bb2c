package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodec_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewCodec("")
	require.Error(t, err)

	codec, err := NewCodec("test-secret")
	require.NoError(t, err)
	require.NotNil(t, codec)
}

func TestCodec_IssueVerifyRoundtrip(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec("test-secret")
	require.NoError(t, err)

	token, err := codec.Issue("user-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subjectID, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subjectID)
}

func TestCodec_Verify_Expired(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec("test-secret")
	require.NoError(t, err)

	token, err := codec.Issue("user-123", -1*time.Second)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_Verify_Malformed(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec("test-secret")
	require.NoError(t, err)

	_, err = codec.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = codec.Verify("")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestCodec_Verify_WrongSecret(t *testing.T) {
	t.Parallel()

	signer, err := NewCodec("right-secret")
	require.NoError(t, err)
	verifier, err := NewCodec("wrong-secret")
	require.NoError(t, err)

	token, err := signer.Issue("user-123", time.Hour)
	require.NoError(t, err)

	// A signature mismatch is indistinguishable from tampering.
	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestExtractFromCookie(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		key    string
		want   string
	}{
		{"first key", "accessToken=abc; refreshToken=xyz", "accessToken", "abc"},
		{"second key", "accessToken=abc; refreshToken=xyz", "refreshToken", "xyz"},
		{"no spaces", "accessToken=abc;refreshToken=xyz", "refreshToken", "xyz"},
		{"absent key", "accessToken=abc", "refreshToken", ""},
		{"empty header", "", "accessToken", ""},
		{"key is value prefix", "notaccessToken=abc", "accessToken", ""},
		{"empty value", "accessToken=; refreshToken=xyz", "accessToken", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromCookie(tt.header, tt.key))
		})
	}
}
