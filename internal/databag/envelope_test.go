package databag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope_Variants(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Version
	}{
		{"legacy string", "AAECAwQFBgcICQoLDA0ODw==\n", Version0},
		{"v1", map[string]any{"encrypted_data": "AAAA", "iv": "AAAA", "version": 1}, Version1},
		{"v1 float", map[string]any{"encrypted_data": "AAAA", "iv": "AAAA", "version": 1.0}, Version1},
		{"v2", map[string]any{"encrypted_data": "AAAA", "iv": "AAAA", "hmac": "AAAA", "version": json.Number("2")}, Version2},
		{"v3", map[string]any{"encrypted_data": "AAAA", "iv": "AAAA", "auth_tag": "AAAA", "version": uint64(3), "cipher": "aes-256-gcm"}, Version3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.Version())
		})
	}
}

func TestParseEnvelope_HMACKeepsEncodedText(t *testing.T) {
	env, err := ParseEnvelope(map[string]any{
		"encrypted_data": "AAAA\nAAAA\n", "iv": "AAAA", "hmac": "AAAA", "version": 2,
	})
	require.NoError(t, err)
	h := env.(*HMACEnvelope)
	assert.Equal(t, "AAAA\nAAAA\n", h.EncryptedData)
	assert.Len(t, h.Ciphertext, 6)
}

func TestParseEnvelope_UnsupportedVersion(t *testing.T) {
	for _, v := range []any{0, 4, 99, -1, 1.5, "1", true} {
		_, err := ParseEnvelope(map[string]any{"version": v})
		assert.ErrorIs(t, err, ErrUnsupportedVersion, "version %v", v)
	}
}

func TestParseEnvelope_UnsupportedBeforeFieldChecks(t *testing.T) {
	// no fields at all: the version is still what gets reported
	_, err := ParseEnvelope(map[string]any{"version": 7})
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.NotErrorIs(t, err, ErrMalformedRecord)
}

func TestParseEnvelope_CipherMismatch(t *testing.T) {
	_, err := ParseEnvelope(map[string]any{
		"encrypted_data": "AAAA", "iv": "AAAA", "version": 1, "cipher": "aes-256-gcm",
	})
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestParseEnvelope_MissingFields(t *testing.T) {
	_, err := ParseEnvelope(map[string]any{"version": 3, "iv": "AAAA"})
	require.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), `"encrypted_data"`)
	assert.Contains(t, err.Error(), `"auth_tag"`)
	assert.NotContains(t, err.Error(), `"iv"`)
}

func TestParseEnvelope_MissingHMAC(t *testing.T) {
	_, err := ParseEnvelope(map[string]any{"encrypted_data": "AAAA", "iv": "AAAA", "version": 2})
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), `"hmac"`)
}

func TestParseEnvelope_MissingVersion(t *testing.T) {
	_, err := ParseEnvelope(map[string]any{"encrypted_data": "AAAA", "iv": "AAAA"})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseEnvelope_BadBase64(t *testing.T) {
	_, err := ParseEnvelope(map[string]any{"encrypted_data": "!!!", "iv": "AAAA", "version": 1})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ParseEnvelope("not base64 ***")
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseEnvelope_WrongTypes(t *testing.T) {
	_, err := ParseEnvelope(42.0)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ParseEnvelope(map[string]any{"encrypted_data": 12, "iv": "AAAA", "version": 1})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseItem(t *testing.T) {
	item, err := ParseItem([]byte(`{"id": "x", "n": 1}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), item["n"])

	_, err = ParseItem([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ParseItem([]byte(`{"id": `))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ParseItem([]byte(`{} {}`))
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ParseItem(nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}
