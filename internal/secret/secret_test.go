package secret

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecret(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "encrypted_data_bag_secret")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoad_File(t *testing.T) {
	k, err := Load(File(writeSecret(t, "0123456789abcdef")))
	require.NoError(t, err)
	defer k.Destroy()

	assert.Equal(t, []byte("0123456789abcdef"), k.Bytes())
	assert.Equal(t, 16, k.Len())
}

func TestLoad_TrailingNewlineStripped(t *testing.T) {
	withNewline, err := Load(File(writeSecret(t, "0123456789abcdef\n")))
	require.NoError(t, err)
	defer withNewline.Destroy()

	without, err := Load(File(writeSecret(t, "0123456789abcdef")))
	require.NoError(t, err)
	defer without.Destroy()

	assert.Equal(t, without.Bytes(), withNewline.Bytes())
}

func TestLoad_SurroundingWhitespaceStripped(t *testing.T) {
	k, err := Load(Inline([]byte("  \tsecret value\r\n")))
	require.NoError(t, err)
	defer k.Destroy()

	assert.Equal(t, []byte("secret value"), k.Bytes())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(File(filepath.Join(t.TempDir(), "nope")))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load(File(writeSecret(t, "")))
	assert.ErrorIs(t, err, ErrKeyEmpty)
}

func TestLoad_WhitespaceOnly(t *testing.T) {
	_, err := Load(File(writeSecret(t, " \n\n")))
	assert.ErrorIs(t, err, ErrKeyEmpty)

	_, err = Load(Inline(nil))
	assert.ErrorIs(t, err, ErrKeyEmpty)
}

func TestLoad_Directory(t *testing.T) {
	_, err := Load(File(t.TempDir()))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
	assert.NotErrorIs(t, err, ErrKeyEmpty)
}

func TestInline_CallerBytesUntouched(t *testing.T) {
	raw := []byte("0123456789abcdef")
	k, err := Load(Inline(raw))
	require.NoError(t, err)
	k.Destroy()

	assert.Equal(t, []byte("0123456789abcdef"), raw)
}

func TestDestroy(t *testing.T) {
	k, err := Load(Inline([]byte("0123456789abcdef")))
	require.NoError(t, err)

	b := k.Bytes()
	k.Destroy()

	assert.Equal(t, make([]byte, 16), b, "backing bytes should be zeroed")
	assert.Nil(t, k.Bytes())
	assert.Equal(t, 0, k.Len())

	k.Destroy()
	_, err = k.Fingerprint()
	assert.Error(t, err)
}

func TestNilKey(t *testing.T) {
	var k *Key
	assert.Nil(t, k.Bytes())
	assert.Equal(t, 0, k.Len())
	assert.NotPanics(t, k.Destroy)
	_, err := k.Fingerprint()
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	k1, _ := Load(Inline([]byte("0123456789abcdef")))
	defer k1.Destroy()
	k2, _ := Load(Inline([]byte("0123456789abcdef\n")))
	defer k2.Destroy()
	k3, _ := Load(Inline([]byte("fedcba9876543210")))
	defer k3.Destroy()

	fp1, err := k1.Fingerprint()
	require.NoError(t, err)
	fp2, _ := k2.Fingerprint()
	fp3, _ := k3.Fingerprint()

	assert.Len(t, fp1, 16)
	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
	assert.NotContains(t, fp1, "0123456789abcdef")
}
