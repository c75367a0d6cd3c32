package databag

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/lovincyrus/databag/internal/crypto"
	"github.com/lovincyrus/databag/internal/secret"
)

const wrapperKey = "json_wrapper"

// Option configures DecryptValue and DecryptItem.
type Option func(*options)

type options struct {
	minVersion Version
}

// WithMinimumVersion rejects values older than v with ErrUnacceptableVersion.
func WithMinimumVersion(v Version) Option {
	return func(o *options) {
		o.minVersion = v
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Decrypt verifies and decrypts env with key and returns the decoded value.
// Nothing is returned alongside an error.
func Decrypt(env Envelope, key *secret.Key) (any, error) {
	sk := key.Bytes()
	if len(sk) == 0 {
		return nil, secret.ErrKeyEmpty
	}

	switch e := env.(type) {
	case *LegacyEnvelope:
		return decryptLegacy(e, sk)
	case *CBCEnvelope:
		plaintext, err := decryptCBC(sk, e.IV, e.Ciphertext)
		if err != nil {
			return nil, err
		}
		return unwrap(plaintext)
	case *HMACEnvelope:
		if !crypto.VerifyHMAC(sk, []byte(e.EncryptedData), e.HMAC) {
			return nil, ErrIntegrity
		}
		plaintext, err := decryptCBC(sk, e.IV, e.Ciphertext)
		if err != nil {
			return nil, err
		}
		return unwrap(plaintext)
	case *GCMEnvelope:
		cipherKey := crypto.CipherKey(sk)
		defer crypto.Zero(cipherKey)
		plaintext, err := crypto.OpenGCM(cipherKey, e.IV, e.Ciphertext, e.AuthTag, nil)
		if err != nil {
			return nil, ErrDecryption
		}
		return unwrap(plaintext)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedVersion, env)
	}
}

// DecryptValue parses and decrypts a single value of an encrypted item.
func DecryptValue(raw any, key *secret.Key, opts ...Option) (any, error) {
	o := newOptions(opts)

	env, err := ParseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if env.Version() < o.minVersion {
		return nil, fmt.Errorf("%w: %s is older than the minimum %s", ErrUnacceptableVersion, env.Version(), o.minVersion)
	}
	return Decrypt(env, key)
}

func decryptCBC(sk, iv, ciphertext []byte) ([]byte, error) {
	cipherKey := crypto.CipherKey(sk)
	defer crypto.Zero(cipherKey)

	plaintext, err := crypto.DecryptCBC(cipherKey, iv, ciphertext)
	if err != nil {
		return nil, ErrDecryption
	}
	return plaintext, nil
}

func decryptLegacy(e *LegacyEnvelope, sk []byte) (any, error) {
	cipherKey, iv := crypto.LegacyKey(sk)
	defer crypto.Zero(cipherKey)

	plaintext, err := crypto.DecryptCBC(cipherKey, iv, e.Data)
	if err != nil {
		return nil, ErrDecryption
	}
	defer crypto.Zero(plaintext)

	var v any
	if err := yaml.Unmarshal(plaintext, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return v, nil
}

// unwrap decodes {"json_wrapper": value} and returns value.
func unwrap(plaintext []byte) (any, error) {
	defer crypto.Zero(plaintext)

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(plaintext, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	inner, ok := wrapper[wrapperKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrDeserialization, wrapperKey)
	}

	v, err := decodeJSON(inner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return v, nil
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number
// so integers survive unchanged.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}
