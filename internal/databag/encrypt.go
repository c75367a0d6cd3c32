package databag

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/lovincyrus/databag/internal/crypto"
	"github.com/lovincyrus/databag/internal/secret"
)

// Encrypt wraps value as {"json_wrapper": value} and encrypts it in the given
// format with a fresh random iv. Version 0 cannot be written.
func Encrypt(value any, key *secret.Key, version Version) (map[string]any, error) {
	sk := key.Bytes()
	if len(sk) == 0 {
		return nil, secret.ErrKeyEmpty
	}

	plaintext, err := json.Marshal(map[string]any{wrapperKey: value})
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	defer crypto.Zero(plaintext)

	cipherKey := crypto.CipherKey(sk)
	defer crypto.Zero(cipherKey)

	switch version {
	case Version1, Version2:
		iv, err := crypto.RandomBytes(crypto.BlockSize)
		if err != nil {
			return nil, fmt.Errorf("generating iv: %w", err)
		}
		ciphertext, err := crypto.EncryptCBC(cipherKey, iv, plaintext)
		if err != nil {
			return nil, err
		}
		data := encodeBase64(ciphertext)
		out := map[string]any{
			"encrypted_data": data,
			"iv":             encodeBase64(iv),
			"version":        int(version),
			"cipher":         cipherCBC,
		}
		if version == Version2 {
			out["hmac"] = encodeBase64(crypto.HMACSHA256(sk, []byte(data)))
		}
		return out, nil
	case Version3:
		iv, err := crypto.RandomBytes(crypto.GCMNonceSize)
		if err != nil {
			return nil, fmt.Errorf("generating iv: %w", err)
		}
		ciphertext, tag, err := crypto.SealGCM(cipherKey, iv, plaintext, nil)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"encrypted_data": encodeBase64(ciphertext),
			"iv":             encodeBase64(iv),
			"auth_tag":       encodeBase64(tag),
			"version":        int(version),
			"cipher":         cipherGCM,
		}, nil
	default:
		return nil, fmt.Errorf("%w: cannot encrypt as %s", ErrUnsupportedVersion, version)
	}
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
