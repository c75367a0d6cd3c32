package crypto

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
)

const (
	keyLen = 32 // 256-bit

	// LegacyRounds is the iteration count OpenSSL's pkcs5_keyivgen uses when
	// none is given.
	LegacyRounds = 2048
)

// CipherKey returns the AES-256 key for a shared secret: SHA-256 of its bytes.
func CipherKey(secret []byte) []byte {
	h := sha256.Sum256(secret)
	return h[:]
}

// BytesToKey is OpenSSL's EVP_BytesToKey with MD5. It derives klen bytes of
// key and ivlen bytes of iv from a password and an optional salt.
func BytesToKey(password, salt []byte, rounds, klen, ivlen int) (key, iv []byte) {
	var out, prev []byte
	for len(out) < klen+ivlen {
		h := md5.New()
		h.Write(prev)
		h.Write(password)
		h.Write(salt)
		d := h.Sum(nil)
		for i := 1; i < rounds; i++ {
			s := md5.Sum(d)
			d = s[:]
		}
		out = append(out, d...)
		prev = d
	}
	return out[:klen], out[klen : klen+ivlen]
}

// LegacyKey derives the AES-256-CBC key and iv for unversioned values.
func LegacyKey(secret []byte) (key, iv []byte) {
	return BytesToKey(secret, nil, LegacyRounds, keyLen, BlockSize)
}

// HMACSHA256 returns the HMAC-SHA256 of msg under key.
func HMACSHA256(key, msg []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(msg)
	return m.Sum(nil)
}

// VerifyHMAC reports whether mac is the HMAC-SHA256 of msg, in constant time.
func VerifyHMAC(key, msg, mac []byte) bool {
	return hmac.Equal(HMACSHA256(key, msg), mac)
}

// RandomBytes returns n bytes of cryptographically secure random data.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
