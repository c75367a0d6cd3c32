// Package secret loads the shared data bag secret and keeps it in memory for
// the length of one invocation.
package secret

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/lovincyrus/databag/internal/crypto"
)

var (
	ErrKeyNotFound = errors.New("secret not found")
	ErrKeyEmpty    = errors.New("invalid zero length secret")
)

const fingerprintInfo = "databag secret fingerprint"

// Source is where secret bytes come from: File or Inline.
type Source interface {
	read() (data []byte, origin string, err error)
}

type fileSource string

func (p fileSource) read() ([]byte, string, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, string(p), fmt.Errorf("%w: file not found '%s'", ErrKeyNotFound, string(p))
		}
		return nil, string(p), fmt.Errorf("reading secret: %w", err)
	}
	return data, string(p), nil
}

type inlineSource []byte

func (b inlineSource) read() ([]byte, string, error) {
	return bytes.Clone(b), "inline secret", nil
}

// File reads the secret from a file on disk.
func File(path string) Source {
	return fileSource(path)
}

// Inline uses b as the secret. b is copied; the caller keeps ownership.
func Inline(b []byte) Source {
	return inlineSource(b)
}

// Key holds raw secret bytes. Call Destroy when done with it.
type Key struct {
	mu sync.Mutex
	b  []byte
}

// Load reads the secret from src and trims surrounding whitespace.
func Load(src Source) (*Key, error) {
	raw, origin, err := src.read()
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(raw)

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w in '%s'", ErrKeyEmpty, origin)
	}

	k := &Key{b: make([]byte, len(trimmed))}
	copy(k.b, trimmed)
	lockMemory(k.b)
	disableCoreDumps()
	return k, nil
}

// Bytes returns the secret. The slice belongs to the Key: do not modify or
// retain it. Returns nil after Destroy or on a nil Key.
func (k *Key) Bytes() []byte {
	if k == nil {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.b
}

// Len returns the secret length in bytes.
func (k *Key) Len() int {
	if k == nil {
		return 0
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.b)
}

// Fingerprint returns a short identifier for the secret that does not reveal
// it, for recording which secret decrypted an item.
func (k *Key) Fingerprint() (string, error) {
	if k == nil {
		return "", errors.New("no secret")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.b == nil {
		return "", errors.New("secret destroyed")
	}
	fp, err := crypto.DeriveSubkey(k.b, nil, fingerprintInfo, 8)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(fp), nil
}

// Destroy zeroes the secret and releases its memory lock. Safe to call more
// than once.
func (k *Key) Destroy() {
	if k == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.b == nil {
		return
	}
	crypto.Zero(k.b)
	unlockMemory(k.b)
	k.b = nil
}
