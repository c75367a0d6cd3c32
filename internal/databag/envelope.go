package databag

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Version identifies an encrypted value's layout.
type Version int

const (
	// Version0 values are a bare base64 string of YAML encrypted with a key
	// derived by OpenSSL's EVP_BytesToKey.
	Version0 Version = iota
	// Version1 values are JSON-wrapped and encrypted with AES-256-CBC.
	Version1
	// Version2 is Version1 plus an HMAC over the encrypted data.
	Version2
	// Version3 values are encrypted with AES-256-GCM.
	Version3

	LatestVersion = Version3
)

const (
	cipherCBC = "aes-256-cbc"
	cipherGCM = "aes-256-gcm"
)

// Cipher names the cipher a version encrypts with.
func (v Version) Cipher() string {
	if v == Version3 {
		return cipherGCM
	}
	return cipherCBC
}

func (v Version) String() string {
	return fmt.Sprintf("v%d", int(v))
}

// Envelope is one parsed encrypted value. The implementations in this package
// are the only ones; Decrypt handles each of them.
type Envelope interface {
	Version() Version
	envelope()
}

// LegacyEnvelope is an unversioned value.
type LegacyEnvelope struct {
	Data []byte
}

// CBCEnvelope is a version 1 value.
type CBCEnvelope struct {
	Ciphertext []byte
	IV         []byte
}

// HMACEnvelope is a version 2 value. The HMAC covers EncryptedData, the
// base64 text exactly as stored.
type HMACEnvelope struct {
	EncryptedData string
	Ciphertext    []byte
	IV            []byte
	HMAC          []byte
}

// GCMEnvelope is a version 3 value.
type GCMEnvelope struct {
	Ciphertext []byte
	IV         []byte
	AuthTag    []byte
}

func (*LegacyEnvelope) Version() Version { return Version0 }
func (*CBCEnvelope) Version() Version    { return Version1 }
func (*HMACEnvelope) Version() Version   { return Version2 }
func (*GCMEnvelope) Version() Version    { return Version3 }

func (*LegacyEnvelope) envelope() {}
func (*CBCEnvelope) envelope()    {}
func (*HMACEnvelope) envelope()   {}
func (*GCMEnvelope) envelope()    {}

// ParseEnvelope turns one value of an encrypted item into an Envelope. A
// string is a version 0 value; an object must declare a supported "version"
// and carry every field that version needs.
func ParseEnvelope(raw any) (Envelope, error) {
	switch v := raw.(type) {
	case string:
		data, err := decodeBase64(v)
		if err != nil {
			return nil, fmt.Errorf("%w: value is not base64: %v", ErrMalformedRecord, err)
		}
		return &LegacyEnvelope{Data: data}, nil
	case map[string]any:
		return parseVersioned(v)
	default:
		return nil, fmt.Errorf("%w: expected a string or an object, got %T", ErrMalformedRecord, raw)
	}
}

func parseVersioned(m map[string]any) (Envelope, error) {
	rawVersion, ok := m["version"]
	if !ok || rawVersion == nil {
		return nil, fmt.Errorf("%w: missing \"version\"", ErrMalformedRecord)
	}
	version, err := parseVersion(rawVersion)
	if err != nil {
		return nil, err
	}
	if c, ok := m["cipher"]; ok && c != nil {
		if name, _ := c.(string); name != version.Cipher() {
			return nil, fmt.Errorf("%w: cipher %v is not valid for version %d", ErrUnsupportedVersion, c, version)
		}
	}

	f := &fields{m: m}
	var env Envelope
	switch version {
	case Version1:
		env = &CBCEnvelope{
			Ciphertext: f.bytes("encrypted_data"),
			IV:         f.bytes("iv"),
		}
	case Version2:
		data := f.text("encrypted_data")
		env = &HMACEnvelope{
			EncryptedData: data,
			Ciphertext:    f.decode("encrypted_data", data),
			IV:            f.bytes("iv"),
			HMAC:          f.bytes("hmac"),
		}
	case Version3:
		env = &GCMEnvelope{
			Ciphertext: f.bytes("encrypted_data"),
			IV:         f.bytes("iv"),
			AuthTag:    f.bytes("auth_tag"),
		}
	}
	if err := f.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return env, nil
}

// parseVersion accepts the integer forms JSON and YAML decoders produce.
func parseVersion(raw any) (Version, error) {
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %v", ErrUnsupportedVersion, raw)
		}
		n = int64(v)
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %v", ErrUnsupportedVersion, raw)
		}
		n = int64(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnsupportedVersion, raw)
		}
		n = i
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedVersion, raw)
	}

	if n < int64(Version1) || n > int64(LatestVersion) {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, n)
	}
	return Version(n), nil
}

// fields reads required string fields and collects every problem.
type fields struct {
	m    map[string]any
	errs *multierror.Error
}

func (f *fields) text(name string) string {
	v, ok := f.m[name]
	if !ok || v == nil {
		f.fail(fmt.Errorf("%w: missing %q", ErrMalformedRecord, name))
		return ""
	}
	s, ok := v.(string)
	if !ok {
		f.fail(fmt.Errorf("%w: %q must be a string, got %T", ErrMalformedRecord, name, v))
		return ""
	}
	return s
}

func (f *fields) bytes(name string) []byte {
	return f.decode(name, f.text(name))
}

func (f *fields) decode(name, s string) []byte {
	if s == "" {
		return nil
	}
	b, err := decodeBase64(s)
	if err != nil {
		f.fail(fmt.Errorf("%w: %q is not base64: %v", ErrMalformedRecord, name, err))
		return nil
	}
	return b
}

func (f *fields) fail(err error) {
	f.errs = multierror.Append(f.errs, err)
	f.errs.ErrorFormat = joinErrors
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// decodeBase64 accepts the line-wrapped output of Ruby's Base64.encode64;
// encoding/base64 skips \r and \n.
func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
