package databag

import "errors"

// Each failure stage has its own error. Wrapped errors carry detail; match
// them with errors.Is.
var (
	ErrMalformedRecord     = errors.New("malformed encrypted value")
	ErrUnsupportedVersion  = errors.New("unsupported encrypted data bag item format")
	ErrUnacceptableVersion = errors.New("unacceptable encrypted data bag item format")
	ErrIntegrity           = errors.New("HMAC validation failed")
	ErrDecryption          = errors.New("error decrypting data bag value, most likely the provided secret is incorrect")
	ErrDeserialization     = errors.New("decrypted value is not valid structured data")
)
