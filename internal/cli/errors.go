package cli

import (
	"errors"

	"github.com/lovincyrus/databag/internal/databag"
	"github.com/lovincyrus/databag/internal/secret"
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{secret.ErrKeyNotFound, "key not found"},
	{secret.ErrKeyEmpty, "key empty"},
	{databag.ErrUnsupportedVersion, "unsupported version"},
	{databag.ErrUnacceptableVersion, "unacceptable version"},
	{databag.ErrIntegrity, "integrity"},
	{databag.ErrDecryption, "decryption"},
	{databag.ErrDeserialization, "deserialization"},
	{databag.ErrMalformedRecord, "malformed record"},
}

// errorKind names the failure stage of err for messages and history rows.
func errorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "error"
}
