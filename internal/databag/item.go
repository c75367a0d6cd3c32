package databag

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/lovincyrus/databag/internal/secret"
)

const idKey = "id"

// ParseItem decodes an item file. The top level must be a JSON object.
func ParseItem(data []byte) (map[string]any, error) {
	v, err := decodeJSON(bytes.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%w: item is not valid JSON: %v", ErrMalformedRecord, err)
	}
	item, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: item must be a JSON object, got %T", ErrMalformedRecord, v)
	}
	return item, nil
}

// ItemID returns the item's plain "id", or "" when it has none.
func ItemID(item map[string]any) string {
	id, _ := item[idKey].(string)
	return id
}

// DecryptItem decrypts every value of item except "id" and nulls, which are
// copied as-is. The first failing value aborts the whole item.
func DecryptItem(item map[string]any, key *secret.Key, opts ...Option) (map[string]any, error) {
	out := make(map[string]any, len(item))
	for _, name := range slices.Sorted(maps.Keys(item)) {
		raw := item[name]
		if name == idKey || raw == nil {
			out[name] = raw
			continue
		}
		v, err := DecryptValue(raw, key, opts...)
		if err != nil {
			return nil, fmt.Errorf("decrypting %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// EncryptItem encrypts every value of item except "id".
func EncryptItem(item map[string]any, key *secret.Key, version Version) (map[string]any, error) {
	out := make(map[string]any, len(item))
	for _, name := range slices.Sorted(maps.Keys(item)) {
		if name == idKey {
			out[name] = item[name]
			continue
		}
		env, err := Encrypt(item[name], key, version)
		if err != nil {
			return nil, fmt.Errorf("encrypting %q: %w", name, err)
		}
		out[name] = env
	}
	return out, nil
}

// Versions lists the formats used by an item's encrypted values, oldest
// first. Values that do not parse are skipped.
func Versions(item map[string]any) []Version {
	seen := map[Version]bool{}
	for name, raw := range item {
		if name == idKey || raw == nil {
			continue
		}
		if env, err := ParseEnvelope(raw); err == nil {
			seen[env.Version()] = true
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
