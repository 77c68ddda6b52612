package ordering

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// GroupKey maps group-key field names to their values.
// A nil or empty key is the single global group.
type GroupKey map[string]string

// Encode returns the canonical form stores compare groups by:
// a JSON object with sorted keys, NFC-normalized values and no HTML escaping.
// Two keys denote the same group iff their encodings are equal.
func (k GroupKey) Encode() string {
	if len(k) == 0 {
		return "{}"
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range slices.Sorted(maps.Keys(k)) {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(canonicalString(field))
		buf.WriteByte(':')
		buf.Write(canonicalString(k[field]))
	}
	buf.WriteByte('}')
	return buf.String()
}

func (k GroupKey) String() string {
	return k.Encode()
}

// Equal reports whether both keys denote the same group.
func (k GroupKey) Equal(other GroupKey) bool {
	return k.Encode() == other.Encode()
}

// Project keeps only the given fields. Absent fields project to "".
func (k GroupKey) Project(fields []string) GroupKey {
	out := make(GroupKey, len(fields))
	for _, f := range fields {
		out[f] = norm.NFC.String(k[f])
	}
	return out
}

// Missing lists the fields that have no entry in k.
func (k GroupKey) Missing(fields []string) []string {
	var missing []string
	for _, f := range fields {
		if _, ok := k[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Changed lists the fields whose value differs between old and next.
func Changed(old, next GroupKey, fields []string) []string {
	var changed []string
	for _, f := range fields {
		if norm.NFC.String(old[f]) != norm.NFC.String(next[f]) {
			changed = append(changed, f)
		}
	}
	return changed
}

// ParseGroupKey decodes an encoded group key.
func ParseGroupKey(s string) (GroupKey, error) {
	k := GroupKey{}
	if s == "" {
		return k, nil
	}
	if err := json.Unmarshal([]byte(s), &k); err != nil {
		return nil, fmt.Errorf("parse group key %q: %w", s, err)
	}
	return k, nil
}

// canonicalString encodes s as a JSON string after NFC normalization,
// leaving <, > and & unescaped.
func canonicalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a plain string cannot fail.
	_ = enc.Encode(norm.NFC.String(s))
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
