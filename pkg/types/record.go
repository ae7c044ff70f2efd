package types

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"
)

// Record represents a single key/value pair read from a partition.
// A nil Key means the source message carried no key.
type Record struct {
	Key       []byte
	Value     []byte
	Partition int
	Offset    int64
	Time      time.Time
}

func (r Record) String() string {
	return string(r.Value)
}

// KeyKind selects how raw message keys are rendered and compared.
type KeyKind string

const (
	KeyKindString KeyKind = "string"
	KeyKindLong   KeyKind = "long"
	KeyKindBytes  KeyKind = "bytes"
)

// ParseKeyKind normalizes a configured key kind, defaulting to string.
func ParseKeyKind(s string) (KeyKind, error) {
	switch KeyKind(s) {
	case KeyKindString, "":
		return KeyKindString, nil
	case KeyKindLong:
		return KeyKindLong, nil
	case KeyKindBytes:
		return KeyKindBytes, nil
	}
	return "", fmt.Errorf("unknown key kind %q", s)
}

// Render decodes a raw key into its configured textual representation.
func (k KeyKind) Render(key []byte) (string, error) {
	switch k {
	case KeyKindLong:
		if len(key) != 8 {
			return "", fmt.Errorf("long key must be 8 bytes, got %d", len(key))
		}
		return strconv.FormatInt(int64(binary.BigEndian.Uint64(key)), 10), nil
	case KeyKindBytes:
		return base64.StdEncoding.EncodeToString(key), nil
	default:
		return string(key), nil
	}
}

// Encode converts a textual sample value into raw key bytes.
func (k KeyKind) Encode(s string) ([]byte, error) {
	switch k {
	case KeyKindLong:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("long key sample %q: %w", s, err)
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(v))
		return buf, nil
	case KeyKindBytes:
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("bytes key sample %q: %w", s, err)
		}
		return raw, nil
	default:
		return []byte(s), nil
	}
}
