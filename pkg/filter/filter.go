package filter

import (
	"bytes"
	"fmt"

	"github.com/downfa11-org/logsnap/pkg/types"
)

// Filter decides whether a record's key belongs in the snapshot.
type Filter interface {
	Match(key []byte) bool
}

type passThrough struct{}

func (passThrough) Match([]byte) bool { return true }

// PassThrough keeps every record.
func PassThrough() Filter { return passThrough{} }

type keyEquals struct {
	sample []byte
}

func (f keyEquals) Match(key []byte) bool {
	return key != nil && bytes.Equal(key, f.sample)
}

// KeyEquals keeps only records whose raw key equals the sample value,
// encoded through the topic's key kind. Keyless records never match.
func KeyEquals(sample string, kind types.KeyKind) (Filter, error) {
	raw, err := kind.Encode(sample)
	if err != nil {
		return nil, err
	}
	return keyEquals{sample: raw}, nil
}

// FromConfig builds the filter for a configured kind.
func FromConfig(kind, sample string, keyKind types.KeyKind) (Filter, error) {
	switch kind {
	case "", "none":
		return PassThrough(), nil
	case "key-equals":
		return KeyEquals(sample, keyKind)
	default:
		return nil, fmt.Errorf("unknown filter kind %q", kind)
	}
}
