package snapshot

import (
	"context"

	"github.com/downfa11-org/logsnap/pkg/types"
)

// Snapshot is the finished, in-memory result of one topic run. Either
// Records (pass-through) or Table (compacted) is populated, never both.
type Snapshot struct {
	Topic     string
	Compacted bool

	// Records preserves the assembled order, duplicate keys included.
	Records []types.Record

	// Table maps raw key bytes (as string) to the last record observed
	// for that key. Iteration order is not guaranteed.
	Table map[string]types.Record
}

// Len returns the number of exportable entries.
func (s *Snapshot) Len() int {
	if s.Compacted {
		return len(s.Table)
	}
	return len(s.Records)
}

// Destination describes where and how a snapshot is exported.
type Destination struct {
	// Name is the logical output name, defaulting to the topic name.
	Name string

	// Raw exports message values only, without key/offset envelopes.
	Raw bool

	// KeyKind selects how keys are rendered in the exported file.
	KeyKind types.KeyKind
}

// Exporter serializes a finished snapshot. The core's contract ends at
// handing over the in-memory snapshot; a failed export fails the topic.
type Exporter interface {
	Export(ctx context.Context, dest Destination, snap *Snapshot) error
}
