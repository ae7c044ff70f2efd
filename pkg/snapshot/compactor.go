package snapshot

import "github.com/downfa11-org/logsnap/pkg/types"

// Compact reduces the assembled sequence into the exportable snapshot.
// Pure reduction, no I/O.
//
// When compacting is false the sequence is materialized as-is, order
// and duplicate keys preserved. When true, a single forward pass folds
// the records into a key-to-record table: the last occurrence of a key
// wins, and records with a nil key are skipped outright, never
// inserted and never counted as an overwrite.
func Compact(topic string, records []types.Record, compacting bool) *Snapshot {
	if !compacting {
		return &Snapshot{Topic: topic, Records: records}
	}

	table := make(map[string]types.Record, len(records))
	for _, rec := range records {
		if rec.Key == nil {
			continue
		}
		table[string(rec.Key)] = rec
	}
	return &Snapshot{Topic: topic, Compacted: true, Table: table}
}
