package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/downfa11-org/logsnap/pkg/snapshot"
	"github.com/downfa11-org/logsnap/pkg/types"
	"github.com/downfa11-org/logsnap/util"
)

type jsonEntry struct {
	Key       *string `json:"key"`
	Value     string  `json:"value"`
	Partition int     `json:"partition"`
	Offset    int64   `json:"offset"`
	Time      string  `json:"time,omitempty"`
}

func (e *FileExporter) exportJSONL(dest snapshot.Destination, snap *snapshot.Snapshot) (string, error) {
	path := filepath.Join(e.dir, dest.Name+jsonlExt(e.compression))

	var buf bytes.Buffer
	write := func(rec types.Record) error {
		if dest.Raw {
			buf.Write(rec.Value)
			buf.WriteByte('\n')
			return nil
		}
		line, err := json.Marshal(entryFor(rec, dest.KeyKind))
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
		return nil
	}

	if snap.Compacted {
		// Deterministic file layout for a map-shaped snapshot.
		keys := make([]string, 0, len(snap.Table))
		for k := range snap.Table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := write(snap.Table[k]); err != nil {
				return "", err
			}
		}
	} else {
		for _, rec := range snap.Records {
			if err := write(rec); err != nil {
				return "", err
			}
		}
	}

	data, err := util.CompressMessage(buf.Bytes(), e.compression)
	if err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}
	if err := writeFileSync(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func entryFor(rec types.Record, kind types.KeyKind) jsonEntry {
	entry := jsonEntry{
		Value:     string(rec.Value),
		Partition: rec.Partition,
		Offset:    rec.Offset,
	}
	if !rec.Time.IsZero() {
		entry.Time = rec.Time.UTC().Format(time.RFC3339Nano)
	}
	if rec.Key != nil {
		rendered, err := kind.Render(rec.Key)
		if err != nil {
			util.Warn("Key render failed at %d[%d], falling back to bytes: %v", rec.Partition, rec.Offset, err)
			rendered, _ = types.KeyKindBytes.Render(rec.Key)
		}
		entry.Key = &rendered
	}
	return entry
}

func jsonlExt(compression string) string {
	switch compression {
	case "gzip":
		return ".jsonl.gz"
	case "snappy":
		return ".jsonl.snappy"
	case "lz4":
		return ".jsonl.lz4"
	default:
		return ".jsonl"
	}
}
