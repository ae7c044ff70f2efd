package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/downfa11-org/logsnap/pkg/snapshot"
	"github.com/downfa11-org/logsnap/pkg/types"
)

const parquetSchema = `{
	"Tag": "name=snapshot, repetitiontype=REQUIRED",
	"Fields": [
		{"Tag": "name=key, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"},
		{"Tag": "name=value, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
		{"Tag": "name=partition, type=INT32, repetitiontype=REQUIRED"},
		{"Tag": "name=offset, type=INT64, repetitiontype=REQUIRED"},
		{"Tag": "name=timestamp_ms, type=INT64, repetitiontype=REQUIRED"}
	]
}`

const parquetRawSchema = `{
	"Tag": "name=snapshot, repetitiontype=REQUIRED",
	"Fields": [
		{"Tag": "name=value, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"}
	]
}`

func (e *FileExporter) exportParquet(dest snapshot.Destination, snap *snapshot.Snapshot) (string, error) {
	path := filepath.Join(e.dir, dest.Name+".parquet")

	schema := parquetSchema
	if dest.Raw {
		schema = parquetRawSchema
	}

	buf := &bytes.Buffer{}
	pfw := writerfile.NewWriterFile(buf)
	pw, err := writer.NewJSONWriter(schema, pfw, 4)
	if err != nil {
		return "", fmt.Errorf("parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	write := func(rec types.Record) error {
		row, err := parquetRow(rec, dest)
		if err != nil {
			return err
		}
		return pw.Write(row)
	}

	var writeErr error
	if snap.Compacted {
		keys := make([]string, 0, len(snap.Table))
		for k := range snap.Table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if writeErr = write(snap.Table[k]); writeErr != nil {
				break
			}
		}
	} else {
		for _, rec := range snap.Records {
			if writeErr = write(rec); writeErr != nil {
				break
			}
		}
	}
	if writeErr != nil {
		_ = pw.WriteStop()
		_ = pfw.Close()
		return "", fmt.Errorf("parquet write: %w", writeErr)
	}

	if err := pw.WriteStop(); err != nil {
		_ = pfw.Close()
		return "", fmt.Errorf("parquet finalize: %w", err)
	}
	if err := pfw.Close(); err != nil {
		return "", err
	}

	if err := writeFileSync(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func parquetRow(rec types.Record, dest snapshot.Destination) (string, error) {
	if dest.Raw {
		row, err := json.Marshal(map[string]interface{}{"value": string(rec.Value)})
		return string(row), err
	}

	entry := entryFor(rec, dest.KeyKind)
	row, err := json.Marshal(map[string]interface{}{
		"key":          entry.Key,
		"value":        entry.Value,
		"partition":    int32(rec.Partition),
		"offset":       rec.Offset,
		"timestamp_ms": rec.Time.UnixMilli(),
	})
	return string(row), err
}
