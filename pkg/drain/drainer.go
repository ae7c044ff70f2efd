package drain

import (
	"context"

	"github.com/downfa11-org/logsnap/pkg/types"
	"github.com/downfa11-org/logsnap/pkg/watermark"
	"github.com/downfa11-org/logsnap/util"
)

// Drain reads one partition to its captured watermark and returns the
// buffered records in log order. start overrides the partition's low
// offset when non-negative; values below Low are clamped to Low.
//
// The reader is closed on every exit path. The loop always terminates:
// the bound was captured before reading began, so the target cannot
// advance under active writes.
func Drain(ctx context.Context, pw watermark.Partition, reader types.PartitionReader, start int64) ([]types.Record, error) {
	defer func() {
		if err := reader.Close(); err != nil {
			util.Warn("Partition [%d] reader close failed: %v", pw.ID, err)
		}
	}()

	from := pw.Low
	if start > from {
		from = start
	}
	if from >= pw.High {
		return nil, nil
	}
	if err := reader.SetOffset(from); err != nil {
		return nil, &types.ReadError{Topic: pw.Topic, Partition: pw.ID, Offset: from, Err: err}
	}

	records := make([]types.Record, 0, pw.High-from)
	next := from
	for {
		rec, err := reader.Fetch(ctx)
		if err != nil {
			if types.IsCancellation(err) {
				return nil, &types.CancelledError{Err: err}
			}
			return nil, &types.ReadError{Topic: pw.Topic, Partition: pw.ID, Offset: next, Err: err}
		}

		// Buffer first, then test the bound: the message at High-1
		// itself belongs to the snapshot.
		records = append(records, rec)
		if pw.Reached(rec.Offset) {
			break
		}
		next = rec.Offset + 1
	}

	util.Debug("Partition [%d] drained %d records, offsets %d to %d",
		pw.ID, len(records), from, records[len(records)-1].Offset)
	return records, nil
}
