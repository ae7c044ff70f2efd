package snapshot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/downfa11-org/logsnap/pkg/snapshot"
	"github.com/downfa11-org/logsnap/pkg/types"
	"github.com/downfa11-org/logsnap/pkg/watermark"
)

func testWatermark(topic string, highs map[int]int64) watermark.Topic {
	tw := watermark.Topic{Name: topic}
	for id := 0; id < len(highs); id++ {
		tw.Partitions = append(tw.Partitions, watermark.Partition{
			Topic: topic, ID: id, Low: 0, High: highs[id],
		})
	}
	return tw
}

func TestAssembleMergesAllPartitions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	factory := &fakeFactory{readers: map[int]*fakeReader{
		0: scriptedReader(0, 0, 3),
		1: scriptedReader(1, 0, 2),
		2: scriptedReader(2, 0, 4),
	}}
	tw := testWatermark("orders", map[int]int64{0: 3, 1: 2, 2: 4})

	records, err := snapshot.Assemble(ctx, tw, factory, nil)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(records) != 9 {
		t.Fatalf("expected 9 records total, got %d", len(records))
	}

	// Within-partition order must be preserved.
	last := make(map[int]int64)
	for _, rec := range records {
		if prev, ok := last[rec.Partition]; ok && rec.Offset != prev+1 {
			t.Fatalf("partition %d order broken: %d after %d", rec.Partition, rec.Offset, prev)
		}
		last[rec.Partition] = rec.Offset
	}

	if factory.closeCount() != factory.openCount() {
		t.Fatalf("reader leak: opened %d, closed %d", factory.openCount(), factory.closeCount())
	}
}

func TestAssembleAllOrNothing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	failing := scriptedReader(1, 0, 5)
	failing.failAt = 2
	failing.failErr = errors.New("broken pipe")

	factory := &fakeFactory{readers: map[int]*fakeReader{
		0: scriptedReader(0, 0, 5),
		1: failing,
		2: scriptedReader(2, 0, 5),
	}}
	tw := testWatermark("orders", map[int]int64{0: 5, 1: 5, 2: 5})

	records, err := snapshot.Assemble(ctx, tw, factory, nil)
	if err == nil {
		t.Fatalf("expected failure when one partition fails, got %d records", len(records))
	}
	var rerr *types.ReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ReadError, got %v", err)
	}
	if records != nil {
		t.Fatalf("partial output must not be returned on failure")
	}
	if factory.closeCount() != factory.openCount() {
		t.Fatalf("reader leak: opened %d, closed %d", factory.openCount(), factory.closeCount())
	}
}

func TestAssembleEmptyWatermark(t *testing.T) {
	factory := &fakeFactory{}

	records, err := snapshot.Assemble(context.Background(), watermark.Topic{Name: "orders"}, factory, nil)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if factory.openCount() != 0 {
		t.Fatalf("no readers should be opened for an empty watermark, got %d", factory.openCount())
	}
}

func TestAssembleStartOverrides(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	factory := &fakeFactory{readers: map[int]*fakeReader{
		0: scriptedReader(0, 0, 6),
		1: scriptedReader(1, 0, 6),
	}}
	tw := testWatermark("orders", map[int]int64{0: 6, 1: 6})

	records, err := snapshot.Assemble(ctx, tw, factory, map[int]int64{0: 4})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	// Partition 0 drains offsets {4,5}, partition 1 all six.
	if len(records) != 8 {
		t.Fatalf("expected 8 records, got %d", len(records))
	}
}
