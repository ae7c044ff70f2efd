package watermark_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/downfa11-org/logsnap/pkg/types"
	"github.com/downfa11-org/logsnap/pkg/watermark"
)

type fakeMetadata struct {
	partitions []int
	partsErr   error
	offsets    map[int][2]int64
	offsetErr  map[int]error
	closed     int
}

func (m *fakeMetadata) Partitions(ctx context.Context, topic string) ([]int, error) {
	return m.partitions, m.partsErr
}

func (m *fakeMetadata) Offsets(ctx context.Context, topic string, partition int) (int64, int64, error) {
	if err := m.offsetErr[partition]; err != nil {
		return 0, 0, err
	}
	pair, ok := m.offsets[partition]
	if !ok {
		return 0, 0, fmt.Errorf("unknown partition %d", partition)
	}
	return pair[0], pair[1], nil
}

func (m *fakeMetadata) OffsetAt(ctx context.Context, topic string, partition int, t time.Time) (int64, error) {
	return 0, nil
}

func (m *fakeMetadata) Close() error {
	m.closed++
	return nil
}

type fakeFactory struct {
	md    *fakeMetadata
	mdErr error
}

func (f *fakeFactory) Metadata() (types.MetadataClient, error) {
	return f.md, f.mdErr
}

func (f *fakeFactory) Reader(topic string, partition int) types.PartitionReader {
	panic("loader must not open partition readers")
}

func TestLoadFiltersEmptyPartitions(t *testing.T) {
	md := &fakeMetadata{
		partitions: []int{2, 0, 1, 3},
		offsets: map[int][2]int64{
			0: {0, 5},
			1: {7, 7},   // empty, must be excluded
			2: {3, 4},
			3: {10, 10}, // empty, must be excluded
		},
	}
	factory := &fakeFactory{md: md}

	tw, err := watermark.Load(context.Background(), factory, "orders", time.Second)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(tw.Partitions) != 2 {
		t.Fatalf("expected 2 ready partitions, got %d", len(tw.Partitions))
	}
	if tw.Partitions[0].ID != 0 || tw.Partitions[0].Low != 0 || tw.Partitions[0].High != 5 {
		t.Fatalf("partition 0 watermark wrong: %+v", tw.Partitions[0])
	}
	if tw.Partitions[1].ID != 2 || tw.Partitions[1].Low != 3 || tw.Partitions[1].High != 4 {
		t.Fatalf("partition 2 watermark wrong: %+v", tw.Partitions[1])
	}
	if md.closed != 1 {
		t.Fatalf("metadata handle closed %d times, want 1", md.closed)
	}
}

func TestLoadEmptyTopic(t *testing.T) {
	md := &fakeMetadata{
		partitions: []int{0, 1},
		offsets:    map[int][2]int64{0: {0, 0}, 1: {4, 4}},
	}

	tw, err := watermark.Load(context.Background(), &fakeFactory{md: md}, "orders", time.Second)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !tw.Empty() {
		t.Fatalf("all-empty topic should yield an empty watermark, got %+v", tw)
	}
}

func TestLoadMetadataError(t *testing.T) {
	md := &fakeMetadata{partsErr: errors.New("unknown topic")}

	_, err := watermark.Load(context.Background(), &fakeFactory{md: md}, "missing", time.Second)
	var merr *types.MetadataError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MetadataError, got %v", err)
	}
	if md.closed != 1 {
		t.Fatalf("metadata handle closed %d times, want 1", md.closed)
	}
}

func TestLoadOffsetQueryErrorAbortsWholeLoad(t *testing.T) {
	md := &fakeMetadata{
		partitions: []int{0, 1, 2},
		offsets:    map[int][2]int64{0: {0, 5}, 2: {0, 9}},
		offsetErr:  map[int]error{1: errors.New("leader unavailable")},
	}

	_, err := watermark.Load(context.Background(), &fakeFactory{md: md}, "orders", time.Second)
	var werr *types.WatermarkQueryError
	if !errors.As(err, &werr) {
		t.Fatalf("expected WatermarkQueryError, got %v", err)
	}
	if werr.Partition != 1 {
		t.Fatalf("expected failing partition 1, got %d", werr.Partition)
	}
	if md.closed != 1 {
		t.Fatalf("metadata handle closed %d times, want 1", md.closed)
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	md := &fakeMetadata{partsErr: context.Canceled}
	_, err := watermark.Load(ctx, &fakeFactory{md: md}, "orders", time.Second)
	if !types.IsCancellation(err) {
		t.Fatalf("expected cancellation-kind error, got %v", err)
	}
	if md.closed != 1 {
		t.Fatalf("metadata handle closed %d times, want 1", md.closed)
	}
}
