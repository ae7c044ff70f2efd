package snapshot_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/downfa11-org/logsnap/pkg/types"
)

// fakeReader serves a scripted partition log; Fetch past the end
// blocks until cancellation, like a live partition with no traffic.
type fakeReader struct {
	mu      sync.Mutex
	records []types.Record
	pos     int
	closed  int
	failAt  int
	failErr error
	fetches int
}

func scriptedReader(partition int, low, high int64) *fakeReader {
	records := make([]types.Record, 0, high-low)
	for off := low; off < high; off++ {
		records = append(records, types.Record{
			Key:       []byte(fmt.Sprintf("p%d-k%d", partition, off)),
			Value:     []byte(fmt.Sprintf("p%d-v%d", partition, off)),
			Partition: partition,
			Offset:    off,
		})
	}
	return &fakeReader{records: records, failAt: -1}
}

func (r *fakeReader) SetOffset(offset int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.pos < len(r.records) && r.records[r.pos].Offset < offset {
		r.pos++
	}
	return nil
}

func (r *fakeReader) Fetch(ctx context.Context) (types.Record, error) {
	r.mu.Lock()
	fetch := r.fetches
	r.fetches++
	if r.failAt >= 0 && fetch == r.failAt {
		r.mu.Unlock()
		return types.Record{}, r.failErr
	}
	if r.pos >= len(r.records) {
		r.mu.Unlock()
		<-ctx.Done()
		return types.Record{}, ctx.Err()
	}
	rec := r.records[r.pos]
	r.pos++
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return types.Record{}, err
	}
	return rec, nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

type fakeMetadata struct {
	partitions []int
	offsets    map[int][2]int64
	startAt    map[int]int64
	closed     int
}

func (m *fakeMetadata) Partitions(ctx context.Context, topic string) ([]int, error) {
	return m.partitions, nil
}

func (m *fakeMetadata) Offsets(ctx context.Context, topic string, partition int) (int64, int64, error) {
	pair, ok := m.offsets[partition]
	if !ok {
		return 0, 0, fmt.Errorf("unknown partition %d", partition)
	}
	return pair[0], pair[1], nil
}

func (m *fakeMetadata) OffsetAt(ctx context.Context, topic string, partition int, t time.Time) (int64, error) {
	return m.startAt[partition], nil
}

func (m *fakeMetadata) Close() error {
	m.closed++
	return nil
}

// fakeFactory tracks every reader it opens, so tests can assert that
// close counts match open counts.
type fakeFactory struct {
	mu      sync.Mutex
	md      *fakeMetadata
	readers map[int]*fakeReader
	opened  []*fakeReader
}

func (f *fakeFactory) Metadata() (types.MetadataClient, error) {
	return f.md, nil
}

func (f *fakeFactory) Reader(topic string, partition int) types.PartitionReader {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.readers[partition]
	if !ok {
		r = scriptedReader(partition, 0, 0)
	}
	f.opened = append(f.opened, r)
	return r
}

func (f *fakeFactory) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opened)
}

func (f *fakeFactory) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.opened {
		r.mu.Lock()
		n += r.closed
		r.mu.Unlock()
	}
	return n
}
