package types

import (
	"context"
	"time"
)

// PartitionReader is a handle bound to a single partition. Each drain
// task owns exactly one reader and must close it on every exit path.
type PartitionReader interface {
	// SetOffset positions the reader at an absolute offset before the
	// first Fetch.
	SetOffset(offset int64) error

	// Fetch blocks until the next message is available, the context is
	// cancelled, or the pull fails.
	Fetch(ctx context.Context) (Record, error)

	Close() error
}

// MetadataClient answers topic metadata and offset queries. It is a
// short-lived handle, released before any drain starts.
type MetadataClient interface {
	// Partitions returns the partition IDs of a topic.
	Partitions(ctx context.Context, topic string) ([]int, error)

	// Offsets returns the earliest retained offset and the first
	// unwritten offset of a partition, captured at call time.
	Offsets(ctx context.Context, topic string, partition int) (low, high int64, err error)

	// OffsetAt resolves the first offset whose timestamp is at or
	// after t, for start-from-date snapshots.
	OffsetAt(ctx context.Context, topic string, partition int, t time.Time) (int64, error)

	Close() error
}

// ReaderFactory produces fresh handles bound to the log cluster.
type ReaderFactory interface {
	Metadata() (MetadataClient, error)
	Reader(topic string, partition int) PartitionReader
}
