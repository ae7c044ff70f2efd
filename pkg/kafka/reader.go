package kafka

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/downfa11-org/logsnap/pkg/types"
)

// partitionReader adapts a kafka-go Reader bound to one partition.
type partitionReader struct {
	reader *kafkago.Reader
}

func (r *partitionReader) SetOffset(offset int64) error {
	return r.reader.SetOffset(offset)
}

func (r *partitionReader) Fetch(ctx context.Context) (types.Record, error) {
	msg, err := r.reader.ReadMessage(ctx)
	if err != nil {
		return types.Record{}, err
	}
	return types.Record{
		Key:       msg.Key,
		Value:     msg.Value,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Time:      msg.Time,
	}, nil
}

func (r *partitionReader) Close() error {
	return r.reader.Close()
}
