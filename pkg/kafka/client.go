package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/downfa11-org/logsnap/pkg/types"
)

// Factory produces metadata and partition reader handles bound to a
// Kafka cluster. Every handle it hands out is independently closable;
// handles are never shared between drain tasks.
type Factory struct {
	brokers []string
	dialer  *kafkago.Dialer
}

func NewFactory(brokers []string, dialTimeout time.Duration) *Factory {
	return &Factory{
		brokers: brokers,
		dialer: &kafkago.Dialer{
			Timeout:   dialTimeout,
			DualStack: true,
		},
	}
}

func (f *Factory) Metadata() (types.MetadataClient, error) {
	if len(f.brokers) == 0 {
		return nil, fmt.Errorf("no brokers configured")
	}
	return &metadataClient{brokers: f.brokers, dialer: f.dialer, conns: make(map[string]*kafkago.Conn)}, nil
}

func (f *Factory) Reader(topic string, partition int) types.PartitionReader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   f.brokers,
		Topic:     topic,
		Partition: partition,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   500 * time.Millisecond,
		Dialer:    f.dialer,
	})
	return &partitionReader{reader: r}
}

// metadataClient is the short-lived discovery handle. Leader
// connections are cached per partition and released by Close before
// any drain starts.
type metadataClient struct {
	brokers []string
	dialer  *kafkago.Dialer

	mu    sync.Mutex
	conns map[string]*kafkago.Conn
}

func (m *metadataClient) Partitions(ctx context.Context, topic string) ([]int, error) {
	var lastErr error
	for _, broker := range m.brokers {
		parts, err := m.dialer.LookupPartitions(ctx, "tcp", broker, topic)
		if err != nil {
			lastErr = err
			continue
		}
		if len(parts) == 0 {
			return nil, fmt.Errorf("topic %q does not exist", topic)
		}
		ids := make([]int, 0, len(parts))
		for _, p := range parts {
			ids = append(ids, p.ID)
		}
		return ids, nil
	}
	return nil, fmt.Errorf("lookup partitions for %q: %w", topic, lastErr)
}

func (m *metadataClient) Offsets(ctx context.Context, topic string, partition int) (int64, int64, error) {
	conn, err := m.leaderConn(ctx, topic, partition)
	if err != nil {
		return 0, 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return 0, 0, err
		}
	}
	return conn.ReadOffsets()
}

func (m *metadataClient) OffsetAt(ctx context.Context, topic string, partition int, t time.Time) (int64, error) {
	conn, err := m.leaderConn(ctx, topic, partition)
	if err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return 0, err
		}
	}
	return conn.ReadOffset(t)
}

func (m *metadataClient) leaderConn(ctx context.Context, topic string, partition int) (*kafkago.Conn, error) {
	key := fmt.Sprintf("%s/%d", topic, partition)

	m.mu.Lock()
	defer m.mu.Unlock()
	if conn, ok := m.conns[key]; ok {
		return conn, nil
	}

	var lastErr error
	for _, broker := range m.brokers {
		conn, err := m.dialer.DialLeader(ctx, "tcp", broker, topic, partition)
		if err != nil {
			lastErr = err
			continue
		}
		m.conns[key] = conn
		return conn, nil
	}
	return nil, fmt.Errorf("dial leader %s[%d]: %w", topic, partition, lastErr)
}

func (m *metadataClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for key, conn := range m.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.conns, key)
	}
	return firstErr
}
