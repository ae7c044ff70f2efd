package watermark

import (
	"context"
	"sort"
	"time"

	"github.com/downfa11-org/logsnap/pkg/types"
	"github.com/downfa11-org/logsnap/util"
)

// Load captures a topic watermark: it discovers the topic's partitions,
// queries each partition's low/high offset pair and keeps only ready
// partitions. The metadata handle is released before returning,
// whichever path is taken. Every query is bounded by timeout.
func Load(ctx context.Context, factory types.ReaderFactory, topic string, timeout time.Duration) (Topic, error) {
	md, err := factory.Metadata()
	if err != nil {
		return Topic{}, &types.MetadataError{Topic: topic, Err: err}
	}
	defer func() {
		if cerr := md.Close(); cerr != nil {
			util.Warn("Topic [%s] metadata handle close failed: %v", topic, cerr)
		}
	}()

	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ids, err := md.Partitions(queryCtx, topic)
	if err != nil {
		if types.IsCancellation(err) && ctx.Err() != nil {
			return Topic{}, &types.CancelledError{Err: err}
		}
		return Topic{}, &types.MetadataError{Topic: topic, Err: err}
	}
	sort.Ints(ids)

	tw := Topic{Name: topic, Partitions: make([]Partition, 0, len(ids))}
	for _, id := range ids {
		low, high, err := md.Offsets(queryCtx, topic, id)
		if err != nil {
			// Partial success still aborts the load: a snapshot that is
			// silently missing a live partition is worse than no snapshot.
			if types.IsCancellation(err) && ctx.Err() != nil {
				return Topic{}, &types.CancelledError{Err: err}
			}
			return Topic{}, &types.WatermarkQueryError{Topic: topic, Partition: id, Err: err}
		}

		pw := Partition{Topic: topic, ID: id, Low: low, High: high}
		if !pw.Ready() {
			util.Debug("Topic [%s] partition %d empty (offset %d), skipping", topic, id, low)
			continue
		}
		tw.Partitions = append(tw.Partitions, pw)
	}

	util.Debug("Topic [%s] watermark captured: %d/%d partitions ready", topic, len(tw.Partitions), len(ids))
	return tw, nil
}
