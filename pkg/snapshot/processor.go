package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/downfa11-org/logsnap/pkg/config"
	"github.com/downfa11-org/logsnap/pkg/filter"
	"github.com/downfa11-org/logsnap/pkg/metrics"
	"github.com/downfa11-org/logsnap/pkg/types"
	"github.com/downfa11-org/logsnap/pkg/watermark"
	"github.com/downfa11-org/logsnap/util"
)

// Processor runs the snapshot pipeline per topic: watermark load,
// concurrent assembly, filtering, compaction, export. It holds no
// state across runs.
type Processor struct {
	cfg      *config.Config
	factory  types.ReaderFactory
	exporter Exporter
}

func NewProcessor(cfg *config.Config, factory types.ReaderFactory, exporter Exporter) *Processor {
	return &Processor{cfg: cfg, factory: factory, exporter: exporter}
}

// Run snapshots every configured topic. Topics are independent: one
// topic failing does not stop the others, but the run as a whole
// reports failure. Cancellation stops the run immediately.
func (p *Processor) Run(ctx context.Context) error {
	var failed []string
	for _, tc := range p.cfg.Topics {
		if err := p.ProcessTopic(ctx, tc); err != nil {
			if types.IsCancellation(err) {
				return err
			}
			util.Error("Topic [%s] snapshot failed: %v", tc.Name, err)
			failed = append(failed, tc.Name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("snapshot failed for topics: %s", strings.Join(failed, ", "))
	}
	return nil
}

// ProcessTopic produces and exports one topic's snapshot. Any failure
// aborts the whole topic: no partial snapshot is ever exported.
func (p *Processor) ProcessTopic(ctx context.Context, tc config.TopicConfig) error {
	runID := uuid.NewString()
	started := time.Now()

	keyKind, err := types.ParseKeyKind(tc.KeyKind)
	if err != nil {
		metrics.SnapshotFailures.Inc()
		return err
	}
	flt, err := filter.FromConfig(tc.FilterKind, tc.FilterSample, keyKind)
	if err != nil {
		metrics.SnapshotFailures.Inc()
		return err
	}

	tw, err := watermark.Load(ctx, p.factory, tc.Name, p.cfg.MetadataTimeout())
	if err != nil {
		metrics.SnapshotFailures.Inc()
		return err
	}
	if tw.Empty() {
		util.Info("Topic [%s] has no readable data, exporting empty snapshot (run=%s)", tc.Name, runID)
	}

	starts, err := p.resolveStarts(ctx, tc, tw)
	if err != nil {
		metrics.SnapshotFailures.Inc()
		return err
	}

	records, err := Assemble(ctx, tw, p.factory, starts)
	if err != nil {
		metrics.SnapshotFailures.Inc()
		return err
	}

	kept := make([]types.Record, 0, len(records))
	for _, rec := range records {
		if flt.Match(rec.Key) {
			kept = append(kept, rec)
		}
	}

	snap := Compact(tc.Name, kept, tc.Compacting)
	if err := p.exporter.Export(ctx, Destination{Name: tc.Output, Raw: tc.Raw, KeyKind: keyKind}, snap); err != nil {
		metrics.SnapshotFailures.Inc()
		return fmt.Errorf("export topic %s: %w", tc.Name, err)
	}

	metrics.PushSnapshot(tc.Name, len(records), snap.Len(), len(tw.Partitions), time.Since(started).Seconds())
	util.Info("Topic [%s] snapshot complete: %d records drained, %d exported, %d partitions (run=%s, took %v)",
		tc.Name, len(records), snap.Len(), len(tw.Partitions), runID, time.Since(started).Round(time.Millisecond))
	return nil
}

// resolveStarts maps each ready partition to an explicit begin offset
// when the topic requests a start date or offset. The date is checked
// first: a file config with only start_date set leaves StartOffset at
// its zero value, which must not shadow the date. A nil map means
// every partition drains from its low offset.
func (p *Processor) resolveStarts(ctx context.Context, tc config.TopicConfig, tw watermark.Topic) (map[int]int64, error) {
	from, ok, err := tc.StartTime()
	if err != nil {
		return nil, err
	}
	if ok {
		if tw.Empty() {
			return nil, nil
		}
		return p.resolveDateStarts(ctx, tc, tw, from)
	}

	if tc.StartOffset >= 0 {
		starts := make(map[int]int64, len(tw.Partitions))
		for _, pw := range tw.Partitions {
			starts[pw.ID] = tc.StartOffset
		}
		return starts, nil
	}
	return nil, nil
}

func (p *Processor) resolveDateStarts(ctx context.Context, tc config.TopicConfig, tw watermark.Topic, from time.Time) (map[int]int64, error) {
	md, err := p.factory.Metadata()
	if err != nil {
		return nil, &types.MetadataError{Topic: tc.Name, Err: err}
	}
	defer func() {
		if cerr := md.Close(); cerr != nil {
			util.Warn("Topic [%s] metadata handle close failed: %v", tc.Name, cerr)
		}
	}()

	queryCtx, cancel := context.WithTimeout(ctx, p.cfg.MetadataTimeout())
	defer cancel()

	starts := make(map[int]int64, len(tw.Partitions))
	for _, pw := range tw.Partitions {
		off, err := md.OffsetAt(queryCtx, tc.Name, pw.ID, from)
		if err != nil {
			if types.IsCancellation(err) && ctx.Err() != nil {
				return nil, &types.CancelledError{Err: err}
			}
			return nil, &types.WatermarkQueryError{Topic: tc.Name, Partition: pw.ID, Err: err}
		}
		if off < 0 {
			// Offset query returns -1 when no message exists at or
			// after the date: the partition contributes nothing.
			off = pw.High
		}
		starts[pw.ID] = off
	}
	return starts, nil
}
