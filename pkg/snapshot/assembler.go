package snapshot

import (
	"context"
	"sync"

	"github.com/downfa11-org/logsnap/pkg/drain"
	"github.com/downfa11-org/logsnap/pkg/types"
	"github.com/downfa11-org/logsnap/pkg/watermark"
	"github.com/downfa11-org/logsnap/util"
)

// Assemble drains every ready partition of tw concurrently, one
// goroutine and one dedicated reader per partition, and concatenates
// the results in partition order. Within-partition order is preserved;
// starts optionally overrides the begin offset per partition ID.
//
// All-or-nothing: if any drain fails, the whole assembly fails. Every
// goroutine is awaited before the error is returned, so no reader
// outlives this call.
func Assemble(ctx context.Context, tw watermark.Topic, factory types.ReaderFactory, starts map[int]int64) ([]types.Record, error) {
	if tw.Empty() {
		return nil, nil
	}

	n := len(tw.Partitions)
	results := make([][]types.Record, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i, pw := range tw.Partitions {
		wg.Add(1)
		go func(i int, pw watermark.Partition) {
			defer wg.Done()

			start := int64(-1)
			if s, ok := starts[pw.ID]; ok {
				start = s
			}
			reader := factory.Reader(pw.Topic, pw.ID)
			results[i], errs[i] = drain.Drain(ctx, pw, reader, start)
		}(i, pw)
	}
	wg.Wait()

	// Surface one failure, preferring a real error over a cancellation
	// that only fell out of another partition's failure.
	var firstErr error
	for i, err := range errs {
		if err == nil {
			continue
		}
		util.Warn("Topic [%s] partition %d drain failed: %v", tw.Name, tw.Partitions[i].ID, err)
		if firstErr == nil || (types.IsCancellation(firstErr) && !types.IsCancellation(err)) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	total := 0
	for _, part := range results {
		total += len(part)
	}
	records := make([]types.Record, 0, total)
	for _, part := range results {
		records = append(records, part...)
	}
	return records, nil
}
