package types

import (
	"context"
	"errors"
	"fmt"
)

// MetadataError reports that topic or partition discovery failed.
type MetadataError struct {
	Topic string
	Err   error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata for topic %q: %v", e.Topic, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// WatermarkQueryError reports that the low/high offset query failed
// for one partition. A single failing partition aborts the whole load.
type WatermarkQueryError struct {
	Topic     string
	Partition int
	Err       error
}

func (e *WatermarkQueryError) Error() string {
	return fmt.Sprintf("offset query %s[%d]: %v", e.Topic, e.Partition, e.Err)
}

func (e *WatermarkQueryError) Unwrap() error { return e.Err }

// ReadError reports a failed message pull or decode during a drain.
type ReadError struct {
	Topic     string
	Partition int
	Offset    int64
	Err       error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s[%d] at offset %d: %v", e.Topic, e.Partition, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// CancelledError reports that cooperative cancellation interrupted
// the snapshot. Partial results are never kept.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("snapshot cancelled: %v", e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// IsCancellation reports whether err is a cancellation-kind failure.
func IsCancellation(err error) bool {
	var ce *CancelledError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
