package watermark

// Partition records one partition's read window at capture time.
// Low is the earliest retained offset, High the first offset not yet
// written (exclusive bound). Immutable once constructed.
type Partition struct {
	Topic string
	ID    int
	Low   int64
	High  int64
}

// Ready reports whether the partition has at least one readable
// message. Partitions with High == Low are excluded from the topic
// watermark.
func (p Partition) Ready() bool {
	return p.High > p.Low
}

// Reached reports whether offset has hit the watermark bound. High is
// exclusive, so the drain stops once the message at High-1 has been
// observed.
func (p Partition) Reached(offset int64) bool {
	return offset >= p.High-1
}

// Topic is the set of ready partition watermarks for one topic at one
// point in time. Captured once per snapshot, before any drain starts.
type Topic struct {
	Name       string
	Partitions []Partition
}

// Empty reports whether the topic had no readable data at capture
// time. Not an error: downstream produces an empty snapshot.
func (t Topic) Empty() bool {
	return len(t.Partitions) == 0
}
