package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SnapshotsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logsnap_snapshots_total",
		Help: "Total number of topic snapshots completed successfully",
	})

	SnapshotFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logsnap_snapshot_failures_total",
		Help: "Total number of topic snapshots that failed",
	})

	RecordsDrained = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logsnap_records_drained_total",
		Help: "Total number of records drained across all partitions",
	})

	PartitionsDrained = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logsnap_partitions_drained_total",
		Help: "Total number of ready partitions drained",
	})

	SnapshotDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "logsnap_snapshot_duration_seconds",
		Help:    "Histogram of end-to-end topic snapshot duration",
		Buckets: prometheus.DefBuckets,
	})

	CompactionRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "logsnap_compaction_ratio",
		Help: "Exported entries divided by drained records for the last snapshot",
	})
)
