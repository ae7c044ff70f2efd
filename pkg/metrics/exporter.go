package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	prometheus.MustRegister(SnapshotsTotal, SnapshotFailures, RecordsDrained,
		PartitionsDrained, SnapshotDuration, CompactionRatio)
}

func StartMetricsServer(port int) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", port)
		fmt.Println("[METRICS] Prometheus exporter listening on", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			fmt.Printf("[METRICS] Failed to start metrics server: %v\n", err)
		}
	}()
}

// PushSnapshot updates the snapshot metrics after a completed topic run.
func PushSnapshot(topic string, drained, exported, partitions int, elapsedSeconds float64) {
	SnapshotsTotal.Inc()
	RecordsDrained.Add(float64(drained))
	PartitionsDrained.Add(float64(partitions))
	SnapshotDuration.Observe(elapsedSeconds)
	if drained > 0 {
		CompactionRatio.Set(float64(exported) / float64(drained))
	}
}
