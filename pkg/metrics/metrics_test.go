package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_ns"),
				WithSubsystem("test_sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.resolutions.WithLabelValues("team-based", "hitter").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_ns_test_sub_resolutions_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then every recorder accepts values without panicking", func() {
			So(func() {
				RecordResolution("player-specific", "hitter")
				RecordStrategyMatch("roster", "exact_canonical")
				RecordIdentityMiss("daily")
				UpdateUnmatchedNames(3)
				RecordAggregationLatency(0.4)
				RecordSnapshotPublished(2, 10, 100, 1.7e9)
				RecordSnapshotReloadDuration(12)
				RecordSnapshotReloadFailure()
				UpdateQueueSize(1)
				UpdateQueueCapacity(10)
				RecordQueueRejected("full")
				UpdateWorkerCount(4)
				RecordWorkerJob(0.2)
				RecordHTTPRequest("analyze", "GET", "200")
				RecordHTTPRequestDuration("analyze", "GET", "200", 1.5)
				RecordRateLimited("analyze")
				RecordErrorByComponent("corpus", "read")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry gathers them", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
