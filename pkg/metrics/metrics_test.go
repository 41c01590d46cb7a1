package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording document metrics", func() {
			Convey("Then it should record parsed documents", func() {
				So(func() {
					RecordDocumentParsed()
					RecordDocumentParsed()
					RecordDocumentMalformed()
					RecordDocumentDuplicate()
					RecordProfileIDMismatch()
				}, ShouldNotPanic)
			})

			Convey("And it should record branch and join outcomes", func() {
				So(func() {
					RecordBranchUnavailable("class_mix")
					RecordBranchUnavailable("education")
					RecordJoinMiss("class_mix")
					RecordJoinMiss("education")
					RecordReferenceRowRejected("translations")
				}, ShouldNotPanic)
			})

			Convey("And it should record batch metrics", func() {
				So(func() {
					RecordReportBuilt()
					RecordBatchDuration(120.0)
					UpdateBatchSize(42)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should record queue operations", func() {
				So(func() {
					UpdateQueueSize(10)
					UpdateQueueCapacity(1024)
					UpdateQueueUtilization(0.5)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording worker metrics", func() {
			Convey("Then it should record worker activity", func() {
				So(func() {
					UpdateWorkerCount(8)
					RecordWorkerProcessingLatency(15.0)
					RecordWorkerError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording store and enrichment metrics", func() {
			Convey("Then it should record store activity", func() {
				So(func() {
					UpdateStoreRows(100)
					RecordStoreSnapshot()
				}, ShouldNotPanic)
			})

			Convey("And it should record enrichment outcomes", func() {
				So(func() {
					RecordEnrichFetch("ok")
					RecordEnrichFetch("error")
					RecordEnrichFetch("disabled")
					RecordEnrichLatency(35.0)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("When gathering after recording", func() {
			RecordDocumentParsed()
			families, err := GetRegistry().Gather()

			Convey("Then registered metric families come back", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
