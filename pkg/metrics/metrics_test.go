package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with the default namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "mergington")
				So(manager.subsystem, ShouldEqual, "activities")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("school"),
				WithSubsystem("clubs"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.signups.Inc()

			Convey("Then collectors should carry the custom names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "school_clubs_signups_total")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
			})
		})

		Convey("When registering the same names twice on one registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second manager should panic", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording roster metrics", func() {
			before := testutil.ToFloat64(globalManager.signups)
			RecordSignup()
			RecordSignup()
			RecordRemoval()
			RecordRejection("signup", "already_signed_up")
			UpdateEnrollment("Chess Club", 3)
			UpdateRegistryTotals(9, 20)
			RecordStoreLatency("signup", 0.2)

			Convey("Then counters and gauges should reflect the calls", func() {
				So(testutil.ToFloat64(globalManager.signups)-before, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.enrollment.WithLabelValues("Chess Club")), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.activitiesTotal), ShouldEqual, 9)
				So(testutil.ToFloat64(globalManager.participantTotal), ShouldEqual, 20)
				So(testutil.ToFloat64(globalManager.rejections.WithLabelValues("signup", "already_signed_up")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording pipeline metrics", func() {
			So(func() {
				UpdateQueueSize(5)
				UpdateQueueCapacity(100)
				RecordQueueEnqueue()
				RecordQueueEnqueueError("queue_full")
				UpdateWorkerCount(2)
				RecordWorkerProcessed(1.5)
				RecordWorkerError()
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("activities", "GET", "200", 1.2)
				RecordHTTPError("signup", "POST", "not_found")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("When exporting the custom registry", func() {
			RecordSignup()
			expected := `
# HELP mergington_activities_worker_count Number of roster change workers
# TYPE mergington_activities_worker_count gauge
mergington_activities_worker_count 4
`
			UpdateWorkerCount(4)

			Convey("Then the exposition should contain our gauges", func() {
				err := testutil.GatherAndCompare(GetRegistry(), strings.NewReader(expected), "mergington_activities_worker_count")
				So(err, ShouldBeNil)
			})
		})
	})
}
