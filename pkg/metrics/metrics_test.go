package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with defaults", func() {
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "podium")
				So(manager.subsystem, ShouldEqual, "moderation")
			})
		})
	})

	Convey("Given custom options", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(
			WithNamespace("test-namespace"),
			WithSubsystem("test-subsystem"),
			WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
			WithPrometheusRegistry(registry),
		)

		Convey("Then the options should be applied", func() {
			So(manager.namespace, ShouldEqual, "test-namespace")
			So(manager.subsystem, ShouldEqual, "test-subsystem")
			So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording domain events", func() {
			Convey("Then the recorders should not panic", func() {
				So(func() {
					RecordSubmissionReceived()
					RecordSubmissionDuplicate()
					RecordValidationFailure()
					RecordAthleteRegistered()
					RecordDecision("approved")
					RecordDecision("rejected")
					RecordDecisionConflict()
					RecordDashboardBuildDuration(12.5)
					RecordStoreOpLatency("insert_video", 1.5)
					RecordStoreError("insert_video")
					UpdateTotalAthletes(10)
					UpdateTotalVideos(25)
					UpdatePendingReview(3)
					RecordActivityRecorded()
					RecordRecorderLatency(0.4)
					RecordRecorderError()
					RecordHTTPRequest("videos", "POST", "201")
					RecordHTTPRequestDuration("videos", "POST", "201", 3.2)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the package registry", t, func() {
		Convey("Then it should be gatherable", func() {
			registry := GetRegistry()
			So(registry, ShouldNotBeNil)
			_, err := registry.Gather()
			So(err, ShouldBeNil)
		})
	})
}
