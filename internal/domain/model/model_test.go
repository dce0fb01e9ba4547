package model_test

import (
	"testing"
	"time"

	model "github.com/okian/podium/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestStatus(t *testing.T) {
	convey.Convey("Given the moderation status values", t, func() {
		convey.Convey("Then pending is valid but not terminal", func() {
			convey.So(model.StatusPending.Valid(), convey.ShouldBeTrue)
			convey.So(model.StatusPending.Terminal(), convey.ShouldBeFalse)
		})

		convey.Convey("Then approved and rejected are terminal", func() {
			convey.So(model.StatusApproved.Terminal(), convey.ShouldBeTrue)
			convey.So(model.StatusRejected.Terminal(), convey.ShouldBeTrue)
		})

		convey.Convey("Then an unknown value is invalid", func() {
			convey.So(model.Status("archived").Valid(), convey.ShouldBeFalse)
			convey.So(model.Status("archived").Terminal(), convey.ShouldBeFalse)
		})
	})
}

func TestGender(t *testing.T) {
	convey.Convey("Given the gender enum", t, func() {
		convey.Convey("Then the three known values are valid", func() {
			convey.So(model.GenderMale.Valid(), convey.ShouldBeTrue)
			convey.So(model.GenderFemale.Valid(), convey.ShouldBeTrue)
			convey.So(model.GenderOther.Valid(), convey.ShouldBeTrue)
		})

		convey.Convey("Then anything else is rejected", func() {
			convey.So(model.Gender("").Valid(), convey.ShouldBeFalse)
			convey.So(model.Gender("unknown").Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestVideo(t *testing.T) {
	convey.Convey("Given a freshly built submission", t, func() {
		now := time.Now().UTC()
		video := model.Video{
			ID:          "video-1",
			AthleteID:   "athlete-1",
			TestType:    "Vertical Jump",
			SubmittedAt: now,
			Status:      model.StatusPending,
			AIVerification: model.Verification{
				Verified:   true,
				Confidence: 0.92,
				Anomalies:  []string{},
				Metrics:    map[string]float64{"jumpHeight": 45.2},
			},
		}

		convey.Convey("Then reviewer fields are absent while pending", func() {
			convey.So(video.Status, convey.ShouldEqual, model.StatusPending)
			convey.So(video.ReviewerID, convey.ShouldBeEmpty)
			convey.So(video.ReviewedAt, convey.ShouldBeNil)
		})

		convey.Convey("Then the verification payload is carried untouched", func() {
			convey.So(video.AIVerification.Confidence, convey.ShouldEqual, 0.92)
			convey.So(video.AIVerification.Metrics["jumpHeight"], convey.ShouldEqual, 45.2)
		})
	})
}
