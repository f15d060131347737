package severity_test

import (
	"context"
	"testing"

	"github.com/safecity/safecity/internal/domain/severity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeightedScorer(t *testing.T) {
	Convey("Given a scorer with category weights", t, func() {
		scorer := severity.NewWeightedScorer(
			severity.WithCategoryWeights(map[string]float64{
				"Robbery":  4.0,
				"Theft":    2.0,
				"Nonsense": -1.0, // dropped: non-positive
			}, 1.5),
		)
		ctx := context.Background()

		Convey("When scoring a known category", func() {
			res, err := scorer.Score(ctx, severity.Input{Borough: "Camden", Major: "Robbery", Count: 10})

			Convey("Then severity is count times weight", func() {
				So(err, ShouldBeNil)
				So(res.Severity, ShouldEqual, 40.0)
				So(res.Weight, ShouldEqual, 4.0)
				So(res.Borough, ShouldEqual, "Camden")
			})
		})

		Convey("When scoring an unknown category", func() {
			res, err := scorer.Score(ctx, severity.Input{Borough: "Camden", Major: "Fraud", Count: 4})

			Convey("Then the fallback weight applies", func() {
				So(err, ShouldBeNil)
				So(res.Severity, ShouldEqual, 6.0)
			})
		})

		Convey("When scoring a dropped non-positive weight", func() {
			res, err := scorer.Score(ctx, severity.Input{Major: "Nonsense", Count: 2})

			Convey("Then the fallback weight applies", func() {
				So(err, ShouldBeNil)
				So(res.Severity, ShouldEqual, 3.0)
			})
		})

		Convey("When the count is negative", func() {
			_, err := scorer.Score(ctx, severity.Input{Major: "Theft", Count: -1})

			Convey("Then scoring should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := scorer.Score(cancelled, severity.Input{Major: "Theft", Count: 1})

			Convey("Then scoring should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a scorer with no options", t, func() {
		scorer := severity.NewWeightedScorer()

		Convey("Then every category gets the default weight", func() {
			So(scorer.Weight("Anything"), ShouldEqual, 1.0)
		})
	})
}
