package geo_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/safecity/safecity/internal/domain/geo"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Camden"},
      "geometry": {"type": "Polygon", "coordinates": [[[-0.2, 51.5], [-0.1, 51.5], [-0.1, 51.6], [-0.2, 51.5]]]}
    },
    {
      "type": "Feature",
      "properties": {"NAME": "Hackney"},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[-0.08, 51.54], [-0.02, 51.54], [-0.05, 51.58], [-0.08, 51.54]]]]}
    }
  ]
}`

func TestDecode(t *testing.T) {
	Convey("Given a valid FeatureCollection", t, func() {
		fc, skipped, err := geo.Decode(strings.NewReader(sampleCollection))

		Convey("Then it should decode with no skipped features", func() {
			So(err, ShouldBeNil)
			So(skipped, ShouldBeEmpty)
			So(len(fc.Features), ShouldEqual, 2)
		})

		Convey("And names should resolve across property key variants", func() {
			So(fc.Names(), ShouldResemble, []string{"Camden", "Hackney"})
		})
	})

	Convey("Given malformed JSON", t, func() {
		_, _, err := geo.Decode(strings.NewReader(`{"type": "FeatureCollection",`))

		Convey("Then decoding should fail with ErrDecode", func() {
			So(errors.Is(err, geo.ErrDecode), ShouldBeTrue)
		})
	})

	Convey("Given a non-collection document", t, func() {
		_, _, err := geo.Decode(strings.NewReader(`{"type": "Feature"}`))

		Convey("Then decoding should fail with ErrDecode", func() {
			So(errors.Is(err, geo.ErrDecode), ShouldBeTrue)
		})
	})

	Convey("Given an empty collection", t, func() {
		_, _, err := geo.Decode(strings.NewReader(`{"type": "FeatureCollection", "features": []}`))

		Convey("Then decoding should fail with ErrEmptyCollection", func() {
			So(errors.Is(err, geo.ErrEmptyCollection), ShouldBeTrue)
		})
	})

	Convey("Given a point geometry", t, func() {
		doc := `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "properties": {"name": "Nowhere"},
			 "geometry": {"type": "Point", "coordinates": [0, 0]}}]}`
		_, _, err := geo.Decode(strings.NewReader(doc))

		Convey("Then decoding should fail with ErrUnsupportedGeometry", func() {
			So(errors.Is(err, geo.ErrUnsupportedGeometry), ShouldBeTrue)
		})
	})

	Convey("Given a feature without a usable name", t, func() {
		doc := `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "properties": {"code": "E09000007"},
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}]}`
		fc, skipped, err := geo.Decode(strings.NewReader(doc))

		Convey("Then the feature index should be reported as skipped", func() {
			So(err, ShouldBeNil)
			So(skipped, ShouldResemble, []int{0})
			So(fc.Names(), ShouldBeEmpty)
		})
	})
}

func TestCentroid(t *testing.T) {
	Convey("Given a polygon feature", t, func() {
		fc, _, err := geo.Decode(strings.NewReader(sampleCollection))
		So(err, ShouldBeNil)

		Convey("When computing its centroid", func() {
			lon, lat, err := fc.Features[0].Centroid()

			Convey("Then it should average the vertices", func() {
				So(err, ShouldBeNil)
				So(lon, ShouldAlmostEqual, -0.15, 0.01)
				So(lat, ShouldAlmostEqual, 51.525, 0.01)
			})
		})

		Convey("When computing a multipolygon centroid", func() {
			_, lat, err := fc.Features[1].Centroid()

			Convey("Then it should succeed", func() {
				So(err, ShouldBeNil)
				So(lat, ShouldBeGreaterThan, 51.5)
			})
		})
	})
}
