package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/safecity/safecity/internal/dataset"
	"github.com/safecity/safecity/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const boundaries = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Camden"},
     "geometry": {"type": "Polygon", "coordinates": [[[-0.2,51.5],[-0.1,51.5],[-0.1,51.6],[-0.2,51.5]]]}},
    {"type": "Feature", "properties": {"name": "Hackney"},
     "geometry": {"type": "Polygon", "coordinates": [[[-0.08,51.54],[-0.02,51.54],[-0.05,51.58],[-0.08,51.54]]]}}
  ]
}`

func writeDataDir(t *testing.T) (geojson, crimeDir string) {
	t.Helper()
	dir := t.TempDir()
	geojson = filepath.Join(dir, "boroughs.geojson")
	if err := os.WriteFile(geojson, []byte(boundaries), 0o600); err != nil {
		t.Fatal(err)
	}
	crimeDir = filepath.Join(dir, "met_police")
	if err := os.Mkdir(crimeDir, 0o750); err != nil {
		t.Fatal(err)
	}
	csv1 := "BoroughName,MajorText,MinorText,202401\nCamden,Robbery,Street,10\nHackney,Theft,Shoplifting,4\n"
	csv2 := "BoroughName,MajorText,MinorText,202402\nCamden,Robbery,Street,12\n"
	if err := os.WriteFile(filepath.Join(crimeDir, "extract-a.csv"), []byte(csv1), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(crimeDir, "extract-b.csv"), []byte(csv2), 0o600); err != nil {
		t.Fatal(err)
	}
	// Non-CSV clutter should be ignored.
	if err := os.WriteFile(filepath.Join(crimeDir, "README.txt"), []byte("notes"), 0o600); err != nil {
		t.Fatal(err)
	}
	return geojson, crimeDir
}

func TestLoader_Load(t *testing.T) {
	Convey("Given a data directory with two extracts", t, func() {
		geojson, crimeDir := writeDataDir(t)
		loader := dataset.NewLoader(
			dataset.WithGeoJSONPath(geojson),
			dataset.WithCrimeDir(crimeDir),
			dataset.WithConcurrency(2),
		)

		Convey("When loading", func() {
			snap, err := loader.Load(context.Background())

			Convey("Then boundaries and records arrive together", func() {
				So(err, ShouldBeNil)
				So(snap.Boundaries, ShouldNotBeNil)
				So(snap.Boundaries.Names(), ShouldResemble, []string{"Camden", "Hackney"})
				So(len(snap.Records), ShouldEqual, 3)
				So(len(snap.Files), ShouldEqual, 2)
			})

			Convey("And record order is deterministic", func() {
				again, err := loader.Load(context.Background())
				So(err, ShouldBeNil)
				So(again.Records, ShouldResemble, snap.Records)
			})
		})

		Convey("When the boundary file is missing", func() {
			bad := dataset.NewLoader(
				dataset.WithGeoJSONPath(filepath.Join(t.TempDir(), "missing.geojson")),
				dataset.WithCrimeDir(crimeDir),
			)
			_, err := bad.Load(context.Background())

			Convey("Then loading fails with ErrLoadFailed", func() {
				So(errors.Is(err, dataset.ErrLoadFailed), ShouldBeTrue)
			})
		})

		Convey("When the crime directory is missing", func() {
			bad := dataset.NewLoader(
				dataset.WithGeoJSONPath(geojson),
				dataset.WithCrimeDir(filepath.Join(t.TempDir(), "nope")),
			)
			_, err := bad.Load(context.Background())

			Convey("Then loading fails with ErrLoadFailed", func() {
				So(errors.Is(err, dataset.ErrLoadFailed), ShouldBeTrue)
			})
		})

		Convey("When the crime directory has no CSV files", func() {
			empty := t.TempDir()
			bad := dataset.NewLoader(
				dataset.WithGeoJSONPath(geojson),
				dataset.WithCrimeDir(empty),
			)
			_, err := bad.Load(context.Background())

			Convey("Then loading fails with ErrNoFiles", func() {
				So(errors.Is(err, dataset.ErrNoFiles), ShouldBeTrue)
			})
		})

		Convey("When one extract is malformed", func() {
			So(os.WriteFile(filepath.Join(crimeDir, "broken.csv"), []byte("Ward,Oops\n"), 0o600), ShouldBeNil)
			_, err := loader.Load(context.Background())

			Convey("Then the load fails hard", func() {
				So(errors.Is(err, dataset.ErrLoadFailed), ShouldBeTrue)
			})
		})
	})
}

func TestLoader_Paths(t *testing.T) {
	Convey("Given a configured loader", t, func() {
		loader := dataset.NewLoader(
			dataset.WithGeoJSONPath("a.geojson"),
			dataset.WithCrimeDir("csvs"),
		)

		Convey("Then Paths lists the watchable locations", func() {
			So(loader.Paths(), ShouldResemble, []string{"a.geojson", "csvs"})
		})
	})
}
