package dataset_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/safecity/safecity/internal/dataset"
	"github.com/safecity/safecity/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const wideCSV = `BoroughName,MajorText,MinorText,202401,202402
Camden,Robbery,Robbery of Personal Property,10,12
Camden,Theft,Shoplifting,5,
Hackney,Robbery,Robbery of Personal Property,7,9
`

func TestReadCrimeCSV(t *testing.T) {
	Convey("Given a wide-format extract", t, func() {
		records, warnings, err := dataset.ReadCrimeCSV(strings.NewReader(wideCSV), "extract.csv")

		Convey("Then every (row, month) cell becomes a record", func() {
			So(err, ShouldBeNil)
			So(warnings, ShouldBeEmpty)
			So(len(records), ShouldEqual, 6)
		})

		Convey("And months are canonicalized", func() {
			months := map[string]bool{}
			for _, r := range records {
				months[r.Month] = true
			}
			So(months, ShouldResemble, map[string]bool{"2024-01": true, "2024-02": true})
		})

		Convey("And blank counts read as zero", func() {
			var blank model.CrimeRecord
			for _, r := range records {
				if r.Borough == "Camden" && r.Major == "Theft" && r.Month == "2024-02" {
					blank = r
				}
			}
			So(blank.Count, ShouldEqual, 0)
		})
	})

	Convey("Given an empty file", t, func() {
		_, _, err := dataset.ReadCrimeCSV(strings.NewReader(""), "empty.csv")

		Convey("Then it should fail with ErrEmptyFile", func() {
			So(errors.Is(err, dataset.ErrEmptyFile), ShouldBeTrue)
		})
	})

	Convey("Given a header without month columns", t, func() {
		_, _, err := dataset.ReadCrimeCSV(strings.NewReader("BoroughName,MajorText,MinorText\n"), "h.csv")

		Convey("Then it should fail with ErrHeader", func() {
			So(errors.Is(err, dataset.ErrHeader), ShouldBeTrue)
		})
	})

	Convey("Given a header with the wrong leading columns", t, func() {
		_, _, err := dataset.ReadCrimeCSV(strings.NewReader("Ward,MajorText,MinorText,202401\n"), "h.csv")

		Convey("Then it should fail with ErrHeader", func() {
			So(errors.Is(err, dataset.ErrHeader), ShouldBeTrue)
		})
	})

	Convey("Given a header with an unparseable month", t, func() {
		_, _, err := dataset.ReadCrimeCSV(strings.NewReader("BoroughName,MajorText,MinorText,banana\n"), "h.csv")

		Convey("Then it should fail with ErrHeader", func() {
			So(errors.Is(err, dataset.ErrHeader), ShouldBeTrue)
		})
	})

	Convey("Given rows with problems", t, func() {
		csv := "BoroughName,MajorText,MinorText,202401\n" +
			"Camden,Robbery,Street,ten\n" + // non-numeric count
			",Robbery,Street,5\n" + // missing borough
			"Hackney,Theft,Shoplifting,3\n"
		records, warnings, err := dataset.ReadCrimeCSV(strings.NewReader(csv), "bad.csv")

		Convey("Then good rows still load and bad ones warn", func() {
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 1)
			So(records[0].Borough, ShouldEqual, "Hackney")
			So(len(warnings), ShouldEqual, 2)
		})

		Convey("And warnings carry source and line", func() {
			So(warnings[0].Source, ShouldEqual, "bad.csv")
			So(warnings[0].Line, ShouldEqual, 2)
			So(warnings[0].String(), ShouldContainSubstring, "bad.csv:2")
		})
	})

	Convey("Given a negative count", t, func() {
		csv := "BoroughName,MajorText,MinorText,202401\nCamden,Robbery,Street,-4\n"
		records, warnings, err := dataset.ReadCrimeCSV(strings.NewReader(csv), "neg.csv")

		Convey("Then the cell warns instead of loading", func() {
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
			So(len(warnings), ShouldEqual, 1)
		})
	})
}
