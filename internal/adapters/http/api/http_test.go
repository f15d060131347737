package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/safecity/safecity/internal/adapters/http/api"
	"github.com/safecity/safecity/internal/adapters/repository"
	"github.com/safecity/safecity/internal/domain/types"
	"github.com/safecity/safecity/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// mockDeps serves canned dashboard data.
type mockDeps struct {
	boroughs []string
	heatmap  []types.HeatmapCell
	trend    []types.TrendPoint
	cats     []types.CategoryCount
	series   []types.BreakdownSeries
	rankings []types.RankEntry
	geojson  []byte

	err error
}

func (m *mockDeps) Boroughs(_ context.Context) []string { return m.boroughs }

func (m *mockDeps) Heatmap(_ context.Context) []types.HeatmapCell { return m.heatmap }

func (m *mockDeps) Trend(_ context.Context, borough string) ([]types.TrendPoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.trend, nil
}

func (m *mockDeps) Categories(_ context.Context, borough string) ([]types.CategoryCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cats, nil
}

func (m *mockDeps) Breakdown(_ context.Context, borough, major string) ([]types.BreakdownSeries, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.series, nil
}

func (m *mockDeps) Rankings(_ context.Context, n int) ([]types.RankEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if n < len(m.rankings) {
		return m.rankings[:n], nil
	}
	return m.rankings, nil
}

func (m *mockDeps) GeoJSON(_ context.Context) []byte { return m.geojson }

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	server := api.NewServer(deps, mockStats{}, 50)
	server.Register(context.Background(), mux)
	return mux
}

func doGet(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestBoroughRoutes(t *testing.T) {
	Convey("Given an API server with canned data", t, func() {
		deps := &mockDeps{
			boroughs: []string{"Camden", "Hackney"},
			trend:    []types.TrendPoint{{Month: "2024-01", Count: 30}},
			cats:     []types.CategoryCount{{Category: "Theft", Count: 20}},
			series:   []types.BreakdownSeries{{Minor: "Shoplifting", Points: []types.TrendPoint{{Month: "2024-01", Count: 20}}}},
		}
		mux := newTestMux(deps)

		Convey("GET /api/boroughs lists boroughs", func() {
			rec := doGet(mux, "/api/boroughs")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var body struct {
				Boroughs []string `json:"boroughs"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.Boroughs, ShouldResemble, []string{"Camden", "Hackney"})
		})

		Convey("GET /api/boroughs carries a request id", func() {
			rec := doGet(mux, "/api/boroughs")
			So(rec.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
		})

		Convey("GET trend returns the monthly series", func() {
			rec := doGet(mux, "/api/boroughs/Camden/trend")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var body struct {
				Borough string             `json:"borough"`
				Points  []types.TrendPoint `json:"points"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.Borough, ShouldEqual, "Camden")
			So(body.Points, ShouldHaveLength, 1)
		})

		Convey("GET categories returns the major totals", func() {
			rec := doGet(mux, "/api/boroughs/Camden/categories")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("GET breakdown requires a major parameter", func() {
			rec := doGet(mux, "/api/boroughs/Camden/breakdown")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)

			rec = doGet(mux, "/api/boroughs/Camden/breakdown?major=Theft")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("An unknown action is a 404", func() {
			rec := doGet(mux, "/api/boroughs/Camden/bogus")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("A missing action segment is a 400", func() {
			rec := doGet(mux, "/api/boroughs/Camden")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An unknown borough maps to a 404", func() {
			deps.err = repository.ErrBoroughNotFound
			rec := doGet(mux, "/api/boroughs/Gotham/trend")
			So(rec.Code, ShouldEqual, http.StatusNotFound)

			var body struct {
				Code string `json:"code"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.Code, ShouldEqual, "not_found")
		})

		Convey("POST is rejected", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/boroughs", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHeatmapRoute(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{
			heatmap: []types.HeatmapCell{
				{Borough: "Camden", Total: 35, Severity: 2.3, Matched: true},
				{Borough: "Westminster", Total: 8, Severity: 1.0, Matched: false},
			},
		}
		mux := newTestMux(deps)

		Convey("GET /api/heatmap returns cells with match flags", func() {
			rec := doGet(mux, "/api/heatmap")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var body struct {
				Cells []types.HeatmapCell `json:"cells"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.Cells, ShouldHaveLength, 2)
			So(body.Cells[0].Matched, ShouldBeTrue)
			So(body.Cells[1].Matched, ShouldBeFalse)
		})

		Convey("An empty dataset yields an empty array, not null", func() {
			deps.heatmap = nil
			rec := doGet(mux, "/api/heatmap")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"cells":[]`)
		})
	})
}

func TestRankingsRoute(t *testing.T) {
	Convey("Given an API server with rankings", t, func() {
		deps := &mockDeps{
			rankings: []types.RankEntry{
				{Rank: 1, Borough: "Camden", Severity: 2.3, Total: 35},
				{Rank: 2, Borough: "Hackney", Severity: 1.0, Total: 10},
			},
		}
		mux := newTestMux(deps)

		Convey("GET /api/rankings honors the limit", func() {
			rec := doGet(mux, "/api/rankings?limit=1")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var body struct {
				Rankings []types.RankEntry `json:"rankings"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.Rankings, ShouldHaveLength, 1)
		})

		Convey("The limit defaults when omitted", func() {
			rec := doGet(mux, "/api/rankings")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("A non-numeric limit is a 400", func() {
			rec := doGet(mux, "/api/rankings?limit=abc")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A limit beyond the maximum is a 400", func() {
			rec := doGet(mux, "/api/rankings?limit=5000")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)

			var body struct {
				Code string `json:"code"`
			}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body.Code, ShouldEqual, "limit_exceeded")
		})
	})
}

func TestGeoJSONRoute(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{geojson: []byte(`{"type":"FeatureCollection","features":[]}`)}
		mux := newTestMux(deps)

		Convey("GET /api/geojson serves the boundary payload", func() {
			rec := doGet(mux, "/api/geojson")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "geo+json")
			So(rec.Body.String(), ShouldEqual, `{"type":"FeatureCollection","features":[]}`)
		})

		Convey("An unloaded boundary set is a 503", func() {
			deps.geojson = nil
			rec := doGet(mux, "/api/geojson")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestStatsRoute(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newTestMux(&mockDeps{})

		Convey("GET /stats returns the service stats", func() {
			rec := doGet(mux, "/stats")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var body map[string]interface{}
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body["started"], ShouldEqual, true)
		})
	})
}
