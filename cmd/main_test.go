package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/safecity/safecity/internal/adapters/http/site"
	"github.com/safecity/safecity/internal/adapters/http/swagger"
	app "github.com/safecity/safecity/internal/app"
	"github.com/safecity/safecity/internal/config"
	"github.com/safecity/safecity/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			t.Setenv("SAFECITY_ADDR", ":8051")
			t.Setenv("SAFECITY_QUEUE_SIZE", "1000")
			t.Setenv("SAFECITY_WORKER_COUNT", "4")

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8051")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(4),
					app.WithQueueSize(1000),
					app.WithCategoryWeights(map[string]float64{"Robbery": 4.0}, 1.0),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When registering the static routes", func() {
			ctx := context.Background()
			mux := http.NewServeMux()
			site.Register(ctx, mux)
			swagger.Register(ctx, mux)

			convey.Convey("Then the dashboard page is served", func() {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, req)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And the API reference is served", func() {
				req := httptest.NewRequest(http.MethodGet, "/api-docs", nil)
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, req)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}
