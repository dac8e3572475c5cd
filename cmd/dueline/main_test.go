package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/dueline/internal/config"
	"github.com/okian/dueline/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestBuildService(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given configuration loaded from the environment", t, func() {
		t.Setenv("DUELINE_ADDR", ":9999")
		t.Setenv("DUELINE_WORKER_COUNT", "2")
		t.Setenv("DUELINE_DUE_BASELINE", "season")
		t.Setenv("DUELINE_DATA_DIR", t.TempDir())

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":9999")

		convey.Convey("Then the service builds from it", func() {
			svc, err := buildService(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc, convey.ShouldNotBeNil)

			stats := svc.GetStats()
			convey.So(stats["workerCount"], convey.ShouldEqual, 2)
			convey.So(stats["dueBaseline"], convey.ShouldEqual, "season")
			convey.So(stats["started"], convey.ShouldEqual, false)
		})

		convey.Convey("Then an unknown baseline is rejected", func() {
			cfg.DueBaseline = "career"
			_, err := buildService(cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewMux(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given a started service over an empty data dir", t, func() {
		cfg := config.New()
		cfg.DataDir = t.TempDir()
		cfg.WorkerCount = 1

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc, err := buildService(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, svc, cfg)

		convey.Convey("Then docs and API routes are mounted", func() {
			for _, path := range []string{"/api-docs", "/openapi.yaml", "/healthz", "/stats"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then readiness reports the missing corpus", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})

		convey.Convey("Then the service metrics update does not panic", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		convey.Convey("Then a system update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the updater returns when its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			convey.So(ctx.Err(), convey.ShouldNotBeNil)
		})
	})
}

func TestMain(m *testing.M) {
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "DUELINE_") {
			_ = os.Unsetenv(key)
		}
	}
	os.Exit(m.Run())
}
