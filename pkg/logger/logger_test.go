package logger

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("Then Get returns a usable logger", func() {
			l := Get()
			So(l, ShouldNotBeNil)
			l.Info(context.Background(), "test message", String("k", "v"), Duration("took", time.Millisecond))
		})

		Convey("Then named and scoped loggers are usable", func() {
			named := Named("test").With(Bool("ok", true), Uint64("gen", 3))
			So(named, ShouldNotBeNil)
			named.Debug(context.Background(), "scoped message")
		})
	})
}

func TestLoggerLevelsAndFormats(t *testing.T) {
	Convey("Given an initialised logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("When setting known levels", func() {
			for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error", ""} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
			So(SetLevelString("info"), ShouldBeNil)
		})

		Convey("When setting an unknown level", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})

		Convey("When switching formats", func() {
			So(SetFormat("json"), ShouldBeNil)
			Get().Warn(context.Background(), "json line")
			So(SetFormat("text"), ShouldBeNil)
			So(SetFormat("xml"), ShouldNotBeNil)
		})
	})
}
