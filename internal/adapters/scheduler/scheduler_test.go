package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/dueline/internal/adapters/scheduler"
	"github.com/okian/dueline/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestScheduler(t *testing.T) {
	Convey("Given a reload function", t, func() {
		var calls atomic.Int64
		reload := func(context.Context) error {
			calls.Add(1)
			return nil
		}

		Convey("When no schedule is configured", func() {
			s, err := scheduler.New(reload)
			So(err, ShouldBeNil)
			So(s.Enabled(), ShouldBeFalse)
			So(s.Start(context.Background()), ShouldBeNil)
			_ = s.Stop()
			So(calls.Load(), ShouldEqual, 0)
		})

		Convey("When an interval is configured", func() {
			s, err := scheduler.New(reload, scheduler.WithInterval(20*time.Millisecond))
			So(err, ShouldBeNil)
			So(s.Enabled(), ShouldBeTrue)
			So(s.Start(context.Background()), ShouldBeNil)

			deadline := time.Now().Add(2 * time.Second)
			for calls.Load() < 2 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}
			So(s.Stop(), ShouldBeNil)
			So(calls.Load(), ShouldBeGreaterThanOrEqualTo, 2)
		})

		Convey("When the reload fails", func() {
			var failures atomic.Int64
			s, err := scheduler.New(func(context.Context) error {
				failures.Add(1)
				return errors.New("boom")
			}, scheduler.WithInterval(20*time.Millisecond))
			So(err, ShouldBeNil)
			So(s.Start(context.Background()), ShouldBeNil)

			deadline := time.Now().Add(2 * time.Second)
			for failures.Load() < 2 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}
			So(s.Stop(), ShouldBeNil)

			Convey("Then the scheduler keeps ticking", func() {
				So(failures.Load(), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})

		Convey("When the cron expression is invalid", func() {
			s, err := scheduler.New(reload, scheduler.WithCron("not a cron"))
			So(errors.Is(err, scheduler.ErrInvalidCron), ShouldBeTrue)
			So(s, ShouldBeNil)
		})

		Convey("When a valid cron expression is configured", func() {
			s, err := scheduler.New(reload, scheduler.WithCron("*/5 * * * *"))
			So(err, ShouldBeNil)
			So(s.Start(context.Background()), ShouldBeNil)
			So(s.Stop(), ShouldBeNil)
		})
	})
}
