package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/okian/persona/internal/app"
	"github.com/okian/persona/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service with custom configuration", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithDedupeSize(50),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["workerCount"], ShouldEqual, 2)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping then restarting works", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("When running a batch", func() {
			_, err := svc.RunBatch(context.Background(), nil)

			Convey("Then it refuses", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
