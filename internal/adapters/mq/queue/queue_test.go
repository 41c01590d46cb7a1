package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/persona/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh queue", t, func() {
		q := queue.NewInMemoryQueue()
		defer q.Close()

		Convey("When enqueuing a document", func() {
			ok := q.Enqueue(ctx, queue.Document{SourceName: "report_a.json"})

			Convey("Then it is accepted and counted", func() {
				So(ok, ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 1)
			})

			Convey("And it comes back out on dequeue", func() {
				select {
				case doc := <-q.Dequeue(ctx):
					So(doc.SourceName, ShouldEqual, "report_a.json")
				case <-time.After(time.Second):
					So("timed out waiting for dequeue", ShouldBeEmpty)
				}
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue is refused", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.Document{SourceName: "late.json"}), ShouldBeFalse)
			})

			Convey("And closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})

			Convey("And the dequeue channel drains then closes", func() {
				select {
				case _, open := <-q.Dequeue(ctx):
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					So("timed out waiting for close", ShouldBeEmpty)
				}
			})
		})
	})

	Convey("Given a queue with capacity one", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1), queue.WithBufferSize(1))
		defer q.Close()

		Convey("When it is full", func() {
			So(q.Enqueue(ctx, queue.Document{SourceName: "first.json"}), ShouldBeTrue)

			Convey("Then further enqueues are refused without blocking", func() {
				So(q.Enqueue(ctx, queue.Document{SourceName: "second.json"}), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 1)
			})
		})
	})

	Convey("Given several queued documents", t, func() {
		q := queue.NewInMemoryQueue()

		names := []string{"report_a.json", "report_b.json", "report_c.json"}
		for _, n := range names {
			So(q.Enqueue(ctx, queue.Document{SourceName: n}), ShouldBeTrue)
		}
		So(q.Close(), ShouldBeNil)

		Convey("When draining after close", func() {
			var drained []string
			deadline := time.After(time.Second)
			out := q.Dequeue(ctx)
		loop:
			for {
				select {
				case doc, open := <-out:
					if !open {
						break loop
					}
					drained = append(drained, doc.SourceName)
				case <-deadline:
					break loop
				}
			}

			Convey("Then every document comes out in order before the close", func() {
				So(drained, ShouldResemble, names)
			})
		})
	})
}
