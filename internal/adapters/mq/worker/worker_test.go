package worker_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/persona/internal/adapters/mq/queue"
	"github.com/okian/persona/internal/adapters/mq/worker"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var errBadDocument = errors.New("bad document")

// stubDeriver maps source names to rows and fails names containing "bad".
type stubDeriver struct{}

func (stubDeriver) Derive(ctx context.Context, doc worker.Document) (model.SummaryRow, error) {
	if strings.Contains(doc.SourceName, "bad") {
		return model.SummaryRow{}, errBadDocument
	}
	id := strings.TrimSuffix(doc.SourceName, ".json")
	return model.SummaryRow{ProfileID: id}, nil
}

// memSink collects rows put by workers.
type memSink struct {
	mu   sync.Mutex
	rows []model.SummaryRow
	fail bool
}

func (s *memSink) Put(ctx context.Context, doc worker.Document, row model.SummaryRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// doneCollector joins on per-document completion through the worker hook.
type doneCollector struct {
	mu   sync.Mutex
	errs []error
	wg   sync.WaitGroup
}

func (c *doneCollector) hook(doc worker.Document, err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
	c.wg.Done()
}

func (c *doneCollector) failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, err := range c.errs {
		if err != nil {
			n++
		}
	}
	return n
}

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestPipelineWorker(t *testing.T) {
	ctx := context.Background()

	Convey("Given a worker over a queue of mixed documents", t, func() {
		q := queue.NewInMemoryQueue()
		sink := &memSink{}
		tracker := &doneCollector{}

		docs := []worker.Document{
			{SourceName: "alpha.json"},
			{SourceName: "bad_one.json"},
			{SourceName: "beta.json"},
		}
		tracker.wg.Add(len(docs))
		for _, d := range docs {
			So(q.Enqueue(ctx, d), ShouldBeTrue)
		}

		w := worker.NewPipelineWorker(q, stubDeriver{}, sink,
			worker.WithName("test-worker"),
			worker.WithOnDone(tracker.hook),
		)
		go w.Run(ctx)

		Convey("When all documents complete", func() {
			waitDone(t, &tracker.wg)

			Convey("Then good rows reach the sink and the failure stays isolated", func() {
				So(sink.count(), ShouldEqual, 2)
				So(tracker.failures(), ShouldEqual, 1)
			})

			Convey("And shutdown returns cleanly", func() {
				shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
				defer cancel()
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})

	Convey("Given a worker whose sink refuses rows", t, func() {
		q := queue.NewInMemoryQueue()
		sink := &memSink{fail: true}
		tracker := &doneCollector{}
		tracker.wg.Add(1)

		w := worker.NewPipelineWorker(q, stubDeriver{}, sink, worker.WithOnDone(tracker.hook))
		go w.Run(ctx)
		So(q.Enqueue(ctx, worker.Document{SourceName: "alpha.json"}), ShouldBeTrue)

		Convey("When the document completes", func() {
			waitDone(t, &tracker.wg)

			Convey("Then the completion hook still reports the error", func() {
				So(tracker.failures(), ShouldEqual, 1)
				So(sink.count(), ShouldEqual, 0)
			})
		})
	})
}

func TestPool(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pool of workers sharing one queue", t, func() {
		q := queue.NewInMemoryQueue()
		sink := &memSink{}
		tracker := &doneCollector{}

		const docCount = 20
		tracker.wg.Add(docCount)

		pool := worker.NewPool(4, q, stubDeriver{}, sink, worker.WithOnDone(tracker.hook))
		pool.Start(ctx)

		for i := 0; i < docCount; i++ {
			name := "profile_" + string(rune('a'+i)) + ".json"
			So(q.Enqueue(ctx, worker.Document{SourceName: name}), ShouldBeTrue)
		}

		Convey("When the batch drains", func() {
			waitDone(t, &tracker.wg)

			Convey("Then every document was processed exactly once", func() {
				So(sink.count(), ShouldEqual, docCount)
			})

			Convey("And the pool shuts down within its deadline", func() {
				So(pool.Shutdown(ctx), ShouldBeNil)
			})
		})
	})
}

// waitDone waits for the tracker with a hard timeout so a deadlock fails the
// test instead of hanging it.
func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for documents to complete")
	}
}
