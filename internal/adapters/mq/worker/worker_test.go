package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/mergington/internal/adapters/mq/queue"
	"github.com/okian/mergington/internal/adapters/mq/worker"
	"github.com/okian/mergington/internal/domain/journal"
	"github.com/okian/mergington/internal/domain/model"
	logging "github.com/okian/mergington/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	eventChan chan queue.Event
}

func newMockQueue() *mockQueue {
	return &mockQueue{eventChan: make(chan queue.Event, 10)}
}

func (mq *mockQueue) Dequeue(_ context.Context) <-chan queue.Event {
	return mq.eventChan
}

func (mq *mockQueue) Close() error {
	close(mq.eventChan)
	return nil
}

type mockRecorder struct {
	mu     sync.Mutex
	events []queue.Event
	fail   map[string]error
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{fail: make(map[string]error)}
}

func (r *mockRecorder) Record(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.fail[ev.Activity]; ok {
		return err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *mockRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()
		q := newMockQueue()
		rec := newMockRecorder()
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("test-worker"), worker.WithLogger(logging.Get()))

		convey.Convey("When events are queued and the queue is closed", func() {
			q.eventChan <- model.NewRosterEvent(model.ChangeSignup, "Chess Club", "a@mergington.edu", 3)
			q.eventChan <- model.NewRosterEvent(model.ChangeRemoval, "Chess Club", "a@mergington.edu", 2)
			_ = q.Close()

			w.Run(context.Background())

			convey.Convey("Then every event reaches the recorder in order", func() {
				convey.So(rec.count(), convey.ShouldEqual, 2)
				convey.So(rec.events[0].Kind, convey.ShouldEqual, model.ChangeSignup)
				convey.So(rec.events[1].Kind, convey.ShouldEqual, model.ChangeRemoval)
			})

			convey.Convey("Then Done is closed", func() {
				select {
				case <-w.Done():
				default:
					t.Fatal("worker did not signal completion")
				}
			})
		})

		convey.Convey("When the recorder fails for one event", func() {
			rec.fail["Gym Class"] = errors.New("boom")
			q.eventChan <- model.NewRosterEvent(model.ChangeSignup, "Gym Class", "b@mergington.edu", 1)
			q.eventChan <- model.NewRosterEvent(model.ChangeSignup, "Art Club", "b@mergington.edu", 1)
			_ = q.Close()

			w.Run(context.Background())

			convey.Convey("Then the worker keeps going", func() {
				convey.So(rec.count(), convey.ShouldEqual, 1)
				convey.So(rec.events[0].Activity, convey.ShouldEqual, "Art Club")
			})
		})

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)
			cancel()

			convey.Convey("Then the worker stops without the queue closing", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					t.Fatal("worker did not stop on cancellation")
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue and journal", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		j := journal.New(journal.WithCapacity(100))
		pool := worker.NewPool(3, q, j)
		pool.Start(context.Background())

		convey.Convey("Then the pool has the requested size", func() {
			convey.So(pool.Size(), convey.ShouldEqual, 3)
		})

		convey.Convey("When events are enqueued and the pool shuts down", func() {
			for i := 0; i < 20; i++ {
				convey.So(q.Enqueue(context.Background(),
					model.NewRosterEvent(model.ChangeSignup, "Drama Club", "s@mergington.edu", i+1)), convey.ShouldBeTrue)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every event is drained into the journal", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(j.Total(), convey.ShouldEqual, int64(20))
				convey.So(pool.Processed(), convey.ShouldEqual, int64(20))
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), newMockRecorder())

		convey.Convey("Then one worker is created", func() {
			convey.So(pool.Size(), convey.ShouldEqual, 1)
		})
	})
}
