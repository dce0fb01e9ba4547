package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/podium/internal/adapters/mq/worker"
	model "github.com/okian/podium/internal/domain/model"
	logging "github.com/okian/podium/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	entries    chan model.Activity
	closeError error
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		entries: make(chan model.Activity, 100),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan model.Activity {
	return mq.entries
}

func (mq *mockQueue) Close() error {
	close(mq.entries)
	return mq.closeError
}

func (mq *mockQueue) add(a model.Activity) {
	mq.entries <- a
}

type mockRecorder struct {
	recorded map[string]model.Activity
	errors   map[string]error
	mu       sync.RWMutex
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		recorded: make(map[string]model.Activity),
		errors:   make(map[string]error),
	}
}

func (mr *mockRecorder) AppendActivity(ctx context.Context, activity model.Activity) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if err, exists := mr.errors[activity.ID]; exists {
		return err
	}
	mr.recorded[activity.ID] = activity
	return nil
}

func (mr *mockRecorder) setError(id string, err error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.errors[id] = err
}

func (mr *mockRecorder) get(id string) (model.Activity, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	a, ok := mr.recorded[id]
	return a, ok
}

func submittedActivity(id string) model.Activity {
	return model.Activity{
		ID:          id,
		Type:        model.ActivityVideoSubmitted,
		Description: "New video submitted",
		AthleteID:   "a1",
		VideoID:     "v1",
		Timestamp:   time.Now().UTC(),
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		recorder := newMockRecorder()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewInMemoryWorker(queue, recorder)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker with custom options", func() {
			w := worker.NewInMemoryWorker(
				queue, recorder,
				worker.WithName("test-worker"),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(queue, recorder)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)

			// Give worker time to start
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And when processing activities", func() {
				queue.add(submittedActivity("act-1"))

				// Give worker time to process
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then it should persist the activity", func() {
					got, ok := recorder.get("act-1")
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(got.Type, convey.ShouldEqual, model.ActivityVideoSubmitted)
				})
			})

			convey.Convey("And when the append fails", func() {
				recorder.setError("act-2", errors.New("append error"))
				queue.add(submittedActivity("act-2"))

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the activity is not recorded and the worker keeps going", func() {
					_, ok := recorder.get("act-2")
					convey.So(ok, convey.ShouldBeFalse)

					queue.add(submittedActivity("act-3"))
					time.Sleep(50 * time.Millisecond)

					_, ok = recorder.get("act-3")
					convey.So(ok, convey.ShouldBeTrue)
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()

				err := w.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When the queue channel is closed", func() {
			w := worker.NewInMemoryWorker(queue, recorder)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			_ = queue.Close()
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then shutdown returns immediately", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new worker pool", t, func() {
		_ = logging.Init()

		queue := newMockQueue()
		recorder := newMockRecorder()

		convey.Convey("When creating a pool with default count", func() {
			pool := worker.NewPool(0, queue, recorder)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(pool, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When starting a pool", func() {
			pool := worker.NewPool(2, queue, recorder)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)
			time.Sleep(20 * time.Millisecond)

			convey.Convey("And when processing multiple activities", func() {
				for i := 1; i <= 3; i++ {
					queue.add(submittedActivity(fmt.Sprintf("act-%d", i)))
				}

				time.Sleep(100 * time.Millisecond)

				convey.Convey("Then all activities should be recorded", func() {
					for i := 1; i <= 3; i++ {
						_, ok := recorder.get(fmt.Sprintf("act-%d", i))
						convey.So(ok, convey.ShouldBeTrue)
					}
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
				defer shutdownCancel()

				err := pool.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When stopping a pool with buffered activities", func() {
			pool := worker.NewPool(2, queue, recorder)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)
			time.Sleep(20 * time.Millisecond)

			queue.add(submittedActivity("stop-1"))
			queue.add(submittedActivity("stop-2"))

			pool.Stop()

			convey.Convey("Then buffered activities are drained before it returns", func() {
				for _, id := range []string{"stop-1", "stop-2"} {
					_, ok := recorder.get(id)
					convey.So(ok, convey.ShouldBeTrue)
				}
			})
		})
	})
}

func TestWorkerConcurrency(t *testing.T) {
	convey.Convey("Given a pool with multiple workers", t, func() {
		_ = logging.Init()

		queue := newMockQueue()
		recorder := newMockRecorder()

		pool := worker.NewPool(4, queue, recorder)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pool.Start(ctx)
		time.Sleep(20 * time.Millisecond)

		convey.Convey("When many producers enqueue concurrently", func() {
			const total = 100
			var wg sync.WaitGroup

			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func(producer int) {
					defer wg.Done()
					for j := 0; j < total/5; j++ {
						queue.add(submittedActivity(fmt.Sprintf("act-%d-%d", producer, j)))
					}
				}(i)
			}
			wg.Wait()

			time.Sleep(200 * time.Millisecond)

			convey.Convey("Then every activity should be recorded exactly once", func() {
				recordedCount := 0
				for i := 0; i < 5; i++ {
					for j := 0; j < total/5; j++ {
						if _, ok := recorder.get(fmt.Sprintf("act-%d-%d", i, j)); ok {
							recordedCount++
						}
					}
				}
				convey.So(recordedCount, convey.ShouldEqual, total)
			})
		})
	})
}
