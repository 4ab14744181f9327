package systems

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/anima-gfx/engine/core"
)

var ErrNoWorkers = errors.New("attempting to create job system with less than 1 thread")
var ErrNegativeChannelSize = errors.New("attempting to create job system with a negative queue size")
var ErrJobSystemClosed = errors.New("job system is shut down")

// JobTask is a unit of work run by one of the job system workers. Run gets the
// recording slot owned by the worker.
type JobTask struct {
	Run        func(slot int) error
	OnComplete func()
	OnFailure  func(err error)
}

// JobSystem owns one recording slot per thread. Slot 0 belongs to the main
// thread; background workers own slots 1..n-1. A single-threaded job system
// runs its only worker on slot 0, so nothing else may record on slot 0 while
// submitted work is in flight.
//
// Dispatch hands out every slot, including those of the background workers,
// so submitted jobs must not record while a Dispatch is running.
type JobSystem struct {
	numThreads int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mutex    sync.Mutex
	isClosed bool
}

func NewJobSystem(numThreads int, queueSize int) (*JobSystem, error) {
	if numThreads <= 0 {
		return nil, ErrNoWorkers
	}
	if queueSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numThreads: numThreads,
		jobQueue:   make(chan JobTask, queueSize),
	}
	js.start()

	core.LogDebug("job system started with %d threads", numThreads)
	return js, nil
}

// ThreadCount returns the number of recording slots, main thread included.
func (js *JobSystem) ThreadCount() int {
	return js.numThreads
}

func (js *JobSystem) start() {
	if js.numThreads == 1 {
		js.wg.Add(1)
		go js.worker(0)
		return
	}
	for slot := 1; slot < js.numThreads; slot++ {
		js.wg.Add(1)
		go js.worker(slot)
	}
}

func (js *JobSystem) worker(slot int) {
	defer js.wg.Done()
	for job := range js.jobQueue {
		if err := job.Run(slot); err != nil {
			core.LogError("job on slot %d failed: %s", slot, err.Error())
			if job.OnFailure != nil {
				job.OnFailure(err)
			}
			continue
		}
		if job.OnComplete != nil {
			job.OnComplete()
		}
	}
}

// Submit queues the job, blocking while the queue is full.
func (js *JobSystem) Submit(jt JobTask) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	if js.isClosed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- jt
	return nil
}

// Dispatch runs fn for every index in [0, count) spread over the slots and
// blocks until all calls returned. The first error cancels ctx for the other
// calls and is returned.
func (js *JobSystem) Dispatch(ctx context.Context, count int, fn func(ctx context.Context, slot, index int) error) error {
	if count <= 0 {
		return nil
	}

	indices := make(chan int, count)
	for i := 0; i < count; i++ {
		indices <- i
	}
	close(indices)

	g, gctx := errgroup.WithContext(ctx)
	for slot := 0; slot < min(js.numThreads, count); slot++ {
		g.Go(func() error {
			for index := range indices {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(gctx, slot, index); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Shutdown drains the queue and waits for the workers to exit.
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.isClosed {
		js.mutex.Unlock()
		return nil
	}
	js.isClosed = true
	close(js.jobQueue)
	js.mutex.Unlock()

	js.wg.Wait()
	return nil
}
