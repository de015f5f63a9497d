package asciify

import (
	"context"
	"fmt"
	"image"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/wbrown/asciify/internal/log"
)

// Dispatcher runs completion callbacks in a caller chosen context, such
// as a UI loop or a single serial goroutine.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a plain function to the Dispatcher interface.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline runs callbacks directly on the worker goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Queue is a Dispatcher that runs callbacks one at a time, in submission
// order, on its own goroutine.
type Queue struct {
	mu     sync.Mutex
	jobs   []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// NewQueue starts a serial callback queue. Close stops it.
func NewQueue() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

// Dispatch enqueues fn. Callbacks dispatched after Close are dropped.
func (q *Queue) Dispatch(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		log.Warnf("queue: dropping callback dispatched after close")
		return
	}
	q.jobs = append(q.jobs, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting callbacks, waits for the queued ones to run and
// stops the queue goroutine.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

func (q *Queue) loop() {
	defer close(q.done)
	for range q.wake {
		for {
			q.mu.Lock()
			if len(q.jobs) == 0 {
				closed := q.closed
				q.mu.Unlock()
				if closed {
					return
				}
				break
			}
			fn := q.jobs[0]
			q.jobs[0] = nil
			q.jobs = q.jobs[1:]
			q.mu.Unlock()

			fn()
		}
	}
}

// Future is the eventual result of an asynchronous conversion.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Done is closed once the result is available, before the completion
// callback is dispatched.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx is done. A canceled
// ctx only stops the wait; the conversion itself still runs to the end.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) resolve(value T, err error) {
	f.value, f.err = value, err
	close(f.done)
}

// asyncPool bounds how many asynchronous conversions run at once.
type asyncPool struct {
	sem *semaphore.Weighted
}

func newAsyncPool(workers int) *asyncPool {
	if workers < 1 {
		workers = 1
	}
	return &asyncPool{sem: semaphore.NewWeighted(int64(workers))}
}

// runAsync runs work on a new goroutine once a worker slot is free, then
// delivers its result through the returned future and, when cb is set,
// through cb on the dispatcher.
func runAsync[T any](
	pool *asyncPool,
	on Dispatcher,
	work func() (T, error),
	cb func(T, error),
) *Future[T] {
	if on == nil {
		on = Inline
	}
	f := newFuture[T]()

	go func() {
		// Acquire only fails on a canceled context.
		_ = pool.sem.Acquire(context.Background(), 1)
		value, err := recoverWork(work)
		pool.sem.Release(1)

		f.resolve(value, err)
		if cb != nil {
			on.Dispatch(func() { cb(value, err) })
		}
	}()
	return f
}

// recoverWork calls work and turns a panic into ErrConversionPanic.
func recoverWork[T any](work func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic in conversion: %v\n%s", r, debug.Stack())
			var zero T
			value, err = zero, fmt.Errorf("%w: %v", ErrConversionPanic, r)
		}
	}()
	return work()
}

// sharedPool serves Converters not built with NewConverter.
var sharedPool = newAsyncPool(DefaultMaxWorkers)

func (c *Converter) pool() *asyncPool {
	if c.async == nil {
		return sharedPool
	}
	return c.async
}

// ConvertToTextAsync runs ConvertToText in the background. cb, when not
// nil, receives exactly one result, delivered through on; a nil on runs
// cb on the worker goroutine.
func (c *Converter) ConvertToTextAsync(
	img image.Image,
	on Dispatcher,
	cb func(string, error),
) *Future[string] {
	return runAsync(c.pool(), on, func() (string, error) {
		return c.ConvertToText(img)
	}, cb)
}

// ConvertToImageAsync runs ConvertToImage in the background with the same
// delivery rules as ConvertToTextAsync.
func (c *Converter) ConvertToImageAsync(
	img image.Image,
	on Dispatcher,
	cb func(*image.NRGBA, error),
) *Future[*image.NRGBA] {
	return runAsync(c.pool(), on, func() (*image.NRGBA, error) {
		return c.ConvertToImage(img)
	}, cb)
}

// ConvertToANSIAsync runs ConvertToANSI in the background with the same
// delivery rules as ConvertToTextAsync.
func (c *Converter) ConvertToANSIAsync(
	img image.Image,
	on Dispatcher,
	cb func(string, error),
) *Future[string] {
	return runAsync(c.pool(), on, func() (string, error) {
		return c.ConvertToANSI(img)
	}, cb)
}
