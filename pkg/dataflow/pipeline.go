package dataflow

import (
	"context"
	"sync"
	"time"
)

// Stream is a read-only channel of items flowing through a pipeline stage.
type Stream[T any] <-chan T

// From creates a stream from a slice of items.
func From[T any](ctx context.Context, items ...T) Stream[T] {
	out := make(chan T, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// Map transforms the stream using fn. Parallelism comes from WithWorkers;
// with more than one worker the output order is not the input order.
// Items whose fn returns an unhandled error are dropped.
func Map[In, Out any](ctx context.Context, input Stream[In], fn func(In) (Out, error), opts ...Option) Stream[Out] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	out := make(chan Out, cfg.bufferSize)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-input:
				if !ok {
					return
				}

				res, err := fn(item)
				for attempt := 1; err != nil && attempt <= cfg.maxRetries; attempt++ {
					if cfg.backoff != nil {
						select {
						case <-ctx.Done():
							return
						case <-time.After(cfg.backoff(attempt)):
						}
					}
					res, err = fn(item)
				}

				if err != nil {
					if cfg.errorHandler != nil {
						cfg.errorHandler(err)
					}
					continue
				}

				select {
				case <-ctx.Done():
					return
				case out <- res:
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Collect drains a stream into a slice, preserving arrival order. It
// blocks until the stream closes or the context is cancelled.
func Collect[T any](ctx context.Context, input Stream[T]) ([]T, error) {
	var items []T
	for {
		select {
		case <-ctx.Done():
			return items, ctx.Err()
		case item, ok := <-input:
			if !ok {
				return items, nil
			}
			items = append(items, item)
		}
	}
}

// ForEach executes an action for every item in the stream. It blocks until
// the stream is exhausted or the context is cancelled, returning the first
// unhandled error.
func ForEach[T any](ctx context.Context, input Stream[T], fn func(T) error, opts ...Option) error {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-input:
				if !ok {
					return
				}

				err := fn(item)
				for attempt := 1; err != nil && attempt <= cfg.maxRetries; attempt++ {
					if cfg.backoff != nil {
						select {
						case <-ctx.Done():
							return
						case <-time.After(cfg.backoff(attempt)):
						}
					}
					err = fn(item)
				}

				if err != nil {
					if cfg.errorHandler != nil && cfg.errorHandler(err) {
						continue
					}
					errOnce.Do(func() { firstErr = err })
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return firstErr
}
