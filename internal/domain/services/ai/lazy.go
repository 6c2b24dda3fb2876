package ai

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"phishguard/internal/domain/models"
)

// Loader produces a value for Lazy
type Loader[T any] func(ctx context.Context) (T, error)

// Lazy loads a value on first use. Concurrent callers share one in-flight
// load; a failed load is not remembered so the next call tries again.
type Lazy[T any] struct {
	load  Loader[T]
	group singleflight.Group

	mu     sync.RWMutex
	value  T
	loaded bool
}

// NewLazy creates a Lazy backed by load
func NewLazy[T any](load Loader[T]) *Lazy[T] {
	return &Lazy[T]{load: load}
}

// Get returns the loaded value, loading it if needed. The shared load is not
// canceled with ctx; a caller whose ctx ends stops waiting for it.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.RLock()
	if l.loaded {
		v := l.value
		l.mu.RUnlock()
		return v, nil
	}
	l.mu.RUnlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan("load", func() (any, error) {
		l.mu.RLock()
		if l.loaded {
			v := l.value
			l.mu.RUnlock()
			return v, nil
		}
		l.mu.RUnlock()

		v, err := l.load(loadCtx)
		if err != nil {
			return v, err
		}

		l.mu.Lock()
		l.value = v
		l.loaded = true
		l.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Load forces the value to load without returning it
func (l *Lazy[T]) Load(ctx context.Context) error {
	_, err := l.Get(ctx)
	return err
}

// Loaded reports whether a value has been loaded
func (l *Lazy[T]) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// LazyZeroShot is a ZeroShotClassifier loaded on first use
type LazyZeroShot struct {
	*Lazy[ZeroShotClassifier]
}

// NewLazyZeroShot creates a lazily loaded zero-shot classifier
func NewLazyZeroShot(load Loader[ZeroShotClassifier]) *LazyZeroShot {
	return &LazyZeroShot{Lazy: NewLazy(load)}
}

// Classify loads the classifier if needed and delegates to it
func (l *LazyZeroShot) Classify(ctx context.Context, text string, labels []string) (*models.ZeroShotResult, error) {
	c, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.Classify(ctx, text, labels)
}

// LazySentiment is a SentimentClassifier loaded on first use
type LazySentiment struct {
	*Lazy[SentimentClassifier]
}

// NewLazySentiment creates a lazily loaded sentiment classifier
func NewLazySentiment(load Loader[SentimentClassifier]) *LazySentiment {
	return &LazySentiment{Lazy: NewLazy(load)}
}

// Sentiment loads the classifier if needed and delegates to it
func (l *LazySentiment) Sentiment(ctx context.Context, text string) (*models.SentimentResult, error) {
	c, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.Sentiment(ctx, text)
}
