package datasource

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultLoadTimeout = 30 * time.Second

// Loader fetches the dataset once and hands the same copy to every caller.
// Concurrent callers share one in-flight load, and each stops waiting when
// its own context ends. A failed load is not remembered, so a later caller
// may try again.
type Loader struct {
	src     Source
	logger  *slog.Logger
	timeout time.Duration
	group   singleflight.Group

	mu     sync.RWMutex
	ds     Dataset
	loaded bool

	ready   atomic.Bool
	records atomic.Int64
}

type LoaderOption func(*Loader)

// WithLoadTimeout bounds a single load, independent of the callers waiting
// on it.
func WithLoadTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func NewLoader(src Source, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{src: src, logger: logger, timeout: DefaultLoadTimeout}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Loader) Get(ctx context.Context) (Dataset, error) {
	if ds, ok := l.cached(); ok {
		return ds, nil
	}

	ch := l.group.DoChan("dataset", func() (any, error) {
		return l.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return Dataset{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Dataset{}, r.Err
		}
		return r.Val.(Dataset), nil
	}
}

func (l *Loader) cached() (Dataset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ds, l.loaded
}

func (l *Loader) load(ctx context.Context) (Dataset, error) {
	if ds, ok := l.cached(); ok {
		return ds, nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ds, err := Load(ctx, l.src)
	if err != nil {
		l.logger.Error("dataset load failed", "source", l.src.Name(), "err", err)
		return Dataset{}, err
	}

	l.mu.Lock()
	l.ds = ds
	l.loaded = true
	l.mu.Unlock()
	l.records.Store(int64(len(ds.Properties)))
	l.ready.Store(true)

	l.logger.Info("dataset loaded",
		"source", l.src.Name(),
		"properties", len(ds.Properties),
		"activities", len(ds.Activities))
	return ds, nil
}

// Ready reports whether a load has succeeded. It does not wait for a load
// in progress.
func (l *Loader) Ready() bool { return l.ready.Load() }

// Readiness reports readiness along with the number of property records.
func (l *Loader) Readiness() (bool, int) {
	return l.ready.Load(), int(l.records.Load())
}
