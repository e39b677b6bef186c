// Package session keeps the in-memory page sessions, one controller each.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/storefront-map/internal/app"
	"github.com/mohammed-shakir/storefront-map/internal/core/config"
	"github.com/mohammed-shakir/storefront-map/internal/core/observability"
	"github.com/mohammed-shakir/storefront-map/internal/events"
)

var ErrNotFound = errors.New("session not found")

// Registry holds at most Max sessions; the least recently used one is
// dropped when a new session would exceed it. Selections are never persisted.
type Registry struct {
	log    *slog.Logger
	data   app.DatasetProvider
	view   config.ViewCfg
	events events.Publisher
	cache  *lru.Cache[string, *app.Controller]
}

type Options struct {
	Max    int
	Data   app.DatasetProvider
	View   config.ViewCfg
	Logger *slog.Logger
	Events events.Publisher
}

func NewRegistry(opts Options) (*Registry, error) {
	if opts.Max <= 0 {
		opts.Max = 1024
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	r := &Registry{
		log:    opts.Logger,
		data:   opts.Data,
		view:   opts.View,
		events: opts.Events,
	}
	c, err := lru.NewWithEvict(opts.Max, func(id string, _ *app.Controller) {
		r.log.Debug("session evicted", "session", id)
	})
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	r.cache = c
	return r, nil
}

// Create builds and initializes a controller. A session whose initial load
// fails is not registered.
func (r *Registry) Create(ctx context.Context) (*app.Controller, error) {
	id := uuid.NewString()
	c := app.New(app.Options{
		ID:     id,
		Data:   r.data,
		View:   r.view,
		Logger: r.log,
		Events: r.events,
	})
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	r.cache.Add(id, c)
	observability.SetSessionsActive(r.cache.Len())
	return c, nil
}

func (r *Registry) Get(id string) (*app.Controller, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	c, ok := r.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return c, nil
}

func (r *Registry) Len() int { return r.cache.Len() }
