// Package datasource loads the property and activity collections the map is
// built from.
package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mohammed-shakir/storefront-map/internal/core/model"
	"github.com/mohammed-shakir/storefront-map/internal/core/observability"
)

// Names under which the collections are published.
const (
	PropertiesFile = "properties.json"
	ActivitiesFile = "activities.json"

	PropertiesKey = "data:properties"
	ActivitiesKey = "data:activities"
)

type Source interface {
	Name() string
	Properties(ctx context.Context) ([]model.PropertyRecord, error)
	Activities(ctx context.Context) ([]string, error)
}

// Dataset is immutable once loaded and shared read-only by every session.
type Dataset struct {
	Properties []model.PropertyRecord
	Activities []string
	LoadedAt   time.Time
}

// Load fetches both collections concurrently and returns once both are in.
// The first failure cancels the other fetch and is returned.
func Load(ctx context.Context, src Source) (Dataset, error) {
	start := time.Now()

	var ds Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		props, err := src.Properties(gctx)
		if err != nil {
			return fmt.Errorf("load properties from %s: %w", src.Name(), err)
		}
		ds.Properties = props
		return nil
	})
	g.Go(func() error {
		acts, err := src.Activities(gctx)
		if err != nil {
			return fmt.Errorf("load activities from %s: %w", src.Name(), err)
		}
		ds.Activities = acts
		return nil
	})

	err := g.Wait()
	observability.ObserveDatasetLoad(src.Name(), err, time.Since(start).Seconds())
	if err != nil {
		return Dataset{}, err
	}
	ds.LoadedAt = time.Now()
	observability.SetDatasetRecords(len(ds.Properties), len(ds.Activities))
	return ds, nil
}

func decodeProperties(b []byte) ([]model.PropertyRecord, error) {
	var out []model.PropertyRecord
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return out, nil
}

func decodeActivities(b []byte) ([]string, error) {
	var out []string
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return out, nil
}
