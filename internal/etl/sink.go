package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mohammed-shakir/storefront-map/internal/datasource"
)

// Sink stores the published documents where a data source can read them.
type Sink interface {
	Name() string
	Publish(ctx context.Context, properties, activities []byte) error
}

// FileSink writes properties.json and activities.json into Dir.
type FileSink struct {
	Dir string
}

func (s FileSink) Name() string { return "file" }

func (s FileSink) Publish(_ context.Context, properties, activities []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("file sink: %w", err)
	}
	for name, body := range map[string][]byte{
		datasource.PropertiesFile: properties,
		datasource.ActivitiesFile: activities,
	} {
		if err := writeAtomic(filepath.Join(s.Dir, name), body); err != nil {
			return fmt.Errorf("file sink: %w", err)
		}
	}
	return nil
}

func writeAtomic(path string, body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".etl-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

type MultiSetter interface {
	MSet(ctx context.Context, kv map[string][]byte, ttl time.Duration) error
}

// RedisSink stores both documents in one transaction under the keys the
// redis data source reads.
type RedisSink struct {
	Store MultiSetter
}

func (s RedisSink) Name() string { return "redis" }

func (s RedisSink) Publish(ctx context.Context, properties, activities []byte) error {
	err := s.Store.MSet(ctx, map[string][]byte{
		datasource.PropertiesKey: properties,
		datasource.ActivitiesKey: activities,
	}, 0)
	if err != nil {
		return fmt.Errorf("redis sink: %w", err)
	}
	return nil
}
