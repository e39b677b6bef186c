package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mohammed-shakir/storefront-map/internal/core/model"
)

// FileSource reads properties.json and activities.json from a directory.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource { return &FileSource{Dir: dir} }

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Properties(ctx context.Context) ([]model.PropertyRecord, error) {
	b, err := s.read(ctx, PropertiesFile)
	if err != nil {
		return nil, err
	}
	return decodeProperties(b)
}

func (s *FileSource) Activities(ctx context.Context) ([]string, error) {
	b, err := s.read(ctx, ActivitiesFile)
	if err != nil {
		return nil, err
	}
	return decodeActivities(b)
}

func (s *FileSource) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := filepath.Join(s.Dir, name)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return b, nil
}
