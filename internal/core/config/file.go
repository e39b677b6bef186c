package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyViewFile overlays the map view settings found in a YAML file. Keys
// absent from the file keep their current values.
func (c *Config) ApplyViewFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read view config: %w", err)
	}
	var file struct {
		View ViewCfg `yaml:"view"`
	}
	file.View = c.View
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse view config %s: %w", path, err)
	}
	if file.View.Zoom < 0 || file.View.Zoom > 22 {
		return fmt.Errorf("view config %s: zoom %d out of range", path, file.View.Zoom)
	}
	c.View = file.View
	return nil
}
