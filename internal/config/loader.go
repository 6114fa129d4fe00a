package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/gotestr/pkg/gtlog"
)

const projectConfigFileName = ".gotestr.yaml"

// Load reads .gotestr.yaml from dir, falling back to Default() when the
// file doesn't exist, mirroring the teacher's LoadConfig's
// read-or-default-then-unmarshal shape (internal/config/loader.go in
// giantswarm-muster).
func Load(dir string) (ProjectConfig, error) {
	cfg := Default()

	path := filepath.Join(dir, projectConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			gtlog.Info("config", "no %s found in %s, using defaults", projectConfigFileName, dir)
			return cfg, nil
		}
		return ProjectConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ProjectConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	gtlog.Info("config", "loaded project configuration from %s", path)
	return cfg, nil
}
