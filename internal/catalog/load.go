package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads a dataset from fs, choosing the decoder by file extension
// (.json, .yaml/.yml or .toml). An empty path yields an empty catalog.
func Load(fs afero.Fs, path string) (*Catalog, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var ds Dataset
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &ds)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ds)
	case ".toml":
		err = toml.Unmarshal(data, &ds)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return New(ds)
}
