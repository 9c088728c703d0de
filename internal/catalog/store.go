package catalog

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FindConfigFile looks for a catalog file in the standard locations:
// the path as given, ./config/, and $HOME/.finsift/.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".finsift", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

// Load reads, parses, and compiles a rule catalog from a YAML file.
// Any failure is reported as a *ConfigError; a catalog is returned only when
// every entry validated.
func Load(filename string) (*Catalog, error) {
	path, err := FindConfigFile(filename)
	if err != nil {
		return nil, &ConfigError{Path: filename, Reason: "file not found", Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "file not readable", Err: err}
	}

	var cfg FileConfig
	// yaml.v3 rejects duplicate mapping keys, which is exactly the behavior
	// the overrides map needs: the same phrase twice in one file is an error,
	// not a silent last-one-wins.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Reason: "malformed YAML", Err: err}
	}

	return build(cfg, path)
}
