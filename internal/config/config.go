// Package config builds and validates the run-wide, immutable Config shared
// read-only by every worker, from CLI flags layered over an optional TOML
// defaults file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the optional on-disk defaults file.
type FileConfig struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. Pointer fields distinguish
// "unset, inherit the built-in default" from an explicit false/zero value.
type DefaultsConfig struct {
	Threads    *int    `toml:"threads"`
	BWLimit    *string `toml:"bwlimit"`
	Verify     *bool   `toml:"verify"`
	NoSummary  *bool   `toml:"nosummary"`
	JSONOutput *bool   `toml:"json"`
	CheckACLs  *bool   `toml:"acl"`
}

// Path returns the resolved path to the defaults file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "parafind", "config.toml")
}

// Load reads the defaults file. A missing file is not an error: the
// defaults file is always optional.
func Load() (FileConfig, error) {
	path := Path()
	if path == "" {
		return FileConfig{}, nil
	}

	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileConfig{}, nil
		}
		return FileConfig{}, err
	}
	return fc, nil
}
