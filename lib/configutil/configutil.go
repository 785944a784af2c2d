package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalName returns the path of the local override file for `name`,
// "robotorder.json5" becomes "robotorder.local.json5".
func LocalName(name string) string {
	prefixname, ext := splitExt(filepath.Base(name))
	if ext == "" {
		return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local", prefixname))
	}
	return filepath.Join(
		filepath.Dir(name),
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
}

func readJson5[T any](path string) (T, bool, error) {
	var out T
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if len(contents) == 0 {
		return out, false, nil
	}
	err = json5.Unmarshal(contents, &out)
	if err != nil {
		return out, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, true, nil
}

// reads a configuration file, `name` should come with a file extension.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// os.ErrNotExist is returned when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	out, found, err := readJson5[T](name)
	if err != nil {
		return out, err
	}

	localFilepath := LocalName(name)
	override, foundLocal, err := readJson5[T](localFilepath)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localFilepath)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadConfig but it recursively goes up the filesystem until the root
// to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return defaultOut, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}

// WithDefaults fills every zero field of `config` with the matching field of
// `defaults`.
func WithDefaults[T any](config T, defaults T) (T, error) {
	err := mergo.Merge(&config, defaults)
	return config, err
}
