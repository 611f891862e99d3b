package config

import (
	"os"
	"path/filepath"
)

// EnvConfigPath names a config file explicitly.
const EnvConfigPath = "GRAPHRENDER_CONFIG"

// localNames are the file names looked up in the working directory.
var localNames = []string{"graphrender.toml", "graphrender.yaml", "graphrender.yml"}

// userNames are the file names looked up in the user config directory.
var userNames = []string{"config.toml", "config.yaml", "config.yml"}

// FindConfigPath searches for a config file in standard locations.
// Returns the first path found, or empty string if none exist.
//
// Search order:
//  1. explicit (the --config flag), returned even if it does not exist
//  2. $GRAPHRENDER_CONFIG, returned even if it does not exist
//  3. ./graphrender.toml, ./graphrender.yaml, ./graphrender.yml
//  4. $XDG_CONFIG_HOME/graphrender/config.{toml,yaml,yml}
//  5. ~/.config/graphrender/config.{toml,yaml,yml}
//
// getenv is normally os.Getenv.
func FindConfigPath(explicit string, getenv func(string) string) string {
	if explicit != "" {
		return explicit
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if p := getenv(EnvConfigPath); p != "" {
		return p
	}

	if cwd, err := os.Getwd(); err == nil {
		if p := firstExisting(cwd, localNames); p != "" {
			return p
		}
	}

	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		if p := firstExisting(filepath.Join(xdg, "graphrender"), userNames); p != "" {
			return p
		}
	}

	if home := getenv("HOME"); home != "" {
		if p := firstExisting(filepath.Join(home, ".config", "graphrender"), userNames); p != "" {
			return p
		}
	}
	return ""
}

func firstExisting(dir string, names []string) string {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
