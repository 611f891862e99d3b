package cache

import (
	"os"
	"path/filepath"
)

// EnvIconCacheDir selects the persistent icon cache directory. Set to an
// empty value it disables the persistent tier.
const EnvIconCacheDir = "GRAPHRENDER_ICON_CACHE_DIR"

// ResolveDir returns the icon cache directory and whether the persistent
// tier is enabled. Lookup order:
//
//  1. $GRAPHRENDER_ICON_CACHE_DIR (set but empty disables the tier)
//  2. $XDG_CACHE_HOME/graphrender/icons
//  3. $LOCALAPPDATA/graphrender/icons
//  4. ~/.cache/graphrender/icons
//
// getenv is normally os.LookupEnv.
func ResolveDir(getenv func(string) (string, bool)) (string, bool) {
	if getenv == nil {
		getenv = os.LookupEnv
	}
	if v, ok := getenv(EnvIconCacheDir); ok {
		if v == "" {
			return "", false
		}
		return v, true
	}
	for _, env := range []string{"XDG_CACHE_HOME", "LOCALAPPDATA"} {
		if v, ok := getenv(env); ok && v != "" {
			return filepath.Join(v, "graphrender", "icons"), true
		}
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "graphrender", "icons"), true
	}
	return filepath.Join(home, ".cache", "graphrender", "icons"), true
}

// StoreForDir returns a [FileStore] for dir, or a [NullStore] when the tier
// is disabled.
func StoreForDir(dir string, enabled bool) Store {
	if !enabled {
		return NewNullStore()
	}
	return NewFileStore(dir)
}
