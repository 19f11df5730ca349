// Package paths resolves where biblio keeps its configuration and its
// catalog data.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "biblio"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "BIBLIO_CONFIG_DIR"
	EnvDataDir   = "BIBLIO_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/biblio (fallback ~/.config/biblio)
// macOS:   ~/Library/Application Support/biblio
// Windows: %APPDATA%/biblio
func DefaultConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/biblio (fallback ~/.local/share/biblio)
// macOS:   ~/Library/Application Support/biblio/data
// Windows: %APPDATA%/biblio/data
func DefaultDataDir() (string, error) {
	if platformDir.goos != "linux" {
		dir, err := appDir("", "")
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "data"), nil
	}
	return appDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// appDir returns AppName under $xdgEnv or ~/homeRel on Linux, and under
// os.UserConfigDir elsewhere.
func appDir(xdgEnv, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > BIBLIO_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configValue (data_dir in config.yaml) > BIBLIO_DATA_DIR env >
// DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, dir := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	return DefaultDataDir()
}
