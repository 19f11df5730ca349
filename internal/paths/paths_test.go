package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform replaces OS detection for the duration of the test.
func fakePlatform(t *testing.T, goos, home, userConfig string) {
	t.Helper()
	orig := platformDir
	t.Cleanup(func() { platformDir = orig })
	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return userConfig, nil }
}

func TestDefaultDirs(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		xdgConfig  string
		xdgData    string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux with XDG set",
			goos:       "linux",
			xdgConfig:  "/xdg/config",
			xdgData:    "/xdg/data",
			wantConfig: "/xdg/config/biblio",
			wantData:   "/xdg/data/biblio",
		},
		{
			name:       "linux home fallback",
			goos:       "linux",
			wantConfig: "/home/reader/.config/biblio",
			wantData:   "/home/reader/.local/share/biblio",
		},
		{
			name:       "darwin keeps data under the config dir",
			goos:       "darwin",
			xdgConfig:  "/ignored",
			xdgData:    "/ignored",
			wantConfig: "/Users/reader/Library/Application Support/biblio",
			wantData:   "/Users/reader/Library/Application Support/biblio/data",
		},
		{
			name:       "windows",
			goos:       "windows",
			wantConfig: "/AppData/Roaming/biblio",
			wantData:   "/AppData/Roaming/biblio/data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userConfig := "/Users/reader/Library/Application Support"
			if tt.goos == "windows" {
				userConfig = "/AppData/Roaming"
			}
			fakePlatform(t, tt.goos, "/home/reader", userConfig)
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			t.Setenv("XDG_DATA_HOME", tt.xdgData)

			cfg, err := DefaultConfigDir()
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantConfig), cfg)

			data, err := DefaultDataDir()
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantData), data)
		})
	}
}

func TestDefaultDirsPropagateHomeError(t *testing.T) {
	fakePlatform(t, "linux", "", "")
	platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
	t.Setenv("XDG_DATA_HOME", "")

	_, err := DefaultDataDir()
	assert.EqualError(t, err, "no home")
}

func TestResolveConfigDir(t *testing.T) {
	fakePlatform(t, "linux", "/home/reader", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{"flag wins over env", "/explicit/config", "/env/config", "/explicit/config"},
		{"env when no flag", "", "/env/config", "/env/config"},
		{"platform default", "", "", "/home/reader/.config/biblio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.env)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	fakePlatform(t, "linux", "/home/reader", "")
	t.Setenv("XDG_DATA_HOME", "")
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name        string
		flag        string
		configValue string
		env         string
		want        string
	}{
		{"flag wins over all", "/flag/data", "/config/data", "/env/data", "/flag/data"},
		{"data_dir from config wins over env", "", "/config/data", "/env/data", "/config/data"},
		{"relative data_dir from config is made absolute", "", "library", "/env/data", filepath.Join(cwd, "library")},
		{"env when flag and config empty", "", "", "/env/data", "/env/data"},
		{"relative env is made absolute", "", "", "shelf", filepath.Join(cwd, "shelf")},
		{"platform default when all empty", "", "", "", "/home/reader/.local/share/biblio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.env)
			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}
