package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/bibliotheca/internal/openlibrary"
	"github.com/mesh-intelligence/bibliotheca/internal/query"
	"github.com/mesh-intelligence/bibliotheca/internal/reconcile"
	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envFileName    = ".env"
	envPrefix      = "BIBLIO"

	cfgKeyBackend   = "backend"
	cfgKeyDataDir   = "data_dir"
	cfgKeyLocale    = "locale"
	cfgKeySeed      = "seed"
	cfgKeyLogLevel  = "log_level"
	cfgKeyOLBaseURL = "openlibrary.base_url"
	cfgKeyOLAgent   = "openlibrary.user_agent"
	cfgKeyOLTimeout = "openlibrary.timeout"
	cfgKeyOLRPS     = "openlibrary.rps"
	cfgKeyOLRetries = "openlibrary.retries"
	cfgKeyOLLimit   = "openlibrary.limit"

	defaultBackend  = types.BackendFile
	defaultLogLevel = "warn"
)

// configFile is the structure written to config.yaml.
type configFile struct {
	Backend     string            `yaml:"backend"`
	DataDir     string            `yaml:"data_dir,omitempty"`
	Locale      string            `yaml:"locale"`
	Seed        bool              `yaml:"seed"`
	LogLevel    string            `yaml:"log_level"`
	OpenLibrary openLibraryConfig `yaml:"openlibrary"`
}

type openLibraryConfig struct {
	BaseURL   string  `yaml:"base_url"`
	UserAgent string  `yaml:"user_agent"`
	Timeout   string  `yaml:"timeout"`
	RPS       float64 `yaml:"rps"`
	Retries   int     `yaml:"retries"`
	Limit     int     `yaml:"limit"`
}

func defaultConfigFile() configFile {
	return configFile{
		Backend:  defaultBackend,
		Locale:   query.DefaultLocale,
		Seed:     true,
		LogLevel: defaultLogLevel,
		OpenLibrary: openLibraryConfig{
			BaseURL:   openlibrary.DefaultBaseURL,
			UserAgent: openlibrary.DefaultUserAgent,
			Timeout:   openlibrary.DefaultTimeout.String(),
			RPS:       openlibrary.DefaultRPS,
			Retries:   openlibrary.DefaultRetries,
			Limit:     reconcile.DefaultLimit,
		},
	}
}

// settings is the resolved configuration for one invocation.
type settings struct {
	Backend     string
	DataDir     string
	Locale      string
	Seed        bool
	LogLevel    string
	OpenLibrary openlibrary.Options
	SearchLimit int
}

// loadSettings reads config.yaml from configDir with Viper, creating the
// directory and a default file on first run. A .env file next to it is
// loaded into the environment first; variables already set win. BIBLIO_*
// variables override file values, except data_dir which is resolved by
// internal/paths.
func loadSettings(configDir string) (settings, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return settings{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return settings{}, fmt.Errorf("ensure default config: %w", err)
	}
	if err := godotenv.Load(filepath.Join(configDir, envFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return settings{}, fmt.Errorf("load %s: %w", envFileName, err)
	}

	v := viper.New()
	def := defaultConfigFile()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyLocale, def.Locale)
	v.SetDefault(cfgKeySeed, def.Seed)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyOLBaseURL, def.OpenLibrary.BaseURL)
	v.SetDefault(cfgKeyOLAgent, def.OpenLibrary.UserAgent)
	v.SetDefault(cfgKeyOLTimeout, def.OpenLibrary.Timeout)
	v.SetDefault(cfgKeyOLRPS, def.OpenLibrary.RPS)
	v.SetDefault(cfgKeyOLRetries, def.OpenLibrary.Retries)
	v.SetDefault(cfgKeyOLLimit, def.OpenLibrary.Limit)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{
		cfgKeyBackend, cfgKeyLocale, cfgKeySeed, cfgKeyLogLevel,
		cfgKeyOLBaseURL, cfgKeyOLAgent, cfgKeyOLTimeout, cfgKeyOLRPS, cfgKeyOLRetries, cfgKeyOLLimit,
	} {
		if err := v.BindEnv(key); err != nil {
			return settings{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString(cfgKeyOLTimeout))
	if err != nil {
		return settings{}, fmt.Errorf("invalid %s: %w", cfgKeyOLTimeout, err)
	}

	return settings{
		Backend:  v.GetString(cfgKeyBackend),
		DataDir:  v.GetString(cfgKeyDataDir),
		Locale:   v.GetString(cfgKeyLocale),
		Seed:     v.GetBool(cfgKeySeed),
		LogLevel: v.GetString(cfgKeyLogLevel),
		OpenLibrary: openlibrary.Options{
			BaseURL:   v.GetString(cfgKeyOLBaseURL),
			UserAgent: v.GetString(cfgKeyOLAgent),
			Timeout:   timeout,
			RPS:       v.GetFloat64(cfgKeyOLRPS),
			Retries:   v.GetInt(cfgKeyOLRetries),
		},
		SearchLimit: v.GetInt(cfgKeyOLLimit),
	}, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# biblio configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
