package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "ACTBATCH"

	configDirName  = "actbatch"
	configFileName = "config.json"
)

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindFloat
	kindList
)

var keys = map[string]keyKind{
	"image_search_pattern":      kindString,
	"exact_match":               kindBool,
	"output_location":           kindString,
	"output_folder":             kindString,
	"delay_between_generations": kindFloat,
	"driver_video":              kindString,
	"api_key":                   kindString,
	"verbose_logging":           kindBool,
	"duplicate_detection":       kindBool,
	"duplicate_dirs":            kindList,
	"generator_command":         kindString,
	"assets_dir":                kindString,
	"metrics_file":              kindString,
	"log_file":                  kindString,
}

// Keys returns every persisted configuration key, sorted.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for key := range keys {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Store loads, merges and persists the flat settings mapping. Precedence,
// lowest first: defaults, config file, .env, ACTBATCH_* environment, bound
// command-line flags.
type Store struct {
	v       *viper.Viper
	path    string
	envFile string
}

// NewStore creates a store backed by path. An empty path selects DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{v: viper.New(), path: path, envFile: ".env"}
}

// DefaultPath is $XDG_CONFIG_HOME/actbatch/config.json, or
// ~/.config/actbatch/config.json when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	if dir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && dir != "" {
		return filepath.Join(dir, configDirName, configFileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", configDirName, configFileName)
	}
	return configFileName
}

func (s *Store) Path() string {
	return s.path
}

// BindFlag makes a command-line flag override key when the flag is set.
func (s *Store) BindFlag(key string, flag *pflag.Flag) error {
	if _, ok := keys[key]; !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if flag == nil {
		return fmt.Errorf("flag for %q not defined", key)
	}
	return s.v.BindPFlag(key, flag)
}

func (s *Store) Load() (Config, error) {
	if err := godotenv.Load(s.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error reading %s: %w", s.envFile, err)
	}

	s.v.SetConfigFile(s.path)
	s.v.SetConfigType("json")
	s.v.SetEnvPrefix(EnvPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	s.v.AutomaticEnv()
	setDefaults(s.v)

	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error reading config file %s: %w", s.path, err)
		}
	}

	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return resolvePaths(cfg), nil
}

// Set persists a single key to the config file. Only the file contents are
// rewritten; environment and flag overrides are never saved.
func (s *Store) Set(key, value string) error {
	kind, ok := keys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if key == "output_location" {
		loc := OutputLocation(value)
		if loc != Centralized && loc != CoLocated {
			return fmt.Errorf("output_location must be %q or %q", Centralized, CoLocated)
		}
	}

	fv, err := s.fileOnly()
	if err != nil {
		return err
	}
	fv.Set(key, parsed)
	return s.write(fv)
}

// Save writes every field of cfg to the config file.
func (s *Store) Save(cfg Config) error {
	fv, err := s.fileOnly()
	if err != nil {
		return err
	}
	for key, value := range asMap(cfg) {
		fv.Set(key, value)
	}
	return s.write(fv)
}

func (s *Store) fileOnly() (*viper.Viper, error) {
	fv := viper.New()
	fv.SetConfigFile(s.path)
	fv.SetConfigType("json")
	if err := fv.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", s.path, err)
		}
	}
	return fv, nil
}

func (s *Store) write(fv *viper.Viper) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := fv.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	for key, value := range asMap(DefaultConfig()) {
		v.SetDefault(key, value)
	}
}

func asMap(cfg Config) map[string]any {
	return map[string]any{
		"image_search_pattern":      cfg.SearchPattern,
		"exact_match":               cfg.ExactMatch,
		"output_location":           string(cfg.OutputLocation),
		"output_folder":             cfg.OutputFolder,
		"delay_between_generations": cfg.DelaySeconds,
		"driver_video":              cfg.DriverAsset,
		"api_key":                   cfg.APIKey,
		"verbose_logging":           cfg.Verbose,
		"duplicate_detection":       cfg.DuplicateDetection,
		"duplicate_dirs":            cfg.DuplicateDirs,
		"generator_command":         cfg.GeneratorCommand,
		"assets_dir":                cfg.AssetsDir,
		"metrics_file":              cfg.MetricsFile,
		"log_file":                  cfg.LogFile,
	}
}

func parseValue(kind keyKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindBool:
		return strconv.ParseBool(value)
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		if f < 0 {
			return nil, errors.New("must not be negative")
		}
		return f, nil
	case kindList:
		if value == "" {
			return []string{}, nil
		}
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return value, nil
	}
}

func resolvePaths(cfg Config) Config {
	cfg.OutputFolder = expandHome(cfg.OutputFolder)
	cfg.DriverAsset = expandHome(cfg.DriverAsset)
	cfg.AssetsDir = expandHome(cfg.AssetsDir)
	cfg.MetricsFile = expandHome(cfg.MetricsFile)
	cfg.LogFile = expandHome(cfg.LogFile)
	dirs := make([]string, 0, len(cfg.DuplicateDirs))
	for _, dir := range cfg.DuplicateDirs {
		if dir = expandHome(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	cfg.DuplicateDirs = dirs
	return cfg
}

func expandHome(path string) string {
	path = NormalizeDirArg(path)
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
