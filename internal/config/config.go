package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type OutputLocation string

const (
	Centralized OutputLocation = "centralized"
	CoLocated   OutputLocation = "co-located"
)

// Config is the snapshot a single processing run works from. It is passed by
// value and never mutated during a run.
type Config struct {
	SearchPattern      string         `mapstructure:"image_search_pattern"`
	ExactMatch         bool           `mapstructure:"exact_match"`
	OutputLocation     OutputLocation `mapstructure:"output_location"`
	OutputFolder       string         `mapstructure:"output_folder"`
	DelaySeconds       float64        `mapstructure:"delay_between_generations"`
	DriverAsset        string         `mapstructure:"driver_video"`
	APIKey             string         `mapstructure:"api_key"`
	Verbose            bool           `mapstructure:"verbose_logging"`
	DuplicateDetection bool           `mapstructure:"duplicate_detection"`
	DuplicateDirs      []string       `mapstructure:"duplicate_dirs"`
	GeneratorCommand   string         `mapstructure:"generator_command"`
	AssetsDir          string         `mapstructure:"assets_dir"`
	MetricsFile        string         `mapstructure:"metrics_file"`
	LogFile            string         `mapstructure:"log_file"`
}

func DefaultConfig() Config {
	downloads := DownloadsDir()
	return Config{
		SearchPattern:      "genx",
		ExactMatch:         false,
		OutputLocation:     Centralized,
		OutputFolder:       downloads,
		DelaySeconds:       1,
		Verbose:            false,
		DuplicateDetection: true,
		DuplicateDirs:      []string{downloads},
		AssetsDir:          "assets",
	}
}

// Delay is the fixed pause between two generation calls.
func (c Config) Delay() time.Duration {
	if c.DelaySeconds <= 0 {
		return 0
	}
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

func (c Config) CoLocated() bool {
	return c.OutputLocation == CoLocated
}

func (c Config) Validate() error {
	switch c.OutputLocation {
	case Centralized, CoLocated:
	default:
		return fmt.Errorf("output_location must be %q or %q, got %q", Centralized, CoLocated, c.OutputLocation)
	}
	if c.OutputLocation == Centralized && strings.TrimSpace(c.OutputFolder) == "" {
		return errors.New("output_folder is required for centralized output")
	}
	if c.DelaySeconds < 0 {
		return errors.New("delay_between_generations must not be negative")
	}
	if strings.TrimSpace(c.SearchPattern) == "" {
		return errors.New("image_search_pattern must not be empty")
	}
	return nil
}

// ValidateForRun checks the fields only a real generation run needs.
func (c Config) ValidateForRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.GeneratorCommand) == "" {
		return errors.New("generator_command is required to run generations")
	}
	return nil
}

// MaskedAPIKey shows just enough of the key to recognise it.
func (c Config) MaskedAPIKey() string {
	if c.APIKey == "" {
		return ""
	}
	if len(c.APIKey) > 20 {
		return c.APIKey[:10] + "..." + c.APIKey[len(c.APIKey)-4:]
	}
	return "***"
}

func (c Config) MatchMode() string {
	if c.ExactMatch {
		return "Exact"
	}
	return "Contains"
}

// DownloadsDir is the user's Downloads folder, falling back to the working
// directory when no home directory is known.
func DownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// NormalizeDirArg trims trailing separators so paths compare cleanly.
func NormalizeDirArg(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	return cleaned
}
