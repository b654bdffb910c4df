package config

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/user/ratevthresh_go/internal/parser"
	"github.com/user/ratevthresh_go/internal/report"
)

// EnvPrefix is prepended to every key when read from the environment,
// e.g. RATEVTHRESH_DIR.
const EnvPrefix = "RATEVTHRESH"

// DefaultConfigName is looked up in the working directory when no
// config file is given explicitly.
const DefaultConfigName = ".ratevthresh"

// Keys shared by flags, environment and config file.
const (
	KeyDir              = "dir"
	KeyPrefix           = "prefix"
	KeyMissing          = "missing"
	KeyPlaceholder      = "placeholder"
	KeyPDF              = "pdf"
	KeyHeatmapThreshold = "heatmap-threshold"
	KeyTargetRate       = "target-rate"
	KeyVerbose          = "verbose"
)

const DefaultTargetRate = 100.0

// Config is the resolved run configuration.
type Config struct {
	Dir         string
	Prefix      string
	Missing     report.MissingPolicy
	Placeholder string

	PDFPath string
	// HeatmapThreshold is nil when the lowest scanned threshold should be used.
	HeatmapThreshold *int
	TargetRate       float64

	Verbose bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDir, ".")
	v.SetDefault(KeyPrefix, parser.DefaultFilePrefix)
	v.SetDefault(KeyMissing, string(report.MissingFail))
	v.SetDefault(KeyPlaceholder, report.DefaultPlaceholder)
	v.SetDefault(KeyPDF, "")
	v.SetDefault(KeyTargetRate, DefaultTargetRate)
	v.SetDefault(KeyVerbose, false)
}

// ReadFile reads the config file into v. With an empty path the optional
// DefaultConfigName(.yaml) in the working directory is tried; its absence
// is not an error.
func ReadFile(v *viper.Viper, fsys afero.Fs, path string) error {
	v.SetFs(fsys)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return nil
	}

	v.AddConfigPath(".")
	v.SetConfigName(DefaultConfigName)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	missing, err := report.ParseMissingPolicy(v.GetString(KeyMissing))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyMissing, err)
	}

	cfg := Config{
		Dir:         v.GetString(KeyDir),
		Prefix:      v.GetString(KeyPrefix),
		Missing:     missing,
		Placeholder: v.GetString(KeyPlaceholder),
		PDFPath:     v.GetString(KeyPDF),
		TargetRate:  v.GetFloat64(KeyTargetRate),
		Verbose:     v.GetBool(KeyVerbose),
	}
	if v.IsSet(KeyHeatmapThreshold) {
		th := v.GetInt(KeyHeatmapThreshold)
		cfg.HeatmapThreshold = &th
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be rejected by flag parsing alone.
func (c Config) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("%s must not be empty", KeyPrefix)
	}
	if c.TargetRate < 0 {
		return fmt.Errorf("%s must not be negative, got %v", KeyTargetRate, c.TargetRate)
	}
	return nil
}
