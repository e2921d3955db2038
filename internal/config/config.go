// Package config resolves ec2etl settings from defaults, an optional YAML file
// and EC2ETL_* environment variables. Command-line flags are applied last by
// the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv
const (
	EnvRegionsFile   = "EC2ETL_REGIONS_FILE"
	EnvOutput        = "EC2ETL_OUTPUT"
	EnvRegionTimeout = "EC2ETL_REGION_TIMEOUT"
	EnvLogLevel      = "EC2ETL_LOG_LEVEL"
	EnvLogFormat     = "EC2ETL_LOG_FORMAT"
	EnvMetricsFile   = "EC2ETL_METRICS_FILE"
	EnvStrict        = "EC2ETL_STRICT"
	EnvS3PathStyle   = "EC2ETL_S3_PATH_STYLE"
)

// Config holds all ec2etl settings
type Config struct {
	// RegionsFile lists one region per line.
	RegionsFile string `yaml:"regionsFile"`
	// Output is a directory or an s3://bucket/prefix URI.
	Output string `yaml:"output"`
	// RegionTimeout bounds each region's cycle; 0 disables the deadline.
	RegionTimeout time.Duration `yaml:"regionTimeout"`
	LogLevel      string        `yaml:"logLevel"`
	LogFormat     string        `yaml:"logFormat"` // "text" or "json"
	// MetricsFile receives Prometheus metrics in text format after the run.
	MetricsFile string `yaml:"metricsFile"`
	// Strict makes the process exit non-zero when any region failed.
	Strict bool `yaml:"strict"`
	// S3PathStyle enables path-style addressing for S3-compatible endpoints.
	S3PathStyle bool `yaml:"s3PathStyle"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		RegionsFile: "regions.txt",
		Output:      ".",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load returns Default overlaid with the YAML file at path (if any) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("error opening config file: %w", err)
		}
		defer f.Close()

		if err := decodeYAML(f, &cfg); err != nil {
			return cfg, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from environment variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRegionsFile); ok && v != "" {
		c.RegionsFile = v
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output = v
	}
	if v, ok := lookup(EnvRegionTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRegionTimeout, err)
		}
		c.RegionTimeout = d
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvMetricsFile); ok && v != "" {
		c.MetricsFile = v
	}
	if v, ok := lookup(EnvStrict); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvStrict, err)
		}
		c.Strict = b
	}
	if v, ok := lookup(EnvS3PathStyle); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvS3PathStyle, err)
		}
		c.S3PathStyle = b
	}
	return nil
}

// Validate checks that the settings are usable
func (c Config) Validate() error {
	if c.RegionsFile == "" {
		return errors.New("regions file must not be empty")
	}
	if c.Output == "" {
		return errors.New("output location must not be empty")
	}
	if c.RegionTimeout < 0 {
		return fmt.Errorf("region timeout must not be negative, got %s", c.RegionTimeout)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q (want text or json)", c.LogFormat)
	}
	return nil
}
