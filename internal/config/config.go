package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/staffline-mcp/internal/imaging"
)

//go:embed sample_config.toml
var sampleConfig string

// Log contains configuration for log output.
type Log struct {
	Level  string `toml:"level" json:"level" yaml:"level"`
	Format string `toml:"format" json:"format" yaml:"format"`
}

// Detection contains the pixel grid options used when a request or scan
// does not specify its own.
type Detection struct {
	Channel    string  `toml:"channel" json:"channel" yaml:"channel"`
	BlurRadius float64 `toml:"blur_radius" json:"blur_radius" yaml:"blur_radius"`
	Invert     bool    `toml:"invert" json:"invert" yaml:"invert"`
}

// Scan contains batch scan settings.
type Scan struct {
	Workers int    `toml:"workers" json:"workers" yaml:"workers"`
	Format  string `toml:"format" json:"format" yaml:"format"`
}

// Overlay contains colors for rendered overlays.
type Overlay struct {
	LineColor  string  `toml:"line_color" json:"line_color" yaml:"line_color"`
	StaffColor string  `toml:"staff_color" json:"staff_color" yaml:"staff_color"`
	Opacity    float64 `toml:"opacity" json:"opacity" yaml:"opacity"`
}

// Config encapsulates all configuration values for staffline-mcp.
type Config struct {
	Log       Log       `toml:"log" json:"log" yaml:"log"`
	Detection Detection `toml:"detection" json:"detection" yaml:"detection"`
	Scan      Scan      `toml:"scan" json:"scan" yaml:"scan"`
	Overlay   Overlay   `toml:"overlay" json:"overlay" yaml:"overlay"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file.
//
// An empty path selects the default location. The returned string is the
// resolved path and the bool reports whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if value, ok := os.LookupEnv(logLevelEnvVariable); ok && strings.TrimSpace(value) != "" {
		c.Log.Level = strings.ToLower(strings.TrimSpace(value))
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}

	c.Detection.Channel = strings.ToLower(strings.TrimSpace(c.Detection.Channel))
	if c.Detection.Channel == "" {
		c.Detection.Channel = defaultChannel
	}

	c.Scan.Format = strings.ToLower(strings.TrimSpace(c.Scan.Format))
	if c.Scan.Format == "" {
		c.Scan.Format = defaultScanFormat
	}

	c.Overlay.LineColor = strings.TrimSpace(c.Overlay.LineColor)
	if c.Overlay.LineColor == "" {
		c.Overlay.LineColor = defaultLineColor
	}
	c.Overlay.StaffColor = strings.TrimSpace(c.Overlay.StaffColor)
	if c.Overlay.StaffColor == "" {
		c.Overlay.StaffColor = defaultStaffColor
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if _, err := imaging.ParseChannel(c.Detection.Channel); err != nil {
		return fmt.Errorf("detection.channel: %w", err)
	}
	if c.Detection.BlurRadius < 0 {
		return errors.New("detection.blur_radius must be >= 0")
	}

	if c.Scan.Workers < 0 || c.Scan.Workers > maxScanWorkers {
		return fmt.Errorf("scan.workers must be between 0 and %d", maxScanWorkers)
	}
	switch c.Scan.Format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("scan.format must be table, json or yaml, got %q", c.Scan.Format)
	}

	if c.Overlay.Opacity < 0 || c.Overlay.Opacity > 1 {
		return errors.New("overlay.opacity must be between 0 and 1")
	}
	return nil
}

// GridOptions returns the configured pixel grid options for the whole image.
func (c *Config) GridOptions() imaging.GridOptions {
	channel, err := imaging.ParseChannel(c.Detection.Channel)
	if err != nil {
		channel = imaging.ChannelLuma
	}
	return imaging.GridOptions{
		Channel:    channel,
		BlurRadius: c.Detection.BlurRadius,
		Invert:     c.Detection.Invert,
	}
}

// OverlayOptions returns the configured overlay colors.
func (c *Config) OverlayOptions() imaging.OverlayOptions {
	return imaging.OverlayOptions{
		LineColor:  c.Overlay.LineColor,
		StaffColor: c.Overlay.StaffColor,
		Opacity:    c.Overlay.Opacity,
	}
}

// ScanWorkers returns the number of parallel scan workers to use.
func (c *Config) ScanWorkers() int {
	if c.Scan.Workers > 0 {
		return c.Scan.Workers
	}
	return runtime.NumCPU()
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath resolves "~" and relative paths the same way Load does.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is never overwritten.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
