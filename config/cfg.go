// Package config loads program configuration: embedded defaults with user
// YAML file on top.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

// minBrowserTimeout is the shortest timeout a started browser can live with.
const minBrowserTimeout = time.Second

type (
	ConversionConfig struct {
		CacheSize     int    `yaml:"cache_size" validate:"min=1,max=100000"`
		ThemeDir      string `yaml:"theme_dir" validate:"omitempty,dir"`
		CustomCSSPath string `yaml:"custom_css_path" sanitize:"assure_file_access"`
		DefaultTheme  string `yaml:"default_theme" validate:"required"`
	}

	BrowserConfig struct {
		Enable   bool          `yaml:"enable"`
		ExecPath string        `yaml:"exec_path" validate:"omitempty,file"`
		Headless bool          `yaml:"headless"`
		Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	}

	Config struct {
		Version    int              `yaml:"version" validate:"eq=1"`
		Conversion ConversionConfig `yaml:"conversion"`
		Browser    BrowserConfig    `yaml:"browser"`
		Logging    LoggingConfig    `yaml:"logging"`
		Reporting  ReporterConfig   `yaml:"reporting"`
	}
)

// checkConfig validates relations between fields of different sections.
func checkConfig(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	if cfg.Browser.Enable && cfg.Browser.Timeout < minBrowserTimeout {
		sl.ReportError(cfg.Browser.Timeout, "Browser.Timeout", "Timeout", "min_browser_timeout", minBrowserTimeout.String())
	}
}

func decode(data []byte, cfg *Config, check bool) (*Config, error) {
	// only fields we know about are allowed, so no yaml.Unmarshal
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if !check {
		return cfg, nil
	}
	if err := gencfg.Sanitize(cfg); err != nil {
		return nil, fmt.Errorf("configuration sanitization failed: %w", err)
	}
	if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkConfig)); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration expands embedded configuration template to get defaults,
// puts values from the file at path (if any) on top and validates the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}

	haveFile := len(path) > 0
	cfg, err := decode(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	if data, err = os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if cfg, err = decode(data, cfg, true); err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

// Dump returns cfg as YAML.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
