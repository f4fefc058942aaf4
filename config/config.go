// Package config loads the export settings from the environment and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/esimov/iconic"
	"github.com/esimov/iconic/generate"
	"github.com/esimov/iconic/imop"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Pack     PackConfig     `yaml:"pack"`
	Canvas   CanvasConfig   `yaml:"canvas"`
	Generate GenerateConfig `yaml:"generate"`
	Server   ServerConfig   `yaml:"server"`
	// FontDir holds additional .ttf and .otf fonts for the text overlay.
	FontDir string `env:"ICONIC_FONT_DIR" yaml:"font_dir"`
	// Overlay is only settable from the YAML file.
	Overlay *iconic.TextOverlay `yaml:"overlay"`
}

type PackConfig struct {
	ArchiveName    string `env:"ICONIC_ARCHIVE_NAME" envDefault:"iconic-pack.zip" yaml:"archive_name"`
	IncludeSVG     bool   `env:"ICONIC_INCLUDE_SVG" envDefault:"true" yaml:"include_svg"`
	OverlayFavicon bool   `env:"ICONIC_OVERLAY_FAVICON" envDefault:"true" yaml:"overlay_favicon"`
	OverlaySVG     bool   `env:"ICONIC_OVERLAY_SVG" envDefault:"true" yaml:"overlay_svg"`
	Workers        int    `env:"ICONIC_WORKERS" envDefault:"0" yaml:"workers"`
}

type CanvasConfig struct {
	Background string  `env:"ICONIC_BACKGROUND" yaml:"background"`
	FitSquare  bool    `env:"ICONIC_FIT_SQUARE" envDefault:"false" yaml:"fit_square"`
	FitScale   float64 `env:"ICONIC_FIT_SCALE" envDefault:"1" yaml:"fit_scale"`
	// Blend is the Porter-Duff operator applied with the background, e.g. src_over.
	Blend string `env:"ICONIC_BLEND" yaml:"blend"`
}

type GenerateConfig struct {
	Endpoint string        `env:"ICONIC_ENDPOINT" envDefault:"https://text-to-image.jessejesse.workers.dev" yaml:"endpoint"`
	Timeout  time.Duration `env:"ICONIC_GENERATE_TIMEOUT" envDefault:"60s" yaml:"timeout"`
}

type ServerConfig struct {
	Addr string `env:"ICONIC_ADDR" envDefault:":8080" yaml:"addr"`
	// MaxUpload caps the size of an uploaded source image, in bytes.
	MaxUpload int64 `env:"ICONIC_MAX_UPLOAD" envDefault:"10485760" yaml:"max_upload"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the environment, then overrides it with the values set in the
// configuration file. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration values. The overlay font may come from
// FontDir, so the overlay itself is validated once the fonts are loaded.
func (c *Config) Validate() error {
	if c.Pack.Workers < 0 {
		return fmt.Errorf("pack.workers must not be negative, got %d", c.Pack.Workers)
	}
	if c.Canvas.FitScale <= 0 || c.Canvas.FitScale > 1 {
		return fmt.Errorf("canvas.fit_scale must be in (0, 1], got %g", c.Canvas.FitScale)
	}
	if err := c.canvas().Validate(); err != nil {
		return err
	}
	if c.Generate.Timeout < 0 {
		return fmt.Errorf("generate.timeout must not be negative, got %s", c.Generate.Timeout)
	}
	if c.Server.MaxUpload <= 0 {
		return fmt.Errorf("server.max_upload must be positive, got %d", c.Server.MaxUpload)
	}
	return nil
}

// Processor returns a processor configured with the export settings.
func (c *Config) Processor() *iconic.Processor {
	p := iconic.NewProcessor()
	p.Overlay = c.Overlay
	p.Canvas = c.canvas()
	p.IncludeSVG = c.Pack.IncludeSVG
	p.OverlayFavicon = c.Pack.OverlayFavicon
	p.OverlaySVG = c.Pack.OverlaySVG
	p.Workers = c.Pack.Workers
	if len(c.Pack.ArchiveName) > 0 {
		p.ArchiveName = c.Pack.ArchiveName
	}
	return p
}

// Generator returns the text-to-image client.
func (c *Config) Generator() *generate.Client {
	return generate.New(c.Generate.Endpoint, c.Generate.Timeout)
}

func (c *Config) canvas() iconic.Canvas {
	return iconic.Canvas{
		Background: c.Canvas.Background,
		FitSquare:  c.Canvas.FitSquare,
		Scale:      c.Canvas.FitScale,
		Blend:      imop.Op(c.Canvas.Blend),
	}
}
