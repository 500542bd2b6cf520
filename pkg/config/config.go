// Package config holds the explicit configuration passed into the fetcher,
// the compositor and the display backends.
//
// Configuration is read from a TOML file. Every key is optional; missing
// keys keep the values from [Default]:
//
//	[cache]
//	dir = "/var/lib/artframe"
//
//	[fetch]
//	retries = 3
//	timeout = "15s"
//
//	[paint]
//	rotate = 90
//	brightness = 1.2
//	contrast = 1.2
//	font_path = "NotoSans-Regular.otf"
//	font_size = 18
//
//	[display]
//	kind = "inky"
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
)

// Default locations.
const (
	DefaultFile        = "artframe.toml"
	DefaultMuseumURL   = "https://collectionapi.metmuseum.org/public/collection/v1"
	DefaultCatalogFile = "collection.json"
)

// Display kinds.
const (
	DisplayAuto   = "auto"
	DisplayInky   = "inky"
	DisplayQuote0 = "quote0"
	DisplayFile   = "file"
	DisplayWeb    = "web"
)

// Config is the root configuration.
type Config struct {
	Cache   CacheConfig   `toml:"cache"`
	Museum  MuseumConfig  `toml:"museum"`
	Fetch   FetchConfig   `toml:"fetch"`
	Paint   PaintConfig   `toml:"paint"`
	Display DisplayConfig `toml:"display"`
	Watch   WatchConfig   `toml:"watch"`
}

// CacheConfig locates the directory holding the catalog, records and images.
type CacheConfig struct {
	Dir         string `toml:"dir"`
	CatalogFile string `toml:"catalog_file"`
}

// MuseumConfig describes the remote collection API.
type MuseumConfig struct {
	BaseURL       string   `toml:"base_url"`
	DepartmentIDs []int    `toml:"department_ids"`
	Timeout       Duration `toml:"timeout"`
	UserAgent     string   `toml:"user_agent"`
}

// FetchConfig is the fetcher's retry policy.
type FetchConfig struct {
	Retries int      `toml:"retries"`
	Timeout Duration `toml:"timeout"`
	Limit   int      `toml:"limit"`
}

// PaintConfig drives the compositor.
type PaintConfig struct {
	Retries    int     `toml:"retries"`
	Rotate     int     `toml:"rotate"`
	Brightness float64 `toml:"brightness"`
	Contrast   float64 `toml:"contrast"`
	FontPath   string  `toml:"font_path"`
	FontSize   float64 `toml:"font_size"`
	Background string  `toml:"background"`
	Foreground string  `toml:"foreground"`
}

// DisplayConfig selects and parameterises the output device.
type DisplayConfig struct {
	Kind   string `toml:"kind"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Output string `toml:"output"`
	Addr   string `toml:"addr"`

	Quote0APIKey   string `toml:"quote0_api_key"`
	Quote0DeviceID string `toml:"quote0_device_id"`
}

// WatchConfig drives the periodic repaint loop.
type WatchConfig struct {
	Schedule string `toml:"schedule"`
	Fetch    bool   `toml:"fetch"`
}

// Default returns the configuration used when no file is given.
// The values mirror the constants the tool always shipped with.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Dir:         ".",
			CatalogFile: DefaultCatalogFile,
		},
		Museum: MuseumConfig{
			BaseURL:       DefaultMuseumURL,
			DepartmentIDs: []int{11},
			Timeout:       Duration(30 * time.Second),
		},
		Fetch: FetchConfig{
			Retries: 3,
			Timeout: Duration(15 * time.Second),
		},
		Paint: PaintConfig{
			Retries:    10,
			Rotate:     0,
			Brightness: 1.2,
			Contrast:   1.2,
			FontPath:   "NotoSans-Regular.otf",
			FontSize:   18,
			Background: "black",
			Foreground: "white",
		},
		Display: DisplayConfig{
			Kind:   DisplayAuto,
			Width:  1600,
			Height: 1200,
			Output: "artframe.png",
			Addr:   ":8080",
		},
		Watch: WatchConfig{
			Schedule: "@every 1h",
		},
	}
}

// Load reads path on top of [Default]. A missing file is not an error when
// optional is true, which is how the implicit ./artframe.toml is handled.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, aferrors.Wrap(aferrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, aferrors.New(aferrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return aferrors.New(aferrors.ErrCodeInvalidConfig, format, args...)
	}
	switch c.Paint.Rotate {
	case 0, 90, 180, 270:
	default:
		return invalid("paint.rotate must be 0, 90, 180 or 270, got %d", c.Paint.Rotate)
	}
	if c.Fetch.Retries < 1 {
		return invalid("fetch.retries must be positive, got %d", c.Fetch.Retries)
	}
	if c.Fetch.Timeout < 0 {
		return invalid("fetch.timeout must not be negative")
	}
	if c.Fetch.Limit < 0 {
		return invalid("fetch.limit must not be negative")
	}
	if c.Paint.Retries < 1 {
		return invalid("paint.retries must be positive, got %d", c.Paint.Retries)
	}
	if c.Paint.FontSize <= 0 {
		return invalid("paint.font_size must be positive")
	}
	if c.Paint.Brightness <= 0 || c.Paint.Contrast <= 0 {
		return invalid("paint.brightness and paint.contrast must be positive")
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return invalid("display resolution must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}
	switch c.Display.Kind {
	case DisplayAuto, DisplayInky, DisplayQuote0, DisplayFile, DisplayWeb:
	default:
		return invalid("unknown display.kind %q", c.Display.Kind)
	}
	if c.Museum.BaseURL == "" {
		return invalid("museum.base_url must not be empty")
	}
	return nil
}

// Duration is a time.Duration that reads TOML strings like "15s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
