package charmatrix

import (
	"fmt"
	"io/ioutil"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	yaml "gopkg.in/yaml.v2"
)

// RenderConfig describes how source pixels become a character grid. The
// resolution is chosen by the first mode that applies: Scale, Width and Height
// together, Width alone, Height alone, or the source size. Zero means unset.
type RenderConfig struct {
	Width          int
	Height         int
	Scale          float64
	CharAspect     float64 // cell width / cell height, usually 0.5
	PreserveAspect bool
	Invert         bool
	RampName       string
	CustomRamp     string
	Colored        bool
	Adjust         Adjustments
}

// DefaultRenderConfig matches a typical terminal: half-width cells, aspect
// preserved, detailed ramp.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		CharAspect:     0.5,
		PreserveAspect: true,
		RampName:       RampDetailed,
	}
}

// Validate rejects configurations that cannot be rendered. Nothing is clamped.
func (c RenderConfig) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return &DimensionsError{Width: c.Width, Height: c.Height}
	}
	if math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) || c.Scale < 0 {
		return configErrorf("scale must be positive, got %v", c.Scale)
	}
	if c.Scale > 0 && (c.Width > 0 || c.Height > 0) {
		return configErrorf("scale cannot be combined with an explicit width or height")
	}
	if math.IsNaN(c.CharAspect) || math.IsInf(c.CharAspect, 0) || c.CharAspect <= 0 {
		return configErrorf("char aspect must be positive, got %v", c.CharAspect)
	}
	if _, err := c.Ramp(); err != nil {
		return err
	}
	return c.Adjust.Validate()
}

// Ramp resolves the configured glyph ramp.
func (c RenderConfig) Ramp() (Ramp, error) {
	return LookupRamp(c.RampName, c.CustomRamp)
}

// PlaybackOptions controls live terminal playback.
type PlaybackOptions struct {
	MarginWidth  int           // columns reserved around the frame
	MarginHeight int           // rows reserved for borders and the prompt
	ClearOnExit  bool
	PollInterval time.Duration // terminal size polling period
}

func DefaultPlaybackOptions() PlaybackOptions {
	return PlaybackOptions{
		MarginWidth:  2,
		MarginHeight: 4,
		ClearOnExit:  true,
		PollInterval: 100 * time.Millisecond,
	}
}

// Config bundles every tunable of a run.
type Config struct {
	Render   RenderConfig
	GIF      GIFOptions
	Playback PlaybackOptions
}

func DefaultConfig() Config {
	return Config{
		Render:   DefaultRenderConfig(),
		GIF:      DefaultGIFOptions(),
		Playback: DefaultPlaybackOptions(),
	}
}

// fileConfig mirrors Config with pointers so that keys present in the file can
// be told apart from missing ones.
type fileConfig struct {
	Width          *int        `yaml:"width"`
	Height         *int        `yaml:"height"`
	Scale          *float64    `yaml:"scale"`
	CharAspect     *float64    `yaml:"char_aspect"`
	PreserveAspect *bool       `yaml:"preserve_aspect"`
	Invert         *bool       `yaml:"invert"`
	Ramp           *string     `yaml:"ramp"`
	CustomRamp     *string     `yaml:"custom_ramp"`
	Colored        *bool       `yaml:"colored"`
	Adjust         Adjustments `yaml:"adjust"`

	GIF struct {
		FontSize   *float64 `yaml:"font_size"`
		FontPath   *string  `yaml:"font_path"`
		LineHeight *float64 `yaml:"line_height"`
		Background *string  `yaml:"background"`
		Foreground *string  `yaml:"foreground"`
		Width      *int     `yaml:"width"`
		Height     *int     `yaml:"height"`
	} `yaml:"gif"`

	Playback struct {
		MarginWidth  *int           `yaml:"margin_width"`
		MarginHeight *int           `yaml:"margin_height"`
		ClearOnExit  *bool          `yaml:"clear_on_exit"`
		PollInterval *time.Duration `yaml:"poll_interval"`
	} `yaml:"playback"`
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.UnmarshalStrict(data, &fc); err != nil {
		return Config{}, configErrorf("parse config: %v", err)
	}

	cfg := DefaultConfig()
	r := &cfg.Render
	if fc.Width != nil {
		if *fc.Width <= 0 {
			return Config{}, &DimensionsError{Width: *fc.Width}
		}
		r.Width = *fc.Width
	}
	if fc.Height != nil {
		if *fc.Height <= 0 {
			return Config{}, &DimensionsError{Height: *fc.Height}
		}
		r.Height = *fc.Height
	}
	if fc.Scale != nil {
		if *fc.Scale <= 0 {
			return Config{}, configErrorf("scale must be positive, got %v", *fc.Scale)
		}
		r.Scale = *fc.Scale
	}
	if fc.CharAspect != nil {
		r.CharAspect = *fc.CharAspect
	}
	if fc.PreserveAspect != nil {
		r.PreserveAspect = *fc.PreserveAspect
	}
	if fc.Invert != nil {
		r.Invert = *fc.Invert
	}
	if fc.Ramp != nil {
		r.RampName = *fc.Ramp
	}
	if fc.CustomRamp != nil {
		r.CustomRamp = *fc.CustomRamp
	}
	if fc.Colored != nil {
		r.Colored = *fc.Colored
	}
	r.Adjust = fc.Adjust

	g := &cfg.GIF
	if fc.GIF.FontSize != nil {
		g.FontSize = *fc.GIF.FontSize
	}
	if fc.GIF.FontPath != nil {
		g.FontPath = *fc.GIF.FontPath
	}
	if fc.GIF.LineHeight != nil {
		g.LineHeight = *fc.GIF.LineHeight
	}
	if fc.GIF.Background != nil {
		c, err := ParseHexColor(*fc.GIF.Background)
		if err != nil {
			return Config{}, err
		}
		g.Background = c
	}
	if fc.GIF.Foreground != nil {
		c, err := ParseHexColor(*fc.GIF.Foreground)
		if err != nil {
			return Config{}, err
		}
		g.Foreground = c
	}
	if fc.GIF.Width != nil {
		g.Width = *fc.GIF.Width
	}
	if fc.GIF.Height != nil {
		g.Height = *fc.GIF.Height
	}

	p := &cfg.Playback
	if fc.Playback.MarginWidth != nil {
		p.MarginWidth = *fc.Playback.MarginWidth
	}
	if fc.Playback.MarginHeight != nil {
		p.MarginHeight = *fc.Playback.MarginHeight
	}
	if fc.Playback.ClearOnExit != nil {
		p.ClearOnExit = *fc.Playback.ClearOnExit
	}
	if fc.Playback.PollInterval != nil {
		p.PollInterval = *fc.Playback.PollInterval
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Render.Validate(); err != nil {
		return err
	}
	if err := c.GIF.Validate(); err != nil {
		return err
	}
	if c.Playback.MarginWidth < 0 || c.Playback.MarginHeight < 0 {
		return configErrorf("playback margins must not be negative")
	}
	if c.Playback.PollInterval <= 0 {
		return configErrorf("poll interval must be positive")
	}
	return nil
}

// ParseHexColor parses "#rrggbb".
func ParseHexColor(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, configErrorf("bad color %q: %v", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}
