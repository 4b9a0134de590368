package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/typing2video/internal/renderer"
	"github.com/ivlev/typing2video/internal/sequence"
)

// Settings is the user-facing animation parameter set. It is loaded once and
// never mutated by the drivers.
type Settings struct {
	Strings        []string `yaml:"strings"`
	TypingSpeed    int      `yaml:"typing_speed"`  // ms per character
	DeleteSpeed    int      `yaml:"delete_speed"`  // ms per character
	PauseBetween   int      `yaml:"pause_between"` // ms
	LoopAnimation  bool     `yaml:"loop_animation"`
	KeepLastString bool     `yaml:"keep_last_string"`
	FastDelete     bool     `yaml:"fast_delete"`

	Font         string `yaml:"font"`
	Icon         string `yaml:"icon"`
	IconPosition string `yaml:"icon_position"` // left | right
	Background   string `yaml:"background"`    // preset name or #rrggbb
	Placeholder  string `yaml:"placeholder"`
	ShowTitle    bool   `yaml:"show_title"`
	ShowButtons  bool   `yaml:"show_buttons"`
}

func DefaultSettings() Settings {
	return Settings{
		Strings:      []string{"web development", "react tutorials", "javascript tips"},
		TypingSpeed:  70,
		DeleteSpeed:  50,
		PauseBetween: 800,
		Font:         "Inter, sans-serif",
		Icon:         renderer.DefaultIcon,
		IconPosition: renderer.IconLeft,
		Background:   "solid",
		Placeholder:  "Search Google or type a URL",
		ShowTitle:    true,
		ShowButtons:  true,
	}
}

// Load reads settings from a YAML file. Keys missing from the file keep their defaults.
func Load(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return &s, nil
}

func Save(path string, s *Settings) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

var ErrInvalidSettings = errors.New("invalid settings")

// Validate rejects values the drivers cannot work with. An empty string list
// is allowed: both drivers treat it as a no-op.
func (s *Settings) Validate() error {
	var errs []error
	if s.TypingSpeed < 0 {
		errs = append(errs, fmt.Errorf("typing_speed must be >= 0, got %d", s.TypingSpeed))
	}
	if s.DeleteSpeed < 0 {
		errs = append(errs, fmt.Errorf("delete_speed must be >= 0, got %d", s.DeleteSpeed))
	}
	if s.PauseBetween < 0 {
		errs = append(errs, fmt.Errorf("pause_between must be >= 0, got %d", s.PauseBetween))
	}
	switch s.IconPosition {
	case renderer.IconLeft, renderer.IconRight:
	default:
		errs = append(errs, fmt.Errorf("icon_position must be %q or %q, got %q", renderer.IconLeft, renderer.IconRight, s.IconPosition))
	}
	if _, err := renderer.ParseBackground(s.Background); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

func (s *Settings) Sequence() sequence.Sequence {
	return sequence.Sequence{
		Strings: append([]string(nil), s.Strings...),
		Policy: sequence.Policy{
			Loop:           s.LoopAnimation,
			KeepLastString: s.KeepLastString,
			FastDelete:     s.FastDelete,
		},
	}
}

func (s *Settings) Timing() sequence.Timing {
	return sequence.NewTiming(s.TypingSpeed, s.DeleteSpeed, s.PauseBetween)
}

// FrameSpec returns the static part of a frame; callers fill in the text fields.
func (s *Settings) FrameSpec(width, height int) (renderer.FrameSpec, error) {
	bg, err := renderer.ParseBackground(s.Background)
	if err != nil {
		return renderer.FrameSpec{}, err
	}
	return renderer.FrameSpec{
		Width:        width,
		Height:       height,
		Background:   bg,
		FontFamily:   s.Font,
		ShowTitle:    s.ShowTitle,
		ShowButtons:  s.ShowButtons,
		IconPosition: s.IconPosition,
		Icon:         s.Icon,
		Placeholder:  s.Placeholder,
	}, nil
}

// Config is the export run configuration assembled from CLI flags.
type Config struct {
	OutputVideo  string // extension optional
	Width        int
	Height       int
	FPS          int
	Quality      int // 0 means per-encoder default
	VideoEncoder string
	Seed         int64
	SafetyFactor float64
	ShowStats    bool
	BuildVersion string
	TimelinePath string
}

func DefaultConfig() Config {
	return Config{
		OutputVideo:  "output/typing-simulation",
		Width:        1024,
		Height:       1024,
		FPS:          30,
		SafetyFactor: 2,
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height))
	}
	// yuv420p needs even dimensions.
	if c.Width%2 != 0 || c.Height%2 != 0 {
		errs = append(errs, fmt.Errorf("resolution must be even, got %dx%d", c.Width, c.Height))
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		errs = append(errs, fmt.Errorf("fps must be in 1..1000, got %d", c.FPS))
	}
	if c.SafetyFactor <= 0 {
		errs = append(errs, fmt.Errorf("safety factor must be > 0, got %g", c.SafetyFactor))
	}
	if strings.TrimSpace(c.OutputVideo) == "" {
		errs = append(errs, errors.New("output path is empty"))
	}
	return errors.Join(errs...)
}
