package canopy

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-loadable setup of a Store and its window.
//
//	title: viewer
//	width: 800
//	height: 600
//	frameLoop: demand
//	strictSlots: true
//	logLevel: debug
//	camera:
//	  fov: 60
//	  position: {x: 0, y: 2, z: 6}
type Config struct {
	Title       string       `yaml:"title"`
	Width       int          `yaml:"width"`
	Height      int          `yaml:"height"`
	FrameLoop   string       `yaml:"frameLoop"`
	StrictSlots bool         `yaml:"strictSlots"`
	Debug       bool         `yaml:"debug"`
	LogLevel    string       `yaml:"logLevel"`
	Camera      CameraConfig `yaml:"camera"`
}

// CameraConfig seeds the store's camera.
type CameraConfig struct {
	FOV      float64    `yaml:"fov"`
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
	Position *VecConfig `yaml:"position"`
	Target   *VecConfig `yaml:"target"`
}

// VecConfig is a vector in config files.
type VecConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v *VecConfig) vec(def Vec3) Vec3 {
	if v == nil {
		return def
	}
	return Vec3{v.X, v.Y, v.Z}
}

// DefaultConfig returns the defaults used for any field a config file omits.
func DefaultConfig() *Config {
	return &Config{
		Title:     "canopy",
		Width:     800,
		Height:    600,
		FrameLoop: "always",
		LogLevel:  "off",
		Camera: CameraConfig{
			FOV:  defaultFOV,
			Near: defaultNear,
			Far:  defaultFar,
		},
	}
}

// LoadConfig reads and validates a config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config. Unknown fields are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Width == 0 {
		c.Width = def.Width
	}
	if c.Height == 0 {
		c.Height = def.Height
	}
	if c.FrameLoop == "" {
		c.FrameLoop = def.FrameLoop
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Camera.FOV == 0 {
		c.Camera.FOV = def.Camera.FOV
	}
	if c.Camera.Near == 0 {
		c.Camera.Near = def.Camera.Near
	}
	if c.Camera.Far == 0 {
		c.Camera.Far = def.Camera.Far
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("config: negative window size %dx%d", c.Width, c.Height)
	}
	if _, ok := ParseFrameLoop(c.FrameLoop); !ok {
		return fmt.Errorf("config: unknown frameLoop %q", c.FrameLoop)
	}
	if _, ok := parseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("config: unknown logLevel %q", c.LogLevel)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("config: camera fov %g out of range (0, 180)", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("config: camera near/far %g/%g invalid", c.Camera.Near, c.Camera.Far)
	}
	return nil
}

// Apply configures s: size, frame loop, slot strictness, debug mode and
// camera.
func (c *Config) Apply(s *Store) {
	mode, _ := ParseFrameLoop(c.FrameLoop)
	s.SetFrameLoop(mode)
	s.SetStrictSlots(c.StrictSlots)
	s.SetDebugMode(c.Debug)

	cam := s.Camera()
	if cam == nil {
		cam = NewCamera()
	}
	cam.FOV = c.Camera.FOV
	cam.Near = c.Camera.Near
	cam.Far = c.Camera.Far
	cam.Position = c.Camera.Position.vec(cam.Position)
	cam.Target = c.Camera.Target.vec(cam.Target)
	s.SetCamera(cam)
	s.SetSize(float64(c.Width), float64(c.Height))
}

// NewStoreFromConfig builds a store with the default registry and applies c.
func NewStoreFromConfig(c *Config) *Store {
	s := NewStore(nil)
	c.Apply(s)
	return s
}

// ConfigureLogger installs a text logger on w at the configured level, or
// restores the silent default when the level is "off".
func (c *Config) ConfigureLogger(w io.Writer) {
	level, ok := parseLogLevel(c.LogLevel)
	if !ok || strings.EqualFold(c.LogLevel, "off") || c.LogLevel == "" {
		SetLogger(nil)
		return
	}
	SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func parseLogLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "", "off":
		return 0, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

// RunConfig returns the window options described by c.
func (c *Config) RunConfig() RunConfig {
	return RunConfig{Title: c.Title, Width: c.Width, Height: c.Height, WindowResize: true}
}
