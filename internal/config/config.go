// Package config handles demo configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all demo settings.
type Config struct {
	Window  WindowConfig  `yaml:"window" toml:"window"`
	Render  RenderConfig  `yaml:"render" toml:"render"`
	Camera  CameraConfig  `yaml:"camera" toml:"camera"`
	Shaders ShaderConfig  `yaml:"shaders" toml:"shaders"`
	Scene   SceneConfig   `yaml:"scene" toml:"scene"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title" toml:"title"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
}

// RenderConfig holds pass settings.
type RenderConfig struct {
	Shadows          bool       `yaml:"shadows" toml:"shadows"`
	ShadowResolution int        `yaml:"shadow_resolution" toml:"shadow_resolution"`
	ClearColor       [4]float32 `yaml:"clear_color" toml:"clear_color"`
	ScreenshotDir    string     `yaml:"screenshot_dir" toml:"screenshot_dir"`
}

// CameraConfig holds the initial camera and its projection.
type CameraConfig struct {
	Mode        string     `yaml:"mode" toml:"mode"` // "fly" or "orbit"
	Position    [3]float32 `yaml:"position" toml:"position"`
	Yaw         float32    `yaml:"yaw" toml:"yaw"`     // degrees, 0 looks down -Z
	Pitch       float32    `yaml:"pitch" toml:"pitch"` // degrees
	FOV         float32    `yaml:"fov" toml:"fov"`     // degrees
	Near        float32    `yaml:"near" toml:"near"`
	Far         float32    `yaml:"far" toml:"far"`
	Speed       float32    `yaml:"speed" toml:"speed"`
	Sensitivity float32    `yaml:"sensitivity" toml:"sensitivity"` // degrees per pixel
}

// ShaderPaths overrides one built-in program with files on disk.
type ShaderPaths struct {
	Vertex   string `yaml:"vertex" toml:"vertex"`
	Fragment string `yaml:"fragment" toml:"fragment"`
}

// IsSet reports whether both stages are given.
func (p ShaderPaths) IsSet() bool {
	return p.Vertex != "" && p.Fragment != ""
}

// ShaderConfig holds optional shader overrides. Empty entries use the
// embedded sources.
type ShaderConfig struct {
	Lit       ShaderPaths `yaml:"lit" toml:"lit"`
	Shadow    ShaderPaths `yaml:"shadow" toml:"shadow"`
	Skybox    ShaderPaths `yaml:"skybox" toml:"skybox"`
	Billboard ShaderPaths `yaml:"billboard" toml:"billboard"`
	// Watch reloads overridden programs when their files change.
	Watch bool `yaml:"watch" toml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Scene Demo",
			Width:      1280,
			Height:     1060,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			Shadows:          true,
			ShadowResolution: 2048,
			ClearColor:       [4]float32{0.1, 0.1, 0.15, 1.0},
			ScreenshotDir:    "screenshots",
		},
		Camera: CameraConfig{
			Mode:        "fly",
			Position:    [3]float32{0, 2, 8},
			Yaw:         0,
			Pitch:       -10,
			FOV:         45,
			Near:        0.1,
			Far:         500,
			Speed:       5,
			Sensitivity: 0.2,
		},
		Scene: SceneConfig{
			Light: LightConfig{
				Azimuth:   45,
				Elevation: 50,
				Ambient:   [3]float32{0.25, 0.25, 0.28},
				Diffuse:   [3]float32{0.9, 0.88, 0.82},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values the demo cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	switch c.Camera.Mode {
	case "fly", "orbit":
	default:
		errs = append(errs, fmt.Errorf("unknown camera mode %q", c.Camera.Mode))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera near %v / far %v out of order", c.Camera.Near, c.Camera.Far))
	}
	if c.Render.Shadows && c.Render.ShadowResolution <= 0 {
		errs = append(errs, fmt.Errorf("shadow resolution %d must be positive", c.Render.ShadowResolution))
	}
	errs = append(errs, c.Scene.Validate())
	return errors.Join(errs...)
}
