package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test window defaults
	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 1060 {
		t.Errorf("expected height 1060, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	// Test render defaults
	if !cfg.Render.Shadows {
		t.Error("expected shadows to be enabled by default")
	}
	if cfg.Render.ShadowResolution != 2048 {
		t.Errorf("expected shadow resolution 2048, got %d", cfg.Render.ShadowResolution)
	}

	// Test camera defaults
	if cfg.Camera.Mode != "fly" {
		t.Errorf("expected camera mode 'fly', got %s", cfg.Camera.Mode)
	}
	if cfg.Camera.FOV != 45 {
		t.Errorf("expected fov 45, got %f", cfg.Camera.FOV)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

const sceneYAML = `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

render:
  shadows: false
  shadow_resolution: 1024

camera:
  mode: orbit
  position: [1, 2, 3]

shaders:
  lit:
    vertex: shaders/lit.vert
    fragment: shaders/lit.frag
  watch: true

scene:
  objects:
    - name: skull
      model: models/skull.glb
      flip_uv: true
      gen_normals: false
      position: [0, 1, 0]
      scale: [2, 2, 2]
      casts_shadow: false
      textures:
        - path: textures/bone.png
          usage: specular
      children:
        - name: jaw
          model: models/jaw.glb
  animations:
    - kind: composite_wobble
      target: skull
      parts: [jaw]
      duration: 4
      move: [0, 2, 0]
      part_move: [0, 0.5, 0]
  billboards:
    - texture: textures/tree.png
      position: [5, 0, 5]
      width: 2
      height: 4
  light:
    azimuth: 90
    elevation: 30

logging:
  level: "debug"
  log_file: "demo.log"
`

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(sceneYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Render.Shadows {
		t.Error("expected shadows to be false")
	}
	if cfg.Camera.Mode != "orbit" {
		t.Errorf("expected camera mode orbit, got %s", cfg.Camera.Mode)
	}
	if cfg.Camera.FOV != 45 {
		t.Errorf("expected fov to keep its default, got %f", cfg.Camera.FOV)
	}
	if !cfg.Shaders.Lit.IsSet() || cfg.Shaders.Shadow.IsSet() {
		t.Errorf("expected only the lit override, got %+v", cfg.Shaders)
	}

	if len(cfg.Scene.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(cfg.Scene.Objects))
	}
	skull := cfg.Scene.Objects[0]
	if skull.GenerateNormals() {
		t.Error("expected gen_normals false")
	}
	if skull.ShadowCaster() {
		t.Error("expected casts_shadow false")
	}
	if skull.ScaleOrOne() != [3]float32{2, 2, 2} {
		t.Errorf("expected scale 2, got %v", skull.ScaleOrOne())
	}
	if len(skull.Children) != 1 || !skull.Children[0].GenerateNormals() || !skull.Children[0].ShadowCaster() {
		t.Errorf("expected jaw child with default flags, got %+v", skull.Children)
	}
	if skull.Children[0].ScaleOrOne() != [3]float32{1, 1, 1} {
		t.Errorf("expected unit scale for jaw, got %v", skull.Children[0].ScaleOrOne())
	}
	if skull.Textures[0].Usage != "specular" {
		t.Errorf("expected specular texture, got %q", skull.Textures[0].Usage)
	}

	if cfg.Scene.Light.Azimuth != 90 || cfg.Scene.Light.Elevation != 30 {
		t.Errorf("unexpected light %+v", cfg.Scene.Light)
	}
	if cfg.Scene.Light.Diffuse != Default().Scene.Light.Diffuse {
		t.Errorf("expected default diffuse, got %v", cfg.Scene.Light.Diffuse)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "demo.log" {
		t.Errorf("expected log file 'demo.log', got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config: %v", err)
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
[window]
width = 800
height = 600

[camera]
fov = 60.0

[[scene.objects]]
name = "crate"
model = "crate.glb"
position = [1.0, 0.0, -2.0]

[[scene.animations]]
kind = "translation"
target = "crate"
duration = 2.0
move = [0.0, 1.0, 0.0]
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Camera.FOV != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Camera.FOV)
	}
	if len(cfg.Scene.Objects) != 1 || cfg.Scene.Objects[0].Position != [3]float32{1, 0, -2} {
		t.Errorf("unexpected objects %+v", cfg.Scene.Objects)
	}
	if len(cfg.Scene.Animations) != 1 || cfg.Scene.Animations[0].Kind != KindTranslation {
		t.Errorf("unexpected animations %+v", cfg.Scene.Animations)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{
			name:   "bad window",
			modify: func(c *Config) { c.Window.Width = 0 },
			want:   "window size",
		},
		{
			name:   "bad camera mode",
			modify: func(c *Config) { c.Camera.Mode = "chase" },
			want:   "camera mode",
		},
		{
			name: "duplicate object",
			modify: func(c *Config) {
				c.Scene.Objects = []ObjectConfig{{Name: "a"}, {Name: "b", Children: []ObjectConfig{{Name: "a"}}}}
			},
			want: "duplicate object name",
		},
		{
			name: "unknown target",
			modify: func(c *Config) {
				c.Scene.Objects = []ObjectConfig{{Name: "a"}}
				c.Scene.Animations = []AnimationConfig{{Kind: KindTranslation, Target: "b", Duration: 1}}
			},
			want: "unknown target",
		},
		{
			name: "zero duration",
			modify: func(c *Config) {
				c.Scene.Objects = []ObjectConfig{{Name: "a"}}
				c.Scene.Animations = []AnimationConfig{{Kind: KindTranslation, Target: "a"}}
			},
			want: "duration",
		},
		{
			name: "unknown kind",
			modify: func(c *Config) {
				c.Scene.Objects = []ObjectConfig{{Name: "a"}}
				c.Scene.Animations = []AnimationConfig{{Kind: "spin", Target: "a", Duration: 1}}
			},
			want: "unknown kind",
		},
		{
			name: "bad part index",
			modify: func(c *Config) {
				c.Scene.Objects = []ObjectConfig{{Name: "skull"}}
				c.Scene.Animations = []AnimationConfig{{Kind: KindCompositeWobble, Target: "skull", Parts: []string{"skull/jaw"}, Duration: 1}}
			},
			want: "child index",
		},
		{
			name: "unknown part object",
			modify: func(c *Config) {
				c.Scene.Objects = []ObjectConfig{{Name: "skull"}}
				c.Scene.Animations = []AnimationConfig{{Kind: KindCompositeWobble, Target: "skull", Parts: []string{"head/1"}, Duration: 1}}
			},
			want: "unknown part",
		},
		{
			name:   "slash in name",
			modify: func(c *Config) { c.Scene.Objects = []ObjectConfig{{Name: "a/b"}} },
			want:   "must not contain",
		},
		{
			name:   "short skybox",
			modify: func(c *Config) { c.Scene.Skybox = []string{"a.png"} },
			want:   "6 faces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateAcceptsChildParts(t *testing.T) {
	cfg := Default()
	cfg.Scene.Objects = []ObjectConfig{{Name: "skull", Children: []ObjectConfig{{Name: "hat"}}}}
	cfg.Scene.Animations = []AnimationConfig{{
		Kind:     KindCompositeWobble,
		Target:   "skull",
		Parts:    []string{"skull/0", "skull/1", "hat"},
		Duration: 1,
	}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestParsePart(t *testing.T) {
	tests := []struct {
		in      string
		want    PartRef
		wantErr bool
	}{
		{in: "jaw", want: PartRef{Object: "jaw", Child: -1}},
		{in: "skull/0", want: PartRef{Object: "skull", Child: 0}},
		{in: "skull/12", want: PartRef{Object: "skull", Child: 12}},
		{in: "skull/-1", wantErr: true},
		{in: "skull/", wantErr: true},
		{in: "/1", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePart(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePart(%q) expected error, got %+v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePart(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePart(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestSceneResolve(t *testing.T) {
	s := SceneConfig{Dir: filepath.FromSlash("/data/scenes")}
	if got := s.Resolve("models/a.glb"); got != filepath.Join("/data/scenes", "models", "a.glb") {
		t.Errorf("unexpected resolved path %s", got)
	}
	abs := filepath.Join(t.TempDir(), "b.glb")
	if got := s.Resolve(abs); got != abs {
		t.Errorf("absolute path changed to %s", got)
	}
}

func TestLoadScene(t *testing.T) {
	tmpDir := t.TempDir()
	scenePath := filepath.Join(tmpDir, "scene.yaml")
	content := "objects:\n  - name: crate\n    model: crate.glb\n"
	if err := os.WriteFile(scenePath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write scene: %v", err)
	}

	scene, err := LoadScene(scenePath)
	if err != nil {
		t.Fatalf("failed to load scene: %v", err)
	}
	if len(scene.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(scene.Objects))
	}
	if scene.Light.Elevation != Default().Scene.Light.Elevation {
		t.Errorf("expected default light, got %+v", scene.Light)
	}
	if want := filepath.Join(tmpDir, "crate.glb"); scene.Resolve("crate.glb") != want {
		t.Errorf("expected %s, got %s", want, scene.Resolve("crate.glb"))
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// A TOML config is found too
	configPath := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[window]\nwidth = 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path = findConfigFile(); path != "./config.toml" {
		t.Errorf("expected ./config.toml, got %q", path)
	}

	// YAML wins when both exist
	configPath = filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path = findConfigFile(); path != "./config.yaml" {
		t.Errorf("expected ./config.yaml, got %q", path)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Default()
	cfg.Window.Width = 1024
	cfg.Scene.Objects = []ObjectConfig{{Name: "crate", Model: "crate.glb"}}

	path := filepath.Join(tmpDir, "nested", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Window.Width != 1024 {
		t.Errorf("expected width 1024, got %d", loaded.Window.Width)
	}
	if len(loaded.Scene.Objects) != 1 || loaded.Scene.Objects[0].Name != "crate" {
		t.Errorf("unexpected objects %+v", loaded.Scene.Objects)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "no-shadows flag",
			setup: func() {
				*flagNoShadows = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Render.Shadows {
					t.Error("expected shadows to be disabled")
				}
			},
			teardown: func() {
				*flagNoShadows = false
			},
		},
		{
			name: "windowed flag",
			setup: func() {
				*flagWindowed = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() {
				*flagWindowed = false
			},
		},
		{
			name: "fullscreen flag",
			setup: func() {
				*flagFullscreen = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() {
				*flagFullscreen = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}

	if cfg.Scene.Dir != tmpDir {
		t.Errorf("expected scene dir %s, got %s", tmpDir, cfg.Scene.Dir)
	}
}

func TestLoadSceneFlag(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("scene:\n  objects:\n    - name: old\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	sceneDir := filepath.Join(tmpDir, "scenes")
	if err := os.MkdirAll(sceneDir, 0755); err != nil {
		t.Fatal(err)
	}
	scenePath := filepath.Join(sceneDir, "scene.toml")
	if err := os.WriteFile(scenePath, []byte("[[objects]]\nname = \"new\"\n"), 0644); err != nil {
		t.Fatalf("failed to write test scene: %v", err)
	}

	*flagConfig = configPath
	*flagScene = scenePath
	defer func() {
		*flagConfig = ""
		*flagScene = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Scene.Objects) != 1 || cfg.Scene.Objects[0].Name != "new" {
		t.Errorf("expected scene from --scene, got %+v", cfg.Scene.Objects)
	}
	if cfg.Scene.Dir != sceneDir {
		t.Errorf("expected scene dir %s, got %s", sceneDir, cfg.Scene.Dir)
	}
}
