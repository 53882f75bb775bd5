// Package game implements the demo's frame loop.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/assets"
	"github.com/Faultbox/scenedemo/internal/config"
	"github.com/Faultbox/scenedemo/internal/engine/billboard"
	"github.com/Faultbox/scenedemo/internal/engine/camera"
	"github.com/Faultbox/scenedemo/internal/engine/debug"
	"github.com/Faultbox/scenedemo/internal/engine/gpu"
	"github.com/Faultbox/scenedemo/internal/engine/input"
	"github.com/Faultbox/scenedemo/internal/engine/lighting"
	"github.com/Faultbox/scenedemo/internal/engine/picking"
	"github.com/Faultbox/scenedemo/internal/engine/render"
	"github.com/Faultbox/scenedemo/internal/engine/scene"
	"github.com/Faultbox/scenedemo/internal/engine/shader"
	"github.com/Faultbox/scenedemo/internal/engine/shadow"
	"github.com/Faultbox/scenedemo/internal/engine/skybox"
	"github.com/Faultbox/scenedemo/internal/engine/window"
	"github.com/Faultbox/scenedemo/internal/logger"
)

// Game owns the window, the GPU resources and the world.
type Game struct {
	cfg     *config.Config
	running bool
	log     *zap.Logger

	window  *window.Window
	screen  *render.Screen
	backend *gpu.GL
	input   *input.Input
	camera  camera.Camera

	world      *World
	pipeline   *render.Pipeline
	programs   []*shader.Program
	watcher    *shader.Watcher
	shadowMap  *shadow.Map
	sky        *skybox.Skybox
	billboards []*billboard.Billboard
	screenshot *debug.ScreenshotCapture

	wantScreenshot bool
}

// New creates the window and loads everything cfg describes. A missing or
// broken shader is fatal; individual objects, billboards and the skybox are
// skipped with a warning.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{
		cfg: cfg,
		log: logger.Named("game"),
	}
	g.log.Info("initializing",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	if err := g.init(); err != nil {
		g.Close()
		return nil, err
	}
	g.log.Info("initialized successfully")
	return g, nil
}

func (g *Game) init() error {
	cfg := g.cfg
	w, h := g.window.GetSize()
	g.screen = render.NewScreen(w, h, mgl32.Vec4(cfg.Render.ClearColor))

	var err error
	g.backend, err = gpu.NewGL()
	if err != nil {
		return fmt.Errorf("failed to create GPU backend: %w", err)
	}
	g.input = input.New()

	progs := render.Programs{}
	for _, p := range []struct {
		name  string
		paths config.ShaderPaths
		dst   *gpu.Program
	}{
		{shader.Lit, cfg.Shaders.Lit, &progs.Lit},
		{shader.Shadow, cfg.Shaders.Shadow, &progs.Shadow},
		{shader.Skybox, cfg.Shaders.Skybox, &progs.Sky},
		{shader.Billboard, cfg.Shaders.Billboard, &progs.Sprite},
	} {
		prog, err := loadProgram(p.name, p.paths, cfg.Scene)
		if err != nil {
			return fmt.Errorf("failed to load %s shader: %w", p.name, err)
		}
		g.programs = append(g.programs, prog)
		*p.dst = prog
	}
	if cfg.Shaders.Watch {
		g.watchShaders()
	}

	if cfg.Render.Shadows {
		g.shadowMap, err = shadow.NewMap(int32(cfg.Render.ShadowResolution))
		if err != nil {
			return fmt.Errorf("failed to create shadow map: %w", err)
		}
	}

	sc := cfg.Scene
	if len(sc.Skybox) == skybox.FaceCount {
		var faces skybox.Faces
		for i, f := range sc.Skybox {
			faces[i] = sc.Resolve(f)
		}
		if g.sky, err = skybox.Load(faces); err != nil {
			g.log.Warn("skybox disabled", zap.Error(err))
			g.sky = nil
		}
	}

	var sprites []render.Sprite
	for _, bc := range sc.Billboards {
		b, err := billboard.Load(g.backend, sc.Resolve(bc.Texture), bc.Width, bc.Height, mgl32.Vec3(bc.Position))
		if err != nil {
			g.log.Warn("skipping billboard", zap.String("texture", bc.Texture), zap.Error(err))
			continue
		}
		g.billboards = append(g.billboards, b)
		sprites = append(sprites, b)
	}

	graph := scene.NewGraph()
	g.world = BuildWorld(sc, graph, assets.NewManager(graph, g.backend))
	g.camera = newCamera(cfg.Camera, g.world)

	g.pipeline = &render.Pipeline{
		Programs: progs,
		Screen:   g.screen,
		Sprites:  sprites,
		Sun:      sunFromConfig(sc.Light),
		Lens:     camera.Lens{FOV: cfg.Camera.FOV, Near: cfg.Camera.Near, Far: cfg.Camera.Far},
		Shadows:  g.shadowMap != nil,
	}
	// Typed nils must not reach the interface fields.
	if g.shadowMap != nil {
		g.pipeline.Shadow = g.shadowMap
	}
	if g.sky != nil {
		g.pipeline.Sky = g.sky
	}

	g.screenshot = debug.NewScreenshotCapture(cfg.Render.ScreenshotDir, "scenedemo")
	return nil
}

func loadProgram(name string, paths config.ShaderPaths, sc config.SceneConfig) (*shader.Program, error) {
	if paths.IsSet() {
		return shader.Load(sc.Resolve(paths.Vertex), sc.Resolve(paths.Fragment))
	}
	return shader.NewBuiltin(name)
}

func (g *Game) watchShaders() {
	w, err := shader.NewWatcher()
	if err != nil {
		g.log.Warn("shader watching disabled", zap.Error(err))
		return
	}
	for _, p := range g.programs {
		if err := w.AddProgram(p); err != nil {
			g.log.Warn("cannot watch shader", zap.String("program", p.Name()), zap.Error(err))
		}
	}
	g.watcher = w
}

func newCamera(cc config.CameraConfig, w *World) camera.Camera {
	if cc.Mode == "orbit" {
		c := camera.NewOrbitCamera()
		if lo, hi, ok := w.Bounds(); ok {
			c.FitToBounds(lo, hi)
		}
		return c
	}
	c := camera.NewFlyCamera(mgl32.Vec3(cc.Position))
	c.Yaw = mgl32.DegToRad(cc.Yaw)
	c.Pitch = mgl32.DegToRad(cc.Pitch)
	c.Speed = cc.Speed
	c.Sensitivity = mgl32.DegToRad(cc.Sensitivity)
	return c
}

func sunFromConfig(lc config.LightConfig) lighting.Sun {
	return lighting.Sun{
		Azimuth:   lc.Azimuth,
		Elevation: lc.Elevation,
		Ambient:   mgl32.Vec3(lc.Ambient),
		Diffuse:   mgl32.Vec3(lc.Diffuse),
	}
}

// Run starts the frame loop. It returns when the window is closed or Escape
// is pressed, or when a frame fails.
func (g *Game) Run() error {
	g.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	g.log.Info("starting frame loop")

	for g.running {
		// Calculate delta time
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if g.input.Update() {
			// Quit event received
			g.running = false
			break
		}
		g.handleEvents()
		if !g.running {
			break
		}

		// 2. Update camera, shaders and animation
		g.camera.Update(g.input.Controls(), dt)
		g.reloadShaders()
		if err := g.world.Tick(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		// 3. Render
		if err := g.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			g.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := g.window.GetSize()
			g.screen.Resize(w, h)
		case input.EventKeyDown:
			if event.Repeat {
				continue
			}
			g.handleKey(event.Key)
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				g.pick(event.MouseX, event.MouseY)
			}
		}
	}
}

func (g *Game) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		g.running = false
	case sdl.SCANCODE_T:
		if err := g.world.CycleSelected(); err != nil {
			g.log.Warn("cycle texture", zap.Error(err))
		}
	case sdl.SCANCODE_TAB:
		g.world.SelectNext()
	case sdl.SCANCODE_P:
		g.world.TogglePause()
	case sdl.SCANCODE_R:
		g.world.Restart()
	case sdl.SCANCODE_F12:
		g.wantScreenshot = true
	}
}

// pick selects the object under the cursor.
func (g *Game) pick(x, y int) {
	w, h := g.window.WindowSize()
	if w <= 0 || h <= 0 {
		return
	}
	proj := g.pipeline.Lens.Projection(float32(w) / float32(h))
	ray := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), g.camera.ViewMatrix(), proj)
	g.world.Pick(ray)
}

// reloadShaders recompiles file-backed programs whose sources changed. A
// failed compile keeps the running program.
func (g *Game) reloadShaders() {
	if g.watcher == nil {
		return
	}
	changed := g.watcher.Poll()
	if len(changed) == 0 {
		return
	}
	for _, p := range g.programs {
		if !shader.Stale(p, changed) {
			continue
		}
		if err := p.Reload(); err != nil {
			g.log.Warn("shader reload failed, keeping previous program",
				zap.String("program", p.Name()), zap.Error(err))
		}
	}
}

func (g *Game) render() error {
	w, h := g.screen.Size()
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	err := g.pipeline.Draw(render.Frame{
		Graph:   g.world.Graph,
		Roots:   g.world.Roots,
		Casters: g.world.Casters,
		Camera:  g.camera,
		Aspect:  aspect,
	})
	if err != nil {
		return err
	}

	if g.wantScreenshot {
		g.wantScreenshot = false
		if _, err := g.screenshot.Capture(w, h); err != nil {
			g.log.Warn("screenshot failed", zap.Error(err))
		}
	}
	return nil
}

// Close releases GPU resources and the window.
func (g *Game) Close() {
	g.log.Info("closing")

	var errs []error
	if g.watcher != nil {
		errs = append(errs, g.watcher.Close())
	}
	for _, b := range g.billboards {
		b.Destroy()
	}
	if g.world != nil {
		g.world.Graph.Destroy()
	}
	if g.sky != nil {
		g.sky.Destroy()
	}
	if g.shadowMap != nil {
		g.shadowMap.Destroy()
	}
	for _, p := range g.programs {
		p.Delete()
	}
	if g.backend != nil {
		g.backend.Destroy()
	}
	if g.window != nil {
		g.window.Close()
	}
	if err := errors.Join(errs...); err != nil {
		g.log.Warn("close", zap.Error(err))
	}
}
