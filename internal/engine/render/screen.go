// Package render sequences the frame's draw passes: shadow depth, lit scene,
// skybox and billboards.
package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/logger"
)

// Screen is the default framebuffer.
// Must be created AFTER the OpenGL context and gl.Init.
type Screen struct {
	width  int
	height int
	clear  mgl32.Vec4
}

// NewScreen sets the default depth state and clear color.
func NewScreen(width, height int, clear mgl32.Vec4) *Screen {
	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(clear[0], clear[1], clear[2], clear[3])

	s := &Screen{clear: clear}
	s.Resize(width, height)
	return s
}

// Resize handles window resize.
func (s *Screen) Resize(width, height int) {
	s.width = width
	s.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("screen resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (s *Screen) Size() (int, int) { return s.width, s.height }

// Begin clears color and depth.
func (s *Screen) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
