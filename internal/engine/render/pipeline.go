package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenedemo/internal/engine/camera"
	"github.com/Faultbox/scenedemo/internal/engine/gpu"
	"github.com/Faultbox/scenedemo/internal/engine/lighting"
	"github.com/Faultbox/scenedemo/internal/engine/scene"
	"github.com/Faultbox/scenedemo/internal/engine/shadow"
)

// DepthTarget is an offscreen depth buffer, such as *shadow.Map.
type DepthTarget interface {
	Bind()
	Unbind()
	Texture() gpu.TextureID
}

// SkyDrawer draws a background behind everything else, such as *skybox.Skybox.
type SkyDrawer interface {
	Draw(p gpu.Program)
}

// Sprite is a camera-facing quad, such as *billboard.Billboard.
type Sprite interface {
	Update(cameraPos mgl32.Vec3)
	Render(p gpu.Program)
}

// Target is the surface the visible passes draw into, such as *Screen.
type Target interface {
	Begin()
}

// Programs holds one shader program per pass. Sky and Sprite may be nil
// when the scene has no skybox or billboards.
type Programs struct {
	Lit    gpu.Program
	Shadow gpu.Program
	Sky    gpu.Program
	Sprite gpu.Program
}

// Pipeline draws one frame in a fixed order: shadow depth pass over the
// shadow casters, lit pass over every root, skybox, billboards.
type Pipeline struct {
	Programs Programs
	Screen   Target
	Shadow   DepthTarget // nil disables shadows
	Sky      SkyDrawer
	Sprites  []Sprite
	Sun      lighting.Sun
	Lens     camera.Lens

	// Shadows toggles the depth pass and shadow lookups at runtime.
	Shadows bool
}

// Frame is what changes between frames.
type Frame struct {
	Graph   *scene.Graph
	Roots   []scene.NodeID
	Casters []scene.NodeID
	Camera  camera.Camera
	Aspect  float32
}

// LightSpace returns the light view-projection covering every root.
func (p *Pipeline) LightSpace(f Frame) mgl32.Mat4 {
	lo, hi, ok := f.Graph.Bounds(f.Roots...)
	if !ok {
		lo, hi = mgl32.Vec3{}, mgl32.Vec3{}
	}
	return shadow.DirectionalLightMatrix(p.Sun.ToSun(), shadow.AABB{Min: lo, Max: hi})
}

// Draw renders f. Errors from individual roots are joined; the remaining
// roots and passes still draw.
func (p *Pipeline) Draw(f Frame) error {
	var errs []error
	lightSpace := p.LightSpace(f)
	shadows := p.Shadows && p.Shadow != nil && p.Programs.Shadow != nil

	aux := gpu.NoTexture
	if shadows {
		p.Shadow.Bind()
		p.Programs.Shadow.SetMat4("lightSpace", lightSpace)
		for _, id := range f.Casters {
			errs = append(errs, f.Graph.Render(id, p.Programs.Shadow, gpu.NoTexture))
		}
		p.Shadow.Unbind()
		aux = p.Shadow.Texture()
	}

	if p.Screen != nil {
		p.Screen.Begin()
	}

	view := f.Camera.ViewMatrix()
	projection := p.Lens.Projection(f.Aspect)
	eye := f.Camera.Position()

	lit := p.Programs.Lit
	lit.SetMat4("view", view)
	lit.SetMat4("projection", projection)
	lit.SetMat4("lightSpace", lightSpace)
	lit.SetVec3("viewPos", eye)
	lit.SetInt("baseTexture", gpu.UnitDiffuse)
	lit.SetInt("shadowMap", gpu.UnitShadow)
	lit.SetInt("shadowsEnabled", boolInt(shadows))
	p.Sun.Apply(lit)
	for _, id := range f.Roots {
		errs = append(errs, f.Graph.Render(id, lit, aux))
	}

	if p.Sky != nil && p.Programs.Sky != nil {
		p.Programs.Sky.SetMat4("view", view)
		p.Programs.Sky.SetMat4("projection", projection)
		p.Sky.Draw(p.Programs.Sky)
	}

	if len(p.Sprites) > 0 && p.Programs.Sprite != nil {
		p.Programs.Sprite.SetMat4("view", view)
		p.Programs.Sprite.SetMat4("projection", projection)
		p.Programs.Sprite.SetInt("baseTexture", gpu.UnitDiffuse)
		for _, s := range p.Sprites {
			s.Update(eye)
			s.Render(p.Programs.Sprite)
		}
	}

	return errors.Join(errs...)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
