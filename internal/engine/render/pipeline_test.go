package render

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenedemo/internal/engine/billboard"
	"github.com/Faultbox/scenedemo/internal/engine/camera"
	"github.com/Faultbox/scenedemo/internal/engine/gpu"
	"github.com/Faultbox/scenedemo/internal/engine/gpu/gputest"
	"github.com/Faultbox/scenedemo/internal/engine/lighting"
	"github.com/Faultbox/scenedemo/internal/engine/mesh"
	"github.com/Faultbox/scenedemo/internal/engine/scene"
)

type trace []string

// program records uniforms like a Recorder and logs its name on every Use.
type program struct {
	*gputest.Recorder
	name string
	log  *trace
}

func (p *program) Use() {
	p.Recorder.Use()
	*p.log = append(*p.log, p.name)
}

type depth struct{ log *trace }

func (d depth) Bind()                  { *d.log = append(*d.log, "shadow.bind") }
func (d depth) Unbind()                { *d.log = append(*d.log, "shadow.unbind") }
func (d depth) Texture() gpu.TextureID { return 77 }

type sky struct{ log *trace }

func (s sky) Draw(p gpu.Program) {
	p.Use()
	p.Unuse()
}

type screen struct{ log *trace }

func (s screen) Begin() { *s.log = append(*s.log, "clear") }

type fixture struct {
	log      *trace
	backend  *gputest.Recorder
	graph    *scene.Graph
	pipeline *Pipeline
	progs    map[string]*program
	frame    Frame
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := &trace{}
	backend := gputest.New()
	progs := map[string]*program{}
	for _, name := range []string{"shadow", "lit", "sky", "sprite"} {
		progs[name] = &program{Recorder: gputest.New(), name: name, log: log}
	}

	g := scene.NewGraph()
	tri := func() *mesh.Mesh {
		m, err := mesh.New(backend, []gpu.Vertex{
			{Position: [3]float32{0, 0, 0}},
			{Position: [3]float32{1, 0, 0}},
			{Position: [3]float32{0, 1, 0}},
		}, []uint32{0, 1, 2}, nil)
		require.NoError(t, err)
		return m
	}
	ground := g.NewNode("ground", tri(), mgl32.Ident4())
	crate := g.NewNode("crate", tri(), mgl32.Translate3D(0, 1, 0))
	lid := g.NewNode("lid", tri(), mgl32.Ident4())
	require.NoError(t, g.AddChild(crate, lid))

	bb, err := billboard.New(backend, image.NewRGBA(image.Rect(0, 0, 1, 1)), "tree", 1, 2, mgl32.Vec3{4, 0, 0})
	require.NoError(t, err)

	cam := camera.NewFlyCamera(mgl32.Vec3{0, 2, 8})
	return &fixture{
		log:     log,
		backend: backend,
		graph:   g,
		progs:   progs,
		pipeline: &Pipeline{
			Programs: Programs{
				Lit:    progs["lit"],
				Shadow: progs["shadow"],
				Sky:    progs["sky"],
				Sprite: progs["sprite"],
			},
			Screen:  screen{log},
			Shadow:  depth{log},
			Sky:     sky{log},
			Sprites: []Sprite{bb},
			Sun:     lighting.DefaultSun(),
			Lens:    camera.DefaultLens(),
			Shadows: true,
		},
		frame: Frame{
			Graph:   g,
			Roots:   []scene.NodeID{ground, crate},
			Casters: []scene.NodeID{crate},
			Camera:  cam,
			Aspect:  16.0 / 9.0,
		},
	}
}

func TestPipelinePassOrder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pipeline.Draw(f.frame))

	assert.Equal(t, trace{
		"shadow.bind", "shadow", "shadow", "shadow.unbind",
		"clear",
		"lit", "lit", "lit",
		"sky",
		"sprite",
	}, *f.log)
}

func TestPipelineBindsShadowTexture(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pipeline.Draw(f.frame))

	// Two caster draws, three lit draws, one billboard.
	require.Len(t, f.backend.Draws, 6)
	for _, d := range f.backend.Draws[:2] {
		assert.Equal(t, gpu.NoTexture, d.Aux)
	}
	for _, d := range f.backend.Draws[2:5] {
		assert.Equal(t, gpu.TextureID(77), d.Aux)
	}

	lit := f.progs["lit"]
	assert.Equal(t, int32(1), lit.Ints["shadowsEnabled"])
	assert.Equal(t, int32(gpu.UnitShadow), lit.Ints["shadowMap"])
	assert.Equal(t, int32(gpu.UnitDiffuse), lit.Ints["baseTexture"])
	assert.Equal(t, f.frame.Camera.ViewMatrix(), lit.Mat4s["view"])
	assert.Equal(t, f.frame.Camera.Position(), lit.Vec3s["viewPos"])
	assert.Equal(t, f.pipeline.LightSpace(f.frame), lit.Mat4s["lightSpace"])
	assert.Equal(t, lit.Mat4s["lightSpace"], f.progs["shadow"].Mat4s["lightSpace"])
	assert.Equal(t, lighting.DefaultSun().Diffuse, lit.Vec3s["lightColor"])
}

func TestPipelineWithoutShadows(t *testing.T) {
	f := newFixture(t)
	f.pipeline.Shadows = false
	require.NoError(t, f.pipeline.Draw(f.frame))

	assert.Equal(t, trace{"clear", "lit", "lit", "lit", "sky", "sprite"}, *f.log)
	assert.Equal(t, int32(0), f.progs["lit"].Ints["shadowsEnabled"])
	for _, d := range f.backend.Draws {
		assert.Equal(t, gpu.NoTexture, d.Aux)
	}
}

func TestPipelineOptionalPasses(t *testing.T) {
	f := newFixture(t)
	f.pipeline.Shadow = nil
	f.pipeline.Sky = nil
	f.pipeline.Sprites = nil
	require.NoError(t, f.pipeline.Draw(f.frame))
	assert.Equal(t, trace{"clear", "lit", "lit", "lit"}, *f.log)
}

func TestPipelineReportsInvalidRoot(t *testing.T) {
	f := newFixture(t)
	f.frame.Roots = append(f.frame.Roots, 42)
	err := f.pipeline.Draw(f.frame)
	assert.ErrorIs(t, err, scene.ErrInvalidNode)
	// The valid roots and later passes still draw.
	assert.Contains(t, *f.log, "sprite")
}

func TestSpritesFaceCamera(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pipeline.Draw(f.frame))

	bb := f.pipeline.Sprites[0].(*billboard.Billboard)
	normal := bb.Model().Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
	want := f.frame.Camera.Position().Sub(bb.Position()).Normalize()
	assert.True(t, want.ApproxEqualThreshold(normal, 1e-4))
}
