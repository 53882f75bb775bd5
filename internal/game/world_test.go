package game

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenedemo/internal/assets"
	"github.com/Faultbox/scenedemo/internal/config"
	"github.com/Faultbox/scenedemo/internal/engine/gpu/gputest"
	"github.com/Faultbox/scenedemo/internal/engine/importer/importertest"
	"github.com/Faultbox/scenedemo/internal/engine/picking"
	"github.com/Faultbox/scenedemo/internal/engine/scene"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))))
}

func ptr[T any](v T) *T { return &v }

func testScene(t *testing.T) config.SceneConfig {
	t.Helper()
	dir := t.TempDir()
	importertest.WriteGLB(t, dir, "crate.glb", 2)
	importertest.WriteGLB(t, dir, "lid.glb", 1)
	writePNG(t, filepath.Join(dir, "a.png"))
	writePNG(t, filepath.Join(dir, "b.png"))

	return config.SceneConfig{
		Dir: dir,
		Objects: []config.ObjectConfig{
			{
				Name:        "crate",
				Model:       "crate.glb",
				Position:    [3]float32{1, 0, 0},
				Orientation: [3]float32{0, 90, 0},
				Material:    ptr([4]float32{1, 0, 0, 16}),
				Children: []config.ObjectConfig{
					{Name: "lid", Model: "lid.glb", Position: [3]float32{0, 1, 0}},
				},
			},
			{
				Name:        "floor",
				Model:       "lid.glb",
				Scale:       ptr([3]float32{10, 1, 10}),
				CastsShadow: ptr(false),
				Textures: []config.TextureConfig{
					{Path: "a.png"},
					{Path: "b.png", Usage: "specular"},
				},
			},
			{
				Name:     "ghost",
				Model:    "missing.glb",
				Children: []config.ObjectConfig{{Name: "ghost-hat", Model: "lid.glb"}},
			},
			{Name: "pivot"},
		},
		Animations: []config.AnimationConfig{
			{Kind: config.KindTranslation, Target: "crate", Duration: 2, Move: [3]float32{0, 4, 0}},
			{Kind: config.KindCompositeWobble, Target: "pivot", Parts: []string{"lid"}, Duration: 1, PartMove: [3]float32{0, 0, 1}, Group: "wobble"},
			{Kind: config.KindTranslation, Target: "ghost", Duration: 1},
		},
	}
}

func buildTestWorld(t *testing.T) *World {
	t.Helper()
	g := scene.NewGraph()
	return BuildWorld(testScene(t), g, assets.NewManager(g, gputest.New()))
}

func node(t *testing.T, w *World, name string) *scene.Node {
	t.Helper()
	id, ok := w.Lookup(name)
	require.True(t, ok, name)
	n, err := w.Graph.Node(id)
	require.NoError(t, err)
	return n
}

func TestBuildWorldNodes(t *testing.T) {
	w := buildTestWorld(t)

	crate, _ := w.Lookup("crate")
	floor, _ := w.Lookup("floor")
	pivot, _ := w.Lookup("pivot")
	assert.Equal(t, []scene.NodeID{crate, floor, pivot}, w.Roots)
	assert.Equal(t, []scene.NodeID{crate, pivot}, w.Casters)

	_, ok := w.Lookup("ghost")
	assert.False(t, ok)
	_, ok = w.Lookup("ghost-hat")
	assert.False(t, ok, "children of a skipped object are skipped")

	c := node(t, w, "crate")
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, c.Position())
	assert.InDelta(t, mgl32.DegToRad(90), c.Orientation()[1], 1e-6)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, c.Scale())
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 16}, c.Material())

	// The crate's second primitive plus the lid from config.
	lid, _ := w.Lookup("lid")
	require.Len(t, c.Children(), 2)
	assert.Equal(t, lid, c.Children()[1])
	assert.Equal(t, scene.DefaultMaterial, node(t, w, "lid").Material(), "lid was attached after the crate's material was set")

	f := node(t, w, "floor")
	assert.Equal(t, mgl32.Vec3{10, 1, 10}, f.Scale())
	assert.Len(t, f.Mesh().Maps(), 2)
	assert.Nil(t, node(t, w, "pivot").Mesh())
}

func TestBuildWorldAnimators(t *testing.T) {
	w := buildTestWorld(t)

	// The ghost animation is dropped; the wobble lives in its own group.
	require.Len(t, w.Animators, 2)
	assert.Equal(t, 1, w.Animators[0].Len())
	assert.Equal(t, 1, w.Animators[1].Len())
	assert.False(t, w.Finished())

	require.NoError(t, w.Tick(1))
	assert.InDelta(t, 2, node(t, w, "crate").Position()[1], 1e-5)
	assert.InDelta(t, 1, node(t, w, "lid").Position()[2], 1e-5)

	require.NoError(t, w.Tick(5))
	assert.InDelta(t, 4, node(t, w, "crate").Position()[1], 1e-5)
	assert.InDelta(t, 1, node(t, w, "lid").Position()[2], 1e-5)
	assert.True(t, w.Finished())
}

func TestWorldPauseAndRestart(t *testing.T) {
	w := buildTestWorld(t)

	assert.True(t, w.TogglePause())
	require.NoError(t, w.Tick(1))
	assert.Equal(t, float32(0), node(t, w, "crate").Position()[1])

	assert.False(t, w.TogglePause())
	require.NoError(t, w.Tick(3))
	assert.InDelta(t, 4, node(t, w, "crate").Position()[1], 1e-5)

	w.Restart()
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, node(t, w, "crate").Position())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, node(t, w, "lid").Position())
	assert.False(t, w.Finished())

	require.NoError(t, w.Tick(2))
	assert.InDelta(t, 4, node(t, w, "crate").Position()[1], 1e-5)
}

func TestWorldSelection(t *testing.T) {
	w := buildTestWorld(t)
	crate, _ := w.Lookup("crate")
	lid, _ := w.Lookup("lid")
	floor, _ := w.Lookup("floor")

	assert.Equal(t, crate, w.Selected())
	assert.Equal(t, lid, w.SelectNext())
	assert.Equal(t, floor, w.SelectNext())

	m := node(t, w, "floor").Mesh()
	assert.Equal(t, 0, m.ActiveIndex())
	require.NoError(t, w.CycleSelected())
	assert.Equal(t, 1, m.ActiveIndex())

	assert.Equal(t, crate, w.SelectNext(), "selection wraps")
}

func TestObjectTexturesStayPerObject(t *testing.T) {
	w := buildTestWorld(t)

	// floor and lid both place lid.glb; only floor lists textures.
	lid := node(t, w, "lid").Mesh()
	floor := node(t, w, "floor").Mesh()
	require.True(t, lid.SharesGeometry(floor))
	assert.Empty(t, lid.Maps())
	assert.Len(t, floor.Maps(), 2)

	floorID, _ := w.Lookup("floor")
	for w.Selected() != floorID {
		w.SelectNext()
	}
	require.NoError(t, w.CycleSelected())
	assert.Equal(t, 1, floor.ActiveIndex())
	assert.Equal(t, -1, lid.ActiveIndex())
}

func TestCompositeWobbleOnImportedParts(t *testing.T) {
	dir := t.TempDir()
	importertest.WriteGLB(t, dir, "skull.glb", 3)
	sc := config.SceneConfig{
		Dir:     dir,
		Objects: []config.ObjectConfig{{Name: "skull", Model: "skull.glb"}},
		Animations: []config.AnimationConfig{
			{
				Kind:     config.KindCompositeWobble,
				Target:   "skull",
				Parts:    []string{"skull/0", "skull/1"},
				Duration: 2,
				Move:     [3]float32{0, 0, 1},
				PartMove: [3]float32{0, -1, 0},
			},
			{Kind: config.KindCompositeWobble, Target: "skull", Parts: []string{"skull/5"}, Duration: 1, Group: "bad"},
		},
	}
	require.NoError(t, sc.Validate())

	g := scene.NewGraph()
	w := BuildWorld(sc, g, assets.NewManager(g, gputest.New()))
	require.Len(t, w.Animators, 1, "out of range child is dropped")
	require.NoError(t, w.Tick(2))

	skull := node(t, w, "skull")
	assert.InDelta(t, 1, skull.Position()[2], 1e-5)
	require.Len(t, skull.Children(), 2)
	for _, id := range skull.Children() {
		n, err := g.Node(id)
		require.NoError(t, err)
		assert.InDelta(t, -1, n.Position()[1], 1e-5, n.Name())
	}

	w.Restart()
	for _, id := range skull.Children() {
		n, _ := g.Node(id)
		assert.Equal(t, mgl32.Vec3{}, n.Position(), "restart restores imported parts")
	}
}

func TestWorldPick(t *testing.T) {
	dir := t.TempDir()
	importertest.WriteGLB(t, dir, "quad.glb", 1)
	sc := config.SceneConfig{
		Dir: dir,
		Objects: []config.ObjectConfig{
			{Name: "far", Model: "quad.glb", Position: [3]float32{0, 0, -2}},
			{Name: "near", Model: "quad.glb", Position: [3]float32{0, 0, 2}},
		},
	}
	g := scene.NewGraph()
	w := BuildWorld(sc, g, assets.NewManager(g, gputest.New()))
	far, _ := w.Lookup("far")
	near, _ := w.Lookup("near")
	forward := mgl32.Vec3{0, 0, -1}

	id, ok := w.Pick(picking.Ray{Origin: mgl32.Vec3{0.25, 0.25, 10}, Direction: forward})
	require.True(t, ok)
	assert.Equal(t, near, id)
	assert.Equal(t, near, w.Selected())

	// Between the two objects only the far one is ahead.
	id, ok = w.Pick(picking.Ray{Origin: mgl32.Vec3{0.25, 0.25, 0}, Direction: forward})
	require.True(t, ok)
	assert.Equal(t, far, id)

	_, ok = w.Pick(picking.Ray{Origin: mgl32.Vec3{5, 0.25, 10}, Direction: forward})
	assert.False(t, ok)
	assert.Equal(t, far, w.Selected(), "a miss keeps the selection")
}

func TestEmptyWorld(t *testing.T) {
	g := scene.NewGraph()
	w := BuildWorld(config.SceneConfig{}, g, assets.NewManager(g, gputest.New()))

	assert.Equal(t, scene.NoNode, w.Selected())
	assert.Equal(t, scene.NoNode, w.SelectNext())
	assert.NoError(t, w.CycleSelected())
	assert.True(t, w.Finished())
	assert.NoError(t, w.Tick(1))
	_, _, ok := w.Bounds()
	assert.False(t, ok)
}
