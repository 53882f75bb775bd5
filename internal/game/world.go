package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/assets"
	"github.com/Faultbox/scenedemo/internal/config"
	"github.com/Faultbox/scenedemo/internal/engine/animation"
	"github.com/Faultbox/scenedemo/internal/engine/importer"
	"github.com/Faultbox/scenedemo/internal/engine/mesh"
	"github.com/Faultbox/scenedemo/internal/engine/picking"
	"github.com/Faultbox/scenedemo/internal/engine/scene"
	"github.com/Faultbox/scenedemo/internal/logger"
)

// World is the animated scene: the graph, what to draw, and the animators
// that move it.
type World struct {
	Graph     *scene.Graph
	Roots     []scene.NodeID
	Casters   []scene.NodeID
	Animators []*animation.Animator

	names      map[string]scene.NodeID
	selectable []scene.NodeID
	selected   int
	paused     bool
	initial    map[scene.NodeID]scene.Transform

	log *zap.Logger
}

// BuildWorld creates the nodes and animations described by sc. Objects whose
// model fails to load are skipped with their children, and animations that
// reference them are dropped; both are logged. Animators are started.
func BuildWorld(sc config.SceneConfig, g *scene.Graph, models *assets.Manager) *World {
	w := &World{
		Graph:    g,
		names:    make(map[string]scene.NodeID),
		initial:  make(map[scene.NodeID]scene.Transform),
		selected: -1,
		log:      logger.Named("world"),
	}
	for _, o := range sc.Objects {
		w.addObject(sc, o, scene.NoNode, models)
	}
	w.addAnimations(sc.Animations)
	if len(w.selectable) > 0 {
		w.selected = 0
	}
	for _, an := range w.Animators {
		an.Start()
	}
	w.log.Info("world built",
		zap.Int("nodes", g.Len()),
		zap.Int("roots", len(w.Roots)),
		zap.Int("animators", len(w.Animators)),
	)
	return w
}

func (w *World) addObject(sc config.SceneConfig, o config.ObjectConfig, parent scene.NodeID, models *assets.Manager) {
	var id scene.NodeID
	if o.Model != "" {
		opts := importer.Options{FlipUV: o.FlipUV, GenNormals: o.GenerateNormals(), GenUV: o.GenUV}
		var err error
		id, err = models.Model(sc.Resolve(o.Model), opts)
		if err != nil {
			w.log.Warn("skipping object", zap.String("object", o.Name), zap.Error(err))
			return
		}
		w.selectable = append(w.selectable, id)
	} else {
		id = w.Graph.NewNode(o.Name, nil, mgl32.Ident4())
	}
	w.names[o.Name] = id

	n, _ := w.Graph.Node(id)
	n.SetTransform(objectTransform(o))

	if o.Material != nil {
		if err := w.Graph.SetMaterial(id, mgl32.Vec4(*o.Material)); err != nil {
			w.log.Warn("material not set", zap.String("object", o.Name), zap.Error(err))
		}
	}
	for _, tc := range o.Textures {
		usage, err := mesh.ParseUsage(tc.Usage)
		if err == nil {
			err = w.Graph.AddTexture(id, sc.Resolve(tc.Path), usage)
		}
		if err != nil {
			w.log.Warn("texture not added",
				zap.String("object", o.Name),
				zap.String("path", tc.Path),
				zap.Error(err),
			)
		}
	}

	if parent == scene.NoNode {
		w.Roots = append(w.Roots, id)
		if o.ShadowCaster() {
			w.Casters = append(w.Casters, id)
		}
	} else if err := w.Graph.AddChild(parent, id); err != nil {
		w.log.Warn("child not attached", zap.String("object", o.Name), zap.Error(err))
	}

	for _, c := range o.Children {
		w.addObject(sc, c, id, models)
	}
}

func objectTransform(o config.ObjectConfig) scene.Transform {
	return scene.Transform{
		Position:    mgl32.Vec3(o.Position),
		Orientation: degrees(o.Orientation),
		Scale:       mgl32.Vec3(o.ScaleOrOne()),
		Pivot:       mgl32.Vec3(o.Center),
	}
}

func degrees(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2])}
}

func (w *World) addAnimations(list []config.AnimationConfig) {
	groups := make(map[string]*animation.Animator)
	for i, ac := range list {
		a, err := w.newAnimation(ac)
		if err != nil {
			w.log.Warn("skipping animation", zap.Int("index", i), zap.Error(err))
			continue
		}
		an, ok := groups[ac.Group]
		if !ok {
			an = &animation.Animator{}
			groups[ac.Group] = an
			w.Animators = append(w.Animators, an)
		}
		an.Add(a)
	}
}

func (w *World) newAnimation(ac config.AnimationConfig) (*animation.Animation, error) {
	target, ok := w.names[ac.Target]
	if !ok {
		return nil, fmt.Errorf("target %q not in scene", ac.Target)
	}
	w.remember(target)

	move := mgl32.Vec3(ac.Move)
	switch ac.Kind {
	case config.KindTranslation:
		return animation.NewTranslation(w.Graph, target, ac.Duration, move)
	case config.KindTranslationRotation:
		return animation.NewTranslationRotation(w.Graph, target, ac.Duration, move, degrees(ac.Rotate))
	case config.KindCompositeWobble:
		parts := make([]scene.NodeID, 0, len(ac.Parts))
		for _, ref := range ac.Parts {
			id, err := w.part(ref)
			if err != nil {
				return nil, err
			}
			w.remember(id)
			parts = append(parts, id)
		}
		return animation.NewCompositeWobble(w.Graph, target, parts, ac.Duration, move, mgl32.Vec3(ac.PartMove))
	}
	return nil, fmt.Errorf("unknown animation kind %q", ac.Kind)
}

// part resolves a composite part reference: an object name, or "name/i"
// for child i of that object.
func (w *World) part(ref string) (scene.NodeID, error) {
	pr, err := config.ParsePart(ref)
	if err != nil {
		return scene.NoNode, err
	}
	id, ok := w.names[pr.Object]
	if !ok {
		return scene.NoNode, fmt.Errorf("part %q not in scene", ref)
	}
	if pr.Child < 0 {
		return id, nil
	}
	child, err := w.Graph.Child(id, pr.Child)
	if err != nil {
		return scene.NoNode, fmt.Errorf("part %q: %w", ref, err)
	}
	return child, nil
}

// remember records the build-time transform of an animated node for Restart.
func (w *World) remember(id scene.NodeID) {
	if _, ok := w.initial[id]; ok {
		return
	}
	if n, err := w.Graph.Node(id); err == nil {
		w.initial[id] = n.Transform()
	}
}

// Lookup returns the node built for the named object.
func (w *World) Lookup(name string) (scene.NodeID, bool) {
	id, ok := w.names[name]
	return id, ok
}

// Tick advances every animator by dt unless paused.
func (w *World) Tick(dt float32) error {
	if w.paused {
		return nil
	}
	for _, an := range w.Animators {
		if err := an.Tick(dt); err != nil {
			return err
		}
	}
	return nil
}

// Finished reports whether every animator has finished.
func (w *World) Finished() bool {
	for _, an := range w.Animators {
		if !an.Finished() {
			return false
		}
	}
	return true
}

// Paused reports whether Tick is suspended.
func (w *World) Paused() bool { return w.paused }

// TogglePause suspends or resumes animation and returns the new state.
func (w *World) TogglePause() bool {
	w.paused = !w.paused
	w.log.Info("animation", zap.Bool("paused", w.paused))
	return w.paused
}

// Restart puts animated nodes back where they were built and starts every
// animator from the beginning.
func (w *World) Restart() {
	for id, t := range w.initial {
		if n, err := w.Graph.Node(id); err == nil {
			n.SetTransform(t)
		}
	}
	for _, an := range w.Animators {
		an.Start()
	}
	w.log.Info("animation restarted")
}

// Selected returns the object T cycles textures on, NoNode when nothing
// with a mesh was loaded.
func (w *World) Selected() scene.NodeID {
	if w.selected < 0 {
		return scene.NoNode
	}
	return w.selectable[w.selected]
}

// SelectNext moves the selection to the next imported object.
func (w *World) SelectNext() scene.NodeID {
	if len(w.selectable) == 0 {
		return scene.NoNode
	}
	w.selected = (w.selected + 1) % len(w.selectable)
	id := w.Selected()
	if n, err := w.Graph.Node(id); err == nil {
		w.log.Info("selected", zap.String("node", n.Name()), zap.Int32("id", int32(id)))
	}
	return id
}

// Pick selects the nearest imported object whose world bounds the ray hits.
// The selection is unchanged on a miss.
func (w *World) Pick(r picking.Ray) (scene.NodeID, bool) {
	best, nearest := -1, float32(0)
	for i, id := range w.selectable {
		lo, hi, ok := w.Graph.Bounds(id)
		if !ok {
			continue
		}
		t, hit := r.IntersectAABB(picking.NewAABB(lo, hi))
		// Ties go to the later entry so children win over their parent.
		if hit && (best < 0 || t <= nearest) {
			best, nearest = i, t
		}
	}
	if best < 0 {
		return scene.NoNode, false
	}
	w.selected = best
	id := w.selectable[best]
	if n, err := w.Graph.Node(id); err == nil {
		w.log.Info("picked", zap.String("node", n.Name()), zap.Float32("distance", nearest))
	}
	return id, true
}

// CycleSelected advances the active texture of the selected object.
func (w *World) CycleSelected() error {
	id := w.Selected()
	if id == scene.NoNode {
		return nil
	}
	return w.Graph.CycleTexture(id)
}

// Bounds returns the box around every root.
func (w *World) Bounds() (lo, hi mgl32.Vec3, ok bool) {
	return w.Graph.Bounds(w.Roots...)
}
