// Package animation moves scene nodes over a fixed duration at constant
// velocity.
package animation

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenedemo/internal/engine/scene"
)

var (
	ErrNotStarted = errors.New("animation: not started")
	ErrDuration   = errors.New("animation: duration must be positive")
)

// Kind selects the delta applied each tick.
type Kind int

const (
	// Translation moves the target.
	Translation Kind = iota
	// TranslationRotation moves and rotates the target.
	TranslationRotation
	// CompositeWobble moves the target and additionally moves each part.
	CompositeWobble
)

func (k Kind) String() string {
	switch k {
	case Translation:
		return "translation"
	case TranslationRotation:
		return "translation-rotation"
	case CompositeWobble:
		return "composite-wobble"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is the lifecycle stage of an animation.
type State int

const (
	Pending State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Animation applies a per-second delta to a target node until its duration
// has elapsed. It never applies more than duration seconds of motion.
type Animation struct {
	kind     Kind
	graph    *scene.Graph
	target   scene.NodeID
	parts    []scene.NodeID
	duration float32
	elapsed  float32
	state    State

	velocity mgl32.Vec3 // target translation per second
	angular  mgl32.Vec3 // target rotation per second
	partVel  mgl32.Vec3 // per-part translation per second
}

func newAnimation(kind Kind, g *scene.Graph, target scene.NodeID, duration float32) (*Animation, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrDuration, duration)
	}
	if _, err := g.Node(target); err != nil {
		return nil, err
	}
	return &Animation{kind: kind, graph: g, target: target, duration: duration}, nil
}

// NewTranslation moves target by totalMove over duration seconds.
func NewTranslation(g *scene.Graph, target scene.NodeID, duration float32, totalMove mgl32.Vec3) (*Animation, error) {
	a, err := newAnimation(Translation, g, target, duration)
	if err != nil {
		return nil, err
	}
	a.velocity = totalMove.Mul(1 / duration)
	return a, nil
}

// NewTranslationRotation moves target by totalMove and rotates it by
// totalRotate (radians) over duration seconds.
func NewTranslationRotation(g *scene.Graph, target scene.NodeID, duration float32, totalMove, totalRotate mgl32.Vec3) (*Animation, error) {
	a, err := newAnimation(TranslationRotation, g, target, duration)
	if err != nil {
		return nil, err
	}
	a.velocity = totalMove.Mul(1 / duration)
	a.angular = totalRotate.Mul(1 / duration)
	return a, nil
}

// NewCompositeWobble moves target by totalMove and each of parts by partMove
// on top of that, over duration seconds. Parts are usually children of target.
func NewCompositeWobble(g *scene.Graph, target scene.NodeID, parts []scene.NodeID, duration float32, totalMove, partMove mgl32.Vec3) (*Animation, error) {
	a, err := newAnimation(CompositeWobble, g, target, duration)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		if _, err := g.Node(p); err != nil {
			return nil, err
		}
	}
	a.parts = append([]scene.NodeID(nil), parts...)
	a.velocity = totalMove.Mul(1 / duration)
	a.partVel = partMove.Mul(1 / duration)
	return a, nil
}

func (a *Animation) Kind() Kind               { return a.kind }
func (a *Animation) State() State             { return a.state }
func (a *Animation) Target() scene.NodeID     { return a.target }
func (a *Animation) Duration() float32        { return a.duration }
func (a *Animation) Elapsed() float32         { return a.elapsed }
func (a *Animation) Parts() []scene.NodeID    { return a.parts }
func (a *Animation) Velocity() mgl32.Vec3     { return a.velocity }
func (a *Animation) Angular() mgl32.Vec3      { return a.angular }
func (a *Animation) PartVelocity() mgl32.Vec3 { return a.partVel }

// Start resets elapsed time and enters Running, from any state.
func (a *Animation) Start() {
	a.elapsed = 0
	a.state = Running
}

// Tick advances the animation by dt seconds. The last tick is shortened so
// the total applied time equals the duration exactly.
func (a *Animation) Tick(dt float32) error {
	switch a.state {
	case Pending:
		return ErrNotStarted
	case Finished:
		return nil
	}
	if dt <= 0 {
		return nil
	}

	step := min(dt, a.duration-a.elapsed)
	a.elapsed += step
	if err := a.apply(step); err != nil {
		return err
	}
	if a.elapsed >= a.duration {
		a.state = Finished
	}
	return nil
}

func (a *Animation) apply(step float32) error {
	n, err := a.graph.Node(a.target)
	if err != nil {
		return err
	}
	n.Move(a.velocity.Mul(step))

	switch a.kind {
	case TranslationRotation:
		n.Rotate(a.angular.Mul(step))
	case CompositeWobble:
		for _, id := range a.parts {
			p, err := a.graph.Node(id)
			if err != nil {
				return err
			}
			p.Move(a.partVel.Mul(step))
		}
	}
	return nil
}
