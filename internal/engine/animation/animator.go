package animation

import (
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/logger"
)

// Animator owns a list of animations and ticks them in insertion order.
type Animator struct {
	list []*Animation
}

// Add appends a, leaving its state alone.
func (an *Animator) Add(a *Animation) {
	an.list = append(an.list, a)
}

// Len returns the number of animations, finished ones included.
func (an *Animator) Len() int { return len(an.list) }

// Animations returns the list in insertion order.
func (an *Animator) Animations() []*Animation { return an.list }

// Start starts (or restarts) every animation.
func (an *Animator) Start() {
	for _, a := range an.list {
		a.Start()
	}
}

// Tick advances every running animation by dt. Pending animations are
// skipped. The first error stops the pass and is returned.
func (an *Animator) Tick(dt float32) error {
	for i, a := range an.list {
		if a.State() == Pending {
			continue
		}
		wasRunning := a.State() == Running
		if err := a.Tick(dt); err != nil {
			return err
		}
		if wasRunning && a.State() == Finished {
			logger.Debug("animation finished",
				zap.Int("index", i),
				zap.Stringer("kind", a.Kind()),
				zap.Int32("target", int32(a.Target())),
			)
		}
	}
	return nil
}

// Finished reports whether every animation has finished. An empty animator
// counts as finished.
func (an *Animator) Finished() bool {
	for _, a := range an.list {
		if a.State() != Finished {
			return false
		}
	}
	return true
}

// Prune drops finished animations and returns how many were removed.
func (an *Animator) Prune() int {
	kept := an.list[:0]
	for _, a := range an.list {
		if a.State() != Finished {
			kept = append(kept, a)
		}
	}
	removed := len(an.list) - len(kept)
	clear(an.list[len(kept):])
	an.list = kept
	return removed
}
