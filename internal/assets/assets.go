// Package assets imports each model once and hands out instances of it.
package assets

import (
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/engine/gpu"
	"github.com/Faultbox/scenedemo/internal/engine/importer"
	"github.com/Faultbox/scenedemo/internal/engine/scene"
	"github.com/Faultbox/scenedemo/internal/logger"
)

type key struct {
	path string
	opts importer.Options
}

// Manager caches imported models. The first import of a path is kept as a
// detached prototype in the graph; every request returns a fresh instance
// that draws the prototype's buffers with its own texture maps.
type Manager struct {
	graph   *scene.Graph
	backend gpu.Backend
	protos  map[key]scene.NodeID

	// Stats
	hits   int
	misses int
}

// NewManager creates a manager that imports into g.
func NewManager(g *scene.Graph, backend gpu.Backend) *Manager {
	return &Manager{
		graph:   g,
		backend: backend,
		protos:  make(map[key]scene.NodeID),
	}
}

// Model returns a new root node holding a copy of the model at path.
// Import errors are returned unchanged and are not cached.
func (m *Manager) Model(path string, opts importer.Options) (scene.NodeID, error) {
	k := key{path: path, opts: opts}
	proto, ok := m.protos[k]
	if ok {
		m.hits++
	} else {
		m.misses++
		var err error
		proto, err = importer.Load(m.graph, m.backend, path, opts)
		if err != nil {
			return scene.NoNode, err
		}
		m.protos[k] = proto
	}

	id, err := m.graph.Instance(proto)
	if err != nil {
		return scene.NoNode, err
	}
	logger.Debug("model instanced",
		zap.String("path", path),
		zap.Bool("cached", ok),
		zap.Int32("node", int32(id)),
	)
	return id, nil
}

// Len returns the number of distinct models imported.
func (m *Manager) Len() int { return len(m.protos) }

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.hits, m.misses
}
