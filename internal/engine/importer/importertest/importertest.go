// Package importertest writes small glTF fixtures for tests.
package importertest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// WriteGLB saves a binary glTF at dir/name with one mesh of parts triangle
// primitives, each offset one unit along X from the previous.
func WriteGLB(tb testing.TB, dir, name string, parts int) string {
	tb.Helper()
	doc := gltf.NewDocument()

	prims := make([]*gltf.Primitive, 0, parts)
	for i := 0; i < parts; i++ {
		x := float32(i)
		pos := modeler.WritePosition(doc, [][3]float32{{x, 0, 0}, {x + 1, 0, 0}, {x, 1, 0}})
		idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
		prims = append(prims, &gltf.Primitive{
			Attributes: map[string]int{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
		})
	}
	doc.Meshes = []*gltf.Mesh{{Name: "model", Primitives: prims}}
	doc.Nodes = []*gltf.Node{{
		Name:     "model",
		Mesh:     gltf.Index(0),
		Rotation: [4]float64{0, 0, 0, 1},
		Scale:    [3]float64{1, 1, 1},
	}}
	doc.Scenes[0].Nodes = []int{0}

	path := filepath.Join(dir, name)
	if err := gltf.SaveBinary(doc, path); err != nil {
		tb.Fatalf("write %s: %v", name, err)
	}
	return path
}

// PartName returns the node name the importer gives primitive i of a
// WriteGLB model with more than one part.
func PartName(i int) string {
	return fmt.Sprintf("model.%d", i)
}
