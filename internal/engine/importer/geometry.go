package importer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenedemo/internal/engine/gpu"
)

// SmoothNormals sets every vertex normal to the area-weighted average of the
// faces that use it. Vertices used by no face, or only by degenerate faces,
// get +Y.
func SmoothNormals(vertices []gpu.Vertex, faces []uint32) {
	acc := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(faces); i += 3 {
		a, b, c := faces[i], faces[i+1], faces[i+2]
		pa := mgl32.Vec3(vertices[a].Position)
		pb := mgl32.Vec3(vertices[b].Position)
		pc := mgl32.Vec3(vertices[c].Position)
		// The cross product's length is twice the triangle area.
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	for i := range vertices {
		n := acc[i]
		if n.Len() < 1e-12 {
			vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		vertices[i].Normal = [3]float32(n.Normalize())
	}
}

// SphericalUV projects every vertex onto a sphere around the bounding box
// center and uses longitude/latitude as texture coordinates.
func SphericalUV(vertices []gpu.Vertex) {
	if len(vertices) == 0 {
		return
	}
	lo := mgl32.Vec3(vertices[0].Position)
	hi := lo
	for _, v := range vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v.Position[k])
			hi[k] = max(hi[k], v.Position[k])
		}
	}
	center := lo.Add(hi).Mul(0.5)

	for i := range vertices {
		d := mgl32.Vec3(vertices[i].Position).Sub(center)
		if d.Len() < 1e-12 {
			vertices[i].TexCoord = [2]float32{0.5, 0.5}
			continue
		}
		d = d.Normalize()
		u := 0.5 + math.Atan2(float64(d[2]), float64(d[0]))/(2*math.Pi)
		v := 0.5 - math.Asin(float64(mgl32.Clamp(d[1], -1, 1)))/math.Pi
		vertices[i].TexCoord = [2]float32{float32(u), float32(v)}
	}
}

// FlipV mirrors texture coordinates vertically.
func FlipV(vertices []gpu.Vertex) {
	for i := range vertices {
		vertices[i].TexCoord[1] = 1 - vertices[i].TexCoord[1]
	}
}
