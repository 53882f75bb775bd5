package skybox

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenedemo/internal/engine/asset"
)

func writeFaces(t *testing.T, sizes [FaceCount][2]int) Faces {
	t.Helper()
	dir := t.TempDir()
	var faces Faces
	for i, s := range sizes {
		p := filepath.Join(dir, fmt.Sprintf("face%d.png", i))
		f, err := os.Create(p)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, s[0], s[1]))))
		require.NoError(t, f.Close())
		faces[i] = p
	}
	return faces
}

func uniform(n int) [FaceCount][2]int {
	var s [FaceCount][2]int
	for i := range s {
		s[i] = [2]int{n, n}
	}
	return s
}

func TestLoadFaces(t *testing.T) {
	faces, err := LoadFaces(writeFaces(t, uniform(4)))
	require.NoError(t, err)
	for _, f := range faces {
		assert.Equal(t, 4, f.Bounds().Dx())
	}
}

func TestLoadFacesRejectsMismatch(t *testing.T) {
	sizes := uniform(4)
	sizes[NegZ] = [2]int{8, 8}
	_, err := LoadFaces(writeFaces(t, sizes))
	assert.ErrorIs(t, err, asset.ErrFormat)

	sizes = uniform(4)
	sizes[PosY] = [2]int{4, 2}
	_, err = LoadFaces(writeFaces(t, sizes))
	assert.ErrorIs(t, err, asset.ErrFormat)
}

func TestLoadFacesMissing(t *testing.T) {
	faces := writeFaces(t, uniform(2))
	faces[NegX] = filepath.Join(filepath.Dir(faces[0]), "gone.png")
	_, err := LoadFaces(faces)
	assert.ErrorIs(t, err, asset.ErrNotFound)
}

func TestCubeHas36Vertices(t *testing.T) {
	assert.Len(t, cubeVertices, 36*3)
	for _, v := range cubeVertices {
		assert.True(t, v == 1 || v == -1)
	}
}
