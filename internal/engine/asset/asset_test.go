package asset

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIsRelativeToModelDirectory(t *testing.T) {
	model := filepath.Join("assets", "skull", "skull.gltf")

	assert.Equal(t, filepath.Join("assets", "skull", "skull_diffuse.png"), Resolve(model, "skull_diffuse.png"))
	assert.Equal(t, filepath.Join("assets", "skull", "maps", "n.png"), Resolve(model, "maps/n.png"))

	abs := filepath.Join(t.TempDir(), "x.png")
	assert.Equal(t, abs, Resolve(model, abs))
}

func TestReadFileMissingIsNotFound(t *testing.T) {
	_, err := ReadFile("texture", filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)

	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "texture", aerr.Op)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFormatf(t *testing.T) {
	err := Formatf("import", "a.gltf", "no meshes in %s", "a.gltf")
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "import a.gltf")
	assert.Nil(t, Wrap("import", "a.gltf", nil))
}
