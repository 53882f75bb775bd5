package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenedemo/internal/engine/asset"
)

func TestBuiltinSources(t *testing.T) {
	for _, name := range []string{Lit, Shadow, Skybox, Billboard} {
		vert, frag, err := BuiltinSource(name)
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(vert, "#version 410 core"), name)
		assert.True(t, strings.HasPrefix(frag, "#version 410 core"), name)
	}

	_, _, err := BuiltinSource("missing")
	assert.Error(t, err)
}

func TestLitUsesSceneUniforms(t *testing.T) {
	vert, frag, err := BuiltinSource(Lit)
	require.NoError(t, err)
	for _, u := range []string{"model", "view", "projection", "lightSpace"} {
		assert.Contains(t, vert, "uniform mat4 "+u+";")
	}
	assert.Contains(t, frag, "uniform vec4 material;")
	assert.Contains(t, frag, "uniform sampler2DShadow shadowMap;")
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "a.vert"), filepath.Join(dir, "a.frag"))
	require.Error(t, err)
	assert.ErrorIs(t, err, asset.ErrNotFound)

	var ae *asset.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "shader", ae.Op)
}

func TestStale(t *testing.T) {
	p := &Program{vertPath: "shaders/a.vert", fragPath: "shaders/a.frag"}
	abs, err := filepath.Abs("shaders/a.frag")
	require.NoError(t, err)

	assert.True(t, Stale(p, []string{abs}))
	assert.False(t, Stale(p, []string{"/elsewhere/a.frag"}))
	assert.False(t, Stale(&Program{}, []string{abs}))
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "x.vert")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(vert, []byte("v1"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("n"), 0o644))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(vert))

	assert.Empty(t, w.Poll())

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(vert, []byte("v2"), 0o644))

	var got []string
	require.Eventually(t, func() bool {
		got = append(got, w.Poll()...)
		return len(got) > 0
	}, 2*time.Second, 10*time.Millisecond)

	abs, _ := filepath.Abs(vert)
	assert.Equal(t, []string{abs}, got)
}
