package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taigrr/decal/internal/config"
	"github.com/taigrr/decal/pkg/decal"
	"github.com/taigrr/decal/pkg/math3d"
)

func demoWorkspace(t *testing.T) *workspace {
	t.Helper()
	w, err := newWorkspace(config.Default(), zap.NewNop())
	require.NoError(t, err)
	return w
}

func TestDemoSceneDecal(t *testing.T) {
	w := demoWorkspace(t)
	require.Equal(t, 3, w.scene.Len())
	require.True(t, w.projector.Ready())

	st, err := w.rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Candidates, "only the crate reaches into the default projector")
	assert.GreaterOrEqual(t, st.Triangles, 2)

	m := w.layer.Mesh()
	require.NotNil(t, m)
	for _, p := range m.Positions {
		assert.InDelta(t, 0.5+decal.DefaultPushDistance, p.Z, 1e-9, "decal sits on the crate front face")
	}
}

func TestBulletHoleSprite(t *testing.T) {
	img := bulletHole(32)
	assert.Equal(t, uint8(255), img.RGBAAt(16, 16).A, "centre is opaque")
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A, "corners are transparent")
}

func TestLoadSpriteMissing(t *testing.T) {
	_, err := loadSprite(filepath.Join(t.TempDir(), "none.png"))
	assert.Error(t, err)
}

func TestScatterRebuildAll(t *testing.T) {
	w := demoWorkspace(t)
	jobs, layers := w.scatter(12, 7)
	require.Len(t, jobs, 12)

	require.NoError(t, decal.RebuildAll(context.Background(), w.builder, jobs, 3))
	for i, l := range layers {
		assert.Equal(t, uint64(1), l.Version(), "layer %d updated once", i)
	}
}

func TestProjectorMotionSettles(t *testing.T) {
	base := config.Default().Projector.Transform()
	m := newProjectorMotion(60, base)
	m.X.Target += 0.5
	m.Size.Target = 2

	var tr decal.Trigger
	for range 600 {
		m.Update()
		tr.NeedsRebuild(m.Transform())
	}

	got := m.Transform()
	assert.Equal(t, base.Position.X+0.5, got.Position.X)
	assert.Equal(t, base.Scale.X*2, got.Scale.X)
	assert.Equal(t, base.Scale.Z, got.Scale.Z)
	assert.False(t, tr.NeedsRebuild(m.Transform()), "settled motion stops triggering rebuilds")

	m.Reset()
	assert.Equal(t, base.Position.X, m.X.Target)
	assert.Equal(t, 1.0, m.Size.Target)
}

func TestViewerKeys(t *testing.T) {
	w := demoWorkspace(t)
	v := &viewer{w: w, motion: newProjectorMotion(30, w.projector.Transform)}
	x := v.motion.X.Target
	box := w.cfg.Render.ShowBox

	assert.True(t, v.handle(uv.KeyPressEvent{Code: 'l', Text: "l"}))
	assert.InDelta(t, x+0.05, v.motion.X.Target, 1e-12)

	assert.True(t, v.handle(uv.KeyPressEvent{Code: uv.KeyLeft}))
	assert.InDelta(t, x, v.motion.X.Target, 1e-12)

	assert.True(t, v.handle(uv.KeyPressEvent{Code: 'b', Text: "b"}))
	assert.Equal(t, !box, w.cfg.Render.ShowBox)

	assert.False(t, v.handle(uv.KeyPressEvent{Code: uv.KeyEscape}))
}

func TestBakeCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "decalview.yaml")
	require.NoError(t, config.Default().SaveTo(cfgPath))
	out := filepath.Join(dir, "preview.png")

	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"bake", "--config", cfgPath, "--log-level", "error",
		"-o", out, "--width", "64", "--height", "48", "--scatter", "4"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.True(t, strings.HasPrefix(stdout.String(), "decal: 1 candidates"), stdout.String())
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestBakeRejectsInvalidOverride(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "decalview.yaml")
	require.NoError(t, config.Default().SaveTo(cfgPath))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"bake", "--config", cfgPath, "--max-angle", "200"})
	err := root.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestWorkspaceBounds(t *testing.T) {
	w := demoWorkspace(t)
	b := w.bounds()
	assert.True(t, b.ContainsPoint(math3d.V3(0, 0.5, 0)))
	assert.InDelta(t, 4.0, b.Size().X, 1e-9)
}

func TestSaveConfigCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "decalview.yaml")
	require.NoError(t, config.Default().SaveTo(cfgPath))
	out := filepath.Join(dir, "nested", "saved.yaml")

	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"save-config", out, "--config", cfgPath, "--max-angle", "45", "--trigger", "scale"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "wrote "+out+"\n", stdout.String())

	got, err := config.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 45.0, got.Decal.MaxAngle)
	assert.Equal(t, "scale", got.Decal.Trigger)
	assert.Equal(t, config.Default().Render, got.Render)
}
