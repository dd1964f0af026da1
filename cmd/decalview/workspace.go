package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/taigrr/decal/internal/config"
	"github.com/taigrr/decal/pkg/decal"
	"github.com/taigrr/decal/pkg/geom"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/models"
	"github.com/taigrr/decal/pkg/render"
	"github.com/taigrr/decal/pkg/scene"
)

// workspace is the scene, projector and decal layer a command works on.
type workspace struct {
	cfg       *config.Config
	log       *zap.Logger
	scene     *scene.Scene
	builder   *decal.Builder
	projector *decal.Projector
	layer     *render.Layer
}

func newWorkspace(cfg *config.Config, log *zap.Logger) (*workspace, error) {
	s := scene.New()
	if cfg.Scene.Model != "" {
		nodes, err := models.NewGLTFLoader().LoadScene(cfg.Scene.Model)
		if err != nil {
			return nil, fmt.Errorf("load scene: %w", err)
		}
		if _, err := s.AddNodes(nodes, cfg.Scene.Layer); err != nil {
			return nil, fmt.Errorf("index scene: %w", err)
		}
		log.Info("loaded scene", zap.String("path", cfg.Scene.Model), zap.Int("objects", s.Len()))
	} else if err := s.Add(demoScene(cfg.Scene.Layer)...); err != nil {
		return nil, fmt.Errorf("index demo scene: %w", err)
	}

	sprite, err := loadSprite(cfg.Decal.Texture)
	if err != nil {
		return nil, err
	}

	p := decal.NewProjector()
	cfg.ApplyTo(p)
	p.Sprite = sprite
	p.Material = &models.Material{
		Name:       "decal",
		BaseColor:  [4]float64{1, 1, 1, 1},
		BaseMap:    sprite,
		HasTexture: true,
	}

	return &workspace{
		cfg:       cfg,
		log:       log,
		scene:     s,
		builder:   decal.NewBuilder(s, log.Named("decal")),
		projector: p,
		layer:     render.NewLayer(render.TextureFromImage(sprite)),
	}, nil
}

// rebuild regenerates the main decal layer and logs what it produced.
func (w *workspace) rebuild(ctx context.Context) (decal.Stats, error) {
	m, st, err := w.builder.BuildStats(ctx, w.projector)
	if err != nil {
		return st, err
	}
	if m.Empty() {
		w.layer.ClearDecalMesh()
	} else {
		w.layer.SetDecalMesh(m.Positions, m.Normals, m.UVs, m.Indices)
	}
	w.log.Info("decal rebuilt",
		zap.Int("candidates", st.Candidates),
		zap.Int("fragments", st.Fragments),
		zap.Int("triangles", st.Triangles),
		zap.Int("vertices", st.Vertices))
	return st, nil
}

// bounds returns the union of every object's world bounds.
func (w *workspace) bounds() geom.AABB {
	objs := w.scene.Objects()
	if len(objs) == 0 {
		return geom.FromCenterSize(math3d.Zero3(), math3d.V3(1, 1, 1))
	}
	b := objs[0].WorldBounds()
	for _, o := range objs[1:] {
		b = b.Union(o.WorldBounds())
	}
	return b
}

// draw renders the scene, the decal layers and optionally the projector
// gizmo.
func (w *workspace) draw(r *render.Rasterizer, lightDir math3d.Vec3, layers ...*render.Layer) {
	for _, o := range w.scene.Objects() {
		if !o.Enabled() {
			continue
		}
		r.DrawMesh(o.Geometry(), o.LocalToWorld(), render.RGB(180, 180, 190), lightDir)
	}
	w.layer.Draw(r, lightDir)
	for _, l := range layers {
		l.Draw(r, lightDir)
	}
	if w.cfg.Render.ShowBox {
		r.DrawBox(w.projector.LocalToWorld(), render.ColorYellow)
	}
}

// demoScene is a floor, a crate and a back wall.
func demoScene(layer int) []*scene.Object {
	floor := math3d.Translate(math3d.V3(0, 0, 0)).
		Mul(math3d.RotateX(-math.Pi / 2)).
		Mul(math3d.Scale(math3d.V3(4, 4, 1)))
	wall := math3d.Translate(math3d.V3(0, 1, -1.5)).
		Mul(math3d.Scale(math3d.V3(4, 2, 1)))
	crate := math3d.Translate(math3d.V3(0, 0.5, 0))

	return []*scene.Object{
		scene.NewObject("floor", models.NewQuad("floor"), floor).WithLayer(layer),
		scene.NewObject("wall", models.NewQuad("wall"), wall).WithLayer(layer),
		scene.NewObject("crate", models.NewBox("crate"), crate).WithLayer(layer),
	}
}

func loadSprite(path string) (image.Image, error) {
	if path == "" {
		return bulletHole(64), nil
	}
	img, err := render.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("load decal texture: %w", err)
	}
	return img, nil
}

// bulletHole draws a dark hole with a scorched rim fading to transparent.
func bulletHole(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size-1) / 2
	for y := range size {
		for x := range size {
			d := math.Hypot(float64(x)-c, float64(y)-c) / c
			switch {
			case d < 0.25:
				img.SetRGBA(x, y, color.RGBA{15, 10, 10, 255})
			case d < 1:
				a := uint8(220 * (1 - d) / 0.75)
				img.SetRGBA(x, y, color.RGBA{90, 40, 20, a})
			}
		}
	}
	return img
}

// scatter creates n projectors aimed at random points of the scene, each
// with its own layer.
func (w *workspace) scatter(n int, seed int64) ([]decal.Job, []*render.Layer) {
	rng := rand.New(rand.NewSource(seed))
	b := w.bounds()
	size := b.Size()

	jobs := make([]decal.Job, 0, n)
	layers := make([]*render.Layer, 0, n)
	for range n {
		p := decal.NewProjector()
		w.cfg.ApplyTo(p)
		p.Material = w.projector.Material
		p.Sprite = w.projector.Sprite
		p.Transform.Position = math3d.V3(
			b.Min.X+rng.Float64()*size.X,
			b.Min.Y+rng.Float64()*size.Y,
			b.Min.Z+rng.Float64()*size.Z,
		)
		p.Transform.Rotation = math3d.QuatFromEuler(
			(rng.Float64()-0.5)*math.Pi,
			rng.Float64()*2*math.Pi,
			rng.Float64()*2*math.Pi,
		)
		s := 0.2 + rng.Float64()*0.4
		p.Transform.Scale = math3d.V3(s, s, 0.5)

		l := render.NewLayer(w.layer.Texture)
		jobs = append(jobs, decal.Job{Projector: p, Target: l})
		layers = append(layers, l)
	}
	return jobs, layers
}
