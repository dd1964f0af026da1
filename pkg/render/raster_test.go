package render

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/taigrr/decal/pkg/decal"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/models"
	"github.com/taigrr/decal/pkg/scene"
)

// createTestRasterizer creates a rasterizer looking at the origin from +Z.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetFOV(math.Pi / 3)
	return NewRasterizer(camera, fb), fb
}

var towardCamera = math3d.V3(0, 0, 1)

func TestBarycentric(t *testing.T) {
	tests := []struct {
		name     string
		px, py   float64
		expected math3d.Vec3
	}{
		{"vertex 0", 0, 0, math3d.V3(1, 0, 0)},
		{"vertex 1", 1, 0, math3d.V3(0, 1, 0)},
		{"vertex 2", 0, 1, math3d.V3(0, 0, 1)},
		{"centroid", 1.0 / 3, 1.0 / 3, math3d.V3(1.0/3, 1.0/3, 1.0/3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bc := barycentric(0, 0, 1, 0, 0, 1, tc.px, tc.py)
			if !bc.ApproxEqual(tc.expected, 0.001) {
				t.Errorf("barycentric(%v, %v) = %v, want %v", tc.px, tc.py, bc, tc.expected)
			}
		})
	}
}

func TestDrawMeshFacingCamera(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	fb.Clear(ColorBlack)

	r.DrawMesh(models.NewQuad("quad"), math3d.ScaleUniform(4), ColorGray, towardCamera)

	if got := fb.GetPixel(50, 50); got != ColorGray {
		t.Errorf("center pixel = %v, want %v", got, ColorGray)
	}
	if got := fb.GetPixel(2, 2); got != ColorBlack {
		t.Errorf("corner pixel = %v, want background", got)
	}
	if r.getDepth(50, 50) == math.MaxFloat64 {
		t.Error("depth was not written")
	}
	if r.Stats.MeshesDrawn != 1 {
		t.Errorf("MeshesDrawn = %d, want 1", r.Stats.MeshesDrawn)
	}
}

func TestDrawMeshBackfaceCulling(t *testing.T) {
	away := math3d.RotateY(math.Pi).Mul(math3d.ScaleUniform(4))

	r, fb := createTestRasterizer(100, 100)
	fb.Clear(ColorBlack)
	r.DrawMesh(models.NewQuad("quad"), away, ColorWhite, towardCamera)
	if got := fb.GetPixel(50, 50); got != ColorBlack {
		t.Errorf("back face was drawn: %v", got)
	}

	r.CullBackfaces = false
	r.DrawMesh(models.NewQuad("quad"), away, ColorWhite, towardCamera)
	if got := fb.GetPixel(50, 50); got == ColorBlack {
		t.Error("double sided quad was not drawn")
	}
}

func TestDrawMeshFrustumCulled(t *testing.T) {
	r, _ := createTestRasterizer(40, 40)
	r.DrawMesh(models.NewBox("behind"), math3d.Translate(math3d.V3(0, 0, 50)), ColorWhite, towardCamera)
	r.DrawMesh(nil, math3d.Identity(), ColorWhite, towardCamera)

	if r.Stats.MeshesTested != 2 || r.Stats.MeshesCulled != 2 || r.Stats.MeshesDrawn != 0 {
		t.Errorf("stats = %+v, want 2 tested and 2 culled", r.Stats)
	}
	r.ResetStats()
	if r.Stats != (Stats{}) {
		t.Error("ResetStats did not clear counters")
	}
}

func solidTexture(c Color) *Texture {
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, c)
	return tex
}

func buildDecal(t *testing.T, surface *scene.Object) *decal.Mesh {
	t.Helper()
	s := scene.New()
	if err := s.Add(surface); err != nil {
		t.Fatal(err)
	}
	p := decal.NewProjector()
	p.Material = &models.Material{Name: "decal"}
	p.Sprite = image.NewRGBA(image.Rect(0, 0, 1, 1))
	p.Transform.Scale = math3d.V3(2, 2, 1)

	m, err := decal.NewBuilder(s, nil).Build(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if m.Empty() {
		t.Fatal("expected decal geometry")
	}
	return m
}

func TestDrawDecalOverSurface(t *testing.T) {
	quad := models.NewQuad("wall")
	xf := math3d.ScaleUniform(4)
	m := buildDecal(t, scene.NewObject("wall", quad, xf))

	tests := []struct {
		name string
		tex  Color
		want Color
	}{
		{"opaque", RGB(255, 0, 0), RGB(255, 0, 0)},
		{"transparent", RGBA(255, 0, 0, 0), ColorGray},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(100, 100)
			fb.Clear(ColorBlack)
			r.DrawMesh(quad, xf, ColorGray, towardCamera)
			r.DrawDecal(m, solidTexture(tc.tex), towardCamera)

			if got := fb.GetPixel(50, 50); got != tc.want {
				t.Errorf("center pixel = %v, want %v", got, tc.want)
			}
			if got := fb.GetPixel(50, 38); got != ColorGray {
				t.Errorf("pixel outside decal = %v, want surface", got)
			}
			if r.Stats.DecalTriangles == 0 {
				t.Error("no decal triangles drawn")
			}
		})
	}
}

func TestDrawDecalOccluded(t *testing.T) {
	quad := models.NewQuad("wall")
	m := buildDecal(t, scene.NewObject("wall", quad, math3d.ScaleUniform(4)))

	r, fb := createTestRasterizer(100, 100)
	fb.Clear(ColorBlack)
	// Opaque blocker between camera and decal
	r.DrawMesh(quad, math3d.Translate(math3d.V3(0, 0, 2)).Mul(math3d.ScaleUniform(4)), ColorGray, towardCamera)
	r.DrawDecal(m, solidTexture(RGB(255, 0, 0)), towardCamera)

	if got := fb.GetPixel(50, 50); got != ColorGray {
		t.Errorf("occluded decal visible: %v", got)
	}
}

func TestDrawBox(t *testing.T) {
	r, fb := createTestRasterizer(80, 80)
	fb.Clear(ColorBlack)
	r.DrawBox(math3d.ScaleUniform(2), ColorYellow)

	count := 0
	for _, p := range fb.Pixels {
		if p == ColorYellow {
			count++
		}
	}
	if count == 0 {
		t.Error("DrawBox drew nothing")
	}
	if got := fb.GetPixel(40, 40); got != ColorBlack {
		t.Errorf("wireframe filled the center: %v", got)
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	r.setDepth(5, 5, 1.0)
	if r.getDepth(5, 5) != 1.0 {
		t.Error("setDepth/getDepth failed")
	}

	r.ClearDepth()
	if r.getDepth(5, 5) != math.MaxFloat64 {
		t.Error("ClearDepth should reset to MaxFloat64")
	}
}

func TestRasterizerDepthBoundsCheck(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	if r.getDepth(-1, 0) != math.MaxFloat64 {
		t.Error("Out of bounds getDepth should return MaxFloat64")
	}
	if r.getDepth(100, 0) != math.MaxFloat64 {
		t.Error("Out of bounds getDepth should return MaxFloat64")
	}
	r.setDepth(-1, 0, 1.0)
	r.setDepth(100, 0, 1.0)
}

func TestBlendPixel(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	fb.Clear(color.RGBA{0, 0, 200, 255})

	fb.BlendPixel(0, 0, color.RGBA{255, 0, 0, 0})
	if got := fb.GetPixel(0, 0); got != (color.RGBA{0, 0, 200, 255}) {
		t.Errorf("transparent blend changed pixel: %v", got)
	}

	fb.BlendPixel(0, 0, color.RGBA{255, 0, 0, 255})
	if got := fb.GetPixel(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("opaque blend = %v", got)
	}

	fb.Clear(color.RGBA{0, 0, 0, 255})
	fb.BlendPixel(0, 0, color.RGBA{255, 255, 255, 51})
	got := fb.GetPixel(0, 0)
	if got.R != 51 || got.A != 255 {
		t.Errorf("20%% white over black = %v, want R=51 A=255", got)
	}
	fb.BlendPixel(5, 5, ColorWhite)
}

func BenchmarkDrawMesh(b *testing.B) {
	r, fb := createTestRasterizer(160, 90)
	box := models.NewBox("box")
	xf := math3d.RotateY(0.5).Mul(math3d.ScaleUniform(4))

	for b.Loop() {
		fb.Clear(ColorBlack)
		r.ClearDepth()
		r.DrawMesh(box, xf, ColorGray, towardCamera)
	}
}
