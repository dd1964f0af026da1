package render

import (
	"math"

	"github.com/taigrr/decal/pkg/decal"
	"github.com/taigrr/decal/pkg/geom"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/models"
)

// DefaultDecalBias is the NDC depth bias that lets decal pixels win the depth
// test against the surface they were projected onto.
const DefaultDecalBias = 1e-4

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // world
	Normal   math3d.Vec3
	UV       math3d.Vec2
	Color    Color
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// Stats counts what the rasterizer drew since the last ResetStats.
type Stats struct {
	MeshesTested   int
	MeshesCulled   int
	MeshesDrawn    int
	DecalTriangles int
}

// Rasterizer draws lit meshes, textured decal layers and wireframe gizmos
// into a framebuffer with a depth buffer.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64

	// CullBackfaces skips scene triangles wound clockwise on screen.
	// Decals are always drawn double sided.
	CullBackfaces bool
	DecalBias     float64
	Stats         Stats
}

// NewRasterizer creates a rasterizer drawing from camera into fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:        camera,
		fb:            fb,
		CullBackfaces: true,
		DecalBias:     DefaultDecalBias,
	}
	r.Resize()
	return r
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets the depth buffer. Call before each frame.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	// copy-doubling fill
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// ResetStats zeroes the draw counters.
func (r *Rasterizer) ResetStats() {
	r.Stats = Stats{}
}

func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64
	Z    float64 // NDC depth
	W    float64
}

// toScreen projects the triangle. ok is false when any vertex is at or
// behind the camera plane.
func (r *Rasterizer) toScreen(tri *Triangle) (sv [3]screenVertex, ok bool) {
	viewProj := r.camera.ViewProjectionMatrix()
	for i := range 3 {
		clip := viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))
		if clip.W <= 1e-9 {
			return sv, false
		}
		ndc := clip.PerspectiveDivide()
		sv[i] = screenVertex{
			X: (ndc.X + 1) * 0.5 * float64(r.Width()),
			Y: (1 - ndc.Y) * 0.5 * float64(r.Height()),
			Z: ndc.Z,
			W: clip.W,
		}
	}
	return sv, true
}

// screenArea returns twice the signed screen-space area. With Y pointing down
// counter-clockwise world triangles facing the camera are negative.
func screenArea(sv [3]screenVertex) float64 {
	e1x, e1y := sv[1].X-sv[0].X, sv[1].Y-sv[0].Y
	e2x, e2y := sv[2].X-sv[0].X, sv[2].Y-sv[0].Y
	return e1x*e2y - e1y*e2x
}

// rasterize walks the pixels covered by sv and calls shade for each one that
// passes the depth test. bias is subtracted from the depth before testing.
func (r *Rasterizer) rasterize(sv [3]screenVertex, bias float64, shade func(x, y int, bc math3d.Vec3, z float64)) {
	if math.Abs(screenArea(sv)) < 1e-12 {
		return
	}
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			bc := barycentric(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y, sv[2].X, sv[2].Y, px, py)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}
			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z - bias
			if z >= r.getDepth(x, y) {
				continue
			}
			shade(x, y, bc, z)
		}
	}
}

func lambert(n, light math3d.Vec3) float64 {
	return 0.3 + 0.7*math.Max(0, n.Dot(light))
}

// DrawTriangle rasterizes a triangle with Gouraud shading: lighting is
// computed per vertex and interpolated.
func (r *Rasterizer) DrawTriangle(tri Triangle, lightDir math3d.Vec3) {
	sv, ok := r.toScreen(&tri)
	if !ok {
		return
	}
	if r.CullBackfaces && screenArea(sv) > 0 {
		return
	}

	light := lightDir.Normalize()
	var lit [3]Color
	for i := range 3 {
		lit[i] = MultiplyColor(tri.V[i].Color, lambert(tri.V[i].Normal, light))
	}

	r.rasterize(sv, 0, func(x, y int, bc math3d.Vec3, z float64) {
		r.setDepth(x, y, z)
		r.fb.SetPixel(x, y, interpolateColor3(lit[0], lit[1], lit[2], bc))
	})
}

// DrawDecalTriangle rasterizes a textured triangle with perspective-correct
// UVs. Texels are alpha blended over the framebuffer and do not write depth.
func (r *Rasterizer) DrawDecalTriangle(tri Triangle, tex *Texture, lightDir math3d.Vec3) {
	sv, ok := r.toScreen(&tri)
	if !ok {
		return
	}

	light := lightDir.Normalize()
	var invW, shade [3]float64
	for i := range 3 {
		invW[i] = 1 / sv[i].W
		shade[i] = lambert(tri.V[i].Normal, light)
	}

	r.rasterize(sv, r.DecalBias, func(x, y int, bc math3d.Vec3, _ float64) {
		w0, w1, w2 := bc.X*invW[0], bc.Y*invW[1], bc.Z*invW[2]
		sum := w0 + w1 + w2
		if sum == 0 {
			return
		}
		u := (w0*tri.V[0].UV.X + w1*tri.V[1].UV.X + w2*tri.V[2].UV.X) / sum
		v := (w0*tri.V[0].UV.Y + w1*tri.V[1].UV.Y + w2*tri.V[2].UV.Y) / sum
		intensity := bc.X*shade[0] + bc.Y*shade[1] + bc.Z*shade[2]
		r.fb.BlendPixel(x, y, MultiplyColor(tex.Sample(u, v), intensity))
	})
	r.Stats.DecalTriangles++
}

// DrawMesh renders a mesh placed by transform, skipping it when its bounds
// are outside the view frustum. Face materials override color.
func (r *Rasterizer) DrawMesh(mesh *models.Mesh, transform math3d.Mat4, color Color, lightDir math3d.Vec3) {
	r.Stats.MeshesTested++
	if mesh == nil || mesh.VertexCount() == 0 {
		r.Stats.MeshesCulled++
		return
	}
	if !r.camera.Frustum().IntersectAABB(mesh.Bounds().Transform(transform)) {
		r.Stats.MeshesCulled++
		return
	}
	r.Stats.MeshesDrawn++

	normalMat := transform.Inverse()
	for i, face := range mesh.Faces {
		c := color
		if mat := mesh.GetMaterial(mesh.GetFaceMaterial(i)); mat != nil {
			c = RGB(
				uint8(mat.BaseColor[0]*255),
				uint8(mat.BaseColor[1]*255),
				uint8(mat.BaseColor[2]*255),
			)
		}
		var tri Triangle
		for k, vi := range face.V {
			pos, n, uv := mesh.GetVertex(vi)
			tri.V[k] = Vertex{
				Position: transform.MulVec3(pos),
				Normal:   normalMat.MulNormal(n),
				UV:       uv,
				Color:    c,
			}
		}
		r.DrawTriangle(tri, lightDir)
	}
}

// DrawDecal renders a combined decal mesh (world space) textured with tex.
func (r *Rasterizer) DrawDecal(m *decal.Mesh, tex *Texture, lightDir math3d.Vec3) {
	if m.Empty() || tex == nil {
		return
	}
	if !r.camera.Frustum().IntersectAABB(geom.FromPoints(m.Positions)) {
		return
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		var tri Triangle
		for k := range 3 {
			idx := m.Indices[i+k]
			tri.V[k] = Vertex{Position: m.Positions[idx], Normal: m.Normals[idx], UV: m.UVs[idx]}
		}
		r.DrawDecalTriangle(tri, tex, lightDir)
	}
}

// boxEdges are the 12 edges of a cube given as corner indices in the order
// returned by geom.AABB.Corners.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// DrawBox draws the unit cube [-0.5, 0.5]^3 placed by transform as a
// wireframe, ignoring depth. Used to show projector volumes.
func (r *Rasterizer) DrawBox(transform math3d.Mat4, color Color) {
	cube := geom.NewAABB(math3d.V3(-0.5, -0.5, -0.5), math3d.V3(0.5, 0.5, 0.5))
	corners := cube.Corners()
	for i := range corners {
		corners[i] = transform.MulVec3(corners[i])
	}
	for _, e := range boxEdges {
		r.DrawLine3D(corners[e[0]], corners[e[1]], color)
	}
}

// DrawLine3D projects a world-space segment and draws it. Segments with an
// endpoint behind the camera are skipped.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	clipA := viewProj.MulVec4(math3d.V4FromV3(a, 1))
	clipB := viewProj.MulVec4(math3d.V4FromV3(b, 1))
	if clipA.W <= 0 || clipB.W <= 0 {
		return
	}
	na, nb := clipA.PerspectiveDivide(), clipB.PerspectiveDivide()

	x0 := int((na.X + 1) * 0.5 * float64(r.Width()))
	y0 := int((1 - na.Y) * 0.5 * float64(r.Height()))
	x1 := int((nb.X + 1) * 0.5 * float64(r.Width()))
	y1 := int((1 - nb.Y) * 0.5 * float64(r.Height()))
	r.fb.DrawLine(x0, y0, x1, y1, color)
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		channel(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		channel(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		channel(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
