package decal

import (
	"math"
	"sync"

	"github.com/taigrr/decal/pkg/geom"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/scene"
)

// Epsilon is the tolerance for box containment, in projector-local units.
const Epsilon = 1e-5

// WeldDistance is the grid step, in world units, below which vertices of one
// fragment are merged.
const WeldDistance = 1e-5

// angleTolerance absorbs acos rounding so a surface exactly at MaxAngle
// passes.
const angleTolerance = 1e-6

// minArea rejects triangles whose cross product is too small to give a
// usable normal.
const minArea = 1e-12

// normalStep quantizes normals when welding.
const normalStep = 1e-3

// halfExtent is the half size of the projector box.
const halfExtent = 0.5

var cubePlanes = geom.UnitCubePlanes(halfExtent)

// Vertex is one vertex of a clipped fragment.
type Vertex struct {
	Position math3d.Vec3 // world space
	Normal   math3d.Vec3 // world space, unit length
	UV       math3d.Vec2
	Local    math3d.Vec3 // projector-local position before pushing
}

// Fragment is the clipped geometry one object contributes to a decal.
// Indices are triangle triples into Vertices.
type Fragment struct {
	Source   string
	Vertices []Vertex
	Indices  []int
}

// TriangleCount returns the number of triangles.
func (f *Fragment) TriangleCount() int {
	if f == nil {
		return 0
	}
	return len(f.Indices) / 3
}

// clipVertex carries every attribute interpolated while clipping.
type clipVertex struct {
	local  math3d.Vec3
	world  math3d.Vec3
	normal math3d.Vec3
}

func clipPos(v clipVertex) math3d.Vec3 { return v.local }

func clipLerp(a, b clipVertex, t float64) clipVertex {
	return clipVertex{
		local:  a.local.Lerp(b.local, t),
		world:  a.world.Lerp(b.world, t),
		normal: a.normal.Lerp(b.normal, t),
	}
}

type weldKey [6]int64

// Scratch holds the working buffers of one rebuild. A Scratch must not be
// shared between concurrent rebuilds.
type Scratch struct {
	a, b []clipVertex
	idx  []int
	weld map[weldKey]int
}

// NewScratch allocates buffers sized for a triangle clipped by six planes.
func NewScratch() *Scratch {
	return &Scratch{
		a:    make([]clipVertex, 0, 16),
		b:    make([]clipVertex, 0, 16),
		idx:  make([]int, 0, 16),
		weld: make(map[weldKey]int),
	}
}

var scratchPool = sync.Pool{
	New: func() any { return NewScratch() },
}

// Clip intersects the triangles of obj with the projector box. Triangles
// facing away from the projector by more than p.MaxAngle are dropped, as are
// zero-area triangles. The result has world positions and normals, UVs from
// ProjectUV, and nearly identical vertices welded. Clip returns nil when
// nothing survives. scratch may be nil.
func Clip(obj scene.Renderable, p *Projector, scratch *Scratch) *Fragment {
	mesh := obj.Geometry()
	if mesh == nil || len(mesh.Faces) == 0 {
		return nil
	}
	worldToProj, ok := p.WorldToLocal()
	if !ok {
		return nil
	}
	if scratch == nil {
		scratch = NewScratch()
	}
	clear(scratch.weld)

	objToWorld := obj.LocalToWorld()
	normalMat := obj.WorldToLocal()
	facing := p.Facing()
	planes := cubePlanes[:]

	f := &Fragment{Source: obj.Name()}
	var tri [3]clipVertex

faces:
	for _, face := range mesh.Faces {
		for k, vi := range face.V {
			if vi < 0 || vi >= len(mesh.Vertices) {
				continue faces
			}
			v := mesh.Vertices[vi]
			world := objToWorld.MulVec3(v.Position)
			tri[k] = clipVertex{
				local:  worldToProj.MulVec3(world),
				world:  world,
				normal: normalMat.MulNormal(v.Normal),
			}
		}

		n, ok := faceNormal(tri)
		if !ok || !facesProjector(n, facing, p.MaxAngle) || outsideBox(tri) {
			continue
		}

		poly := tri[:]
		if !insideBox(tri) {
			poly = geom.ClipConvex(poly, planes, clipPos, clipLerp, scratch.a, scratch.b)
		}
		if len(poly) < 3 {
			continue
		}

		idx := scratch.idx[:0]
		for _, cv := range poly {
			idx = append(idx, f.addVertex(cv, n, scratch.weld))
		}
		scratch.idx = idx
		geom.FanTriangulate(len(idx), func(a, b, c int) {
			ia, ib, ic := idx[a], idx[b], idx[c]
			if ia == ib || ib == ic || ia == ic {
				return
			}
			f.Indices = append(f.Indices, ia, ib, ic)
		})
	}

	if len(f.Indices) == 0 {
		return nil
	}
	return f
}

// addVertex appends cv unless a welded twin exists, returning its index.
func (f *Fragment) addVertex(cv clipVertex, faceN math3d.Vec3, weld map[weldKey]int) int {
	n := cv.normal.Normalize()
	if n.LenSq() == 0 || !n.IsFinite() {
		n = faceN
	}
	key := weldKey{
		quantize(cv.world.X, WeldDistance), quantize(cv.world.Y, WeldDistance), quantize(cv.world.Z, WeldDistance),
		quantize(n.X, normalStep), quantize(n.Y, normalStep), quantize(n.Z, normalStep),
	}
	if i, ok := weld[key]; ok {
		return i
	}
	i := len(f.Vertices)
	f.Vertices = append(f.Vertices, Vertex{
		Position: cv.world,
		Normal:   n,
		UV:       ProjectUV(cv.local),
		Local:    cv.local,
	})
	weld[key] = i
	return i
}

func quantize(x, step float64) int64 {
	return int64(math.Round(x / step))
}

// faceNormal returns the world-space unit normal of the triangle, oriented to
// agree with its vertex normals when they are present so the result does not
// depend on winding. ok is false for zero-area triangles.
func faceNormal(tri [3]clipVertex) (math3d.Vec3, bool) {
	e1 := tri[1].world.Sub(tri[0].world)
	e2 := tri[2].world.Sub(tri[0].world)
	c := e1.Cross(e2)
	l := c.Len()
	if l < minArea || !c.IsFinite() {
		return math3d.Vec3{}, false
	}
	n := c.Scale(1 / l)
	avg := tri[0].normal.Add(tri[1].normal).Add(tri[2].normal)
	if avg.Dot(n) < 0 {
		n = n.Negate()
	}
	return n, true
}

// facesProjector reports whether the angle between the surface normal and
// the facing axis is within maxAngle degrees.
func facesProjector(n, facing math3d.Vec3, maxAngle float64) bool {
	deg := n.Angle(facing) * 180 / math.Pi
	return deg <= maxAngle+angleTolerance
}

// outsideBox reports whether all three vertices lie beyond the same face of
// the box.
func outsideBox(tri [3]clipVertex) bool {
	lim := halfExtent + Epsilon
	for axis := range 3 {
		a := tri[0].local.Component(axis)
		b := tri[1].local.Component(axis)
		c := tri[2].local.Component(axis)
		if min(a, b, c) > lim || max(a, b, c) < -lim {
			return true
		}
	}
	return false
}

// insideBox reports whether every vertex is within the box.
func insideBox(tri [3]clipVertex) bool {
	lim := halfExtent + Epsilon
	for _, v := range tri {
		if math.Abs(v.local.X) > lim || math.Abs(v.local.Y) > lim || math.Abs(v.local.Z) > lim {
			return false
		}
	}
	return true
}
