package geom

import (
	"math"

	"github.com/taigrr/decal/pkg/math3d"
)

// minDenominator guards edge/plane intersection against division by a
// vanishing distance difference. Such edges are skipped.
const minDenominator = 1e-12

// ClipPolygon clips a convex polygon against a single plane, keeping the part
// on the positive side (points on the plane are kept). pos extracts the
// position used for the plane test, lerp interpolates every vertex attribute.
// The result is appended to dst[:0]; dst must not alias poly.
func ClipPolygon[V any](poly []V, pl Plane, pos func(V) math3d.Vec3, lerp func(a, b V, t float64) V, dst []V) []V {
	dst = dst[:0]
	n := len(poly)
	if n == 0 {
		return dst
	}

	prev := poly[n-1]
	prevD := pl.DistanceToPoint(pos(prev))
	for _, cur := range poly {
		curD := pl.DistanceToPoint(pos(cur))
		prevIn, curIn := prevD >= 0, curD >= 0

		if prevIn != curIn {
			denom := prevD - curD
			if math.Abs(denom) > minDenominator {
				dst = append(dst, lerp(prev, cur, prevD/denom))
			}
		}
		if curIn {
			dst = append(dst, cur)
		}
		prev, prevD = cur, curD
	}
	return dst
}

// ClipConvex clips poly against every plane in turn. a and b are scratch
// buffers reused between passes; the returned slice aliases one of them.
func ClipConvex[V any](poly []V, planes []Plane, pos func(V) math3d.Vec3, lerp func(a, b V, t float64) V, a, b []V) []V {
	cur := append(a[:0], poly...)
	next := b
	for _, pl := range planes {
		next = ClipPolygon(cur, pl, pos, lerp, next)
		if len(next) < 3 {
			return next[:0]
		}
		cur, next = next, cur
	}
	return cur
}

// FanTriangulate emits the triangles of a convex polygon with n vertices as
// index triples relative to the polygon, fanning from vertex 0.
func FanTriangulate(n int, emit func(a, b, c int)) {
	for i := 1; i+1 < n; i++ {
		emit(0, i, i+1)
	}
}
