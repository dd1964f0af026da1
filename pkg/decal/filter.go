package decal

import (
	"github.com/taigrr/decal/pkg/geom"
	"github.com/taigrr/decal/pkg/scene"
)

// Candidates asks q for objects overlapping box and keeps those that can
// receive a decal: enabled, on a layer selected by mask, not projectors
// themselves, and with world bounds overlapping box. Query order is kept.
// Untyped nil entries are skipped; q must not return typed nil pointers.
func Candidates(q scene.Query, box geom.AABB, mask scene.LayerMask) []scene.Renderable {
	found := q.FindIntersecting(box, mask)
	out := make([]scene.Renderable, 0, len(found))
	for _, r := range found {
		if r == nil || !r.Enabled() || r.HasProjector() {
			continue
		}
		if !mask.Contains(r.Layer()) || !r.WorldBounds().Intersects(box) {
			continue
		}
		out = append(out, r)
	}
	return out
}
