package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/taigrr/decal/pkg/geom"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/models"
)

// R-tree branching factors.
const (
	minBranch = 4
	maxBranch = 16
)

// boundsPad widens every indexed box so flat geometry (zero thickness on an
// axis) is still a valid R-tree rectangle.
const boundsPad = 1e-6

// entry is the R-tree leaf for one object.
type entry struct {
	obj  *Object
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Scene is an in-memory collection of objects indexed by world bounds.
// Queries may run concurrently; mutations take an exclusive lock.
type Scene struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[*Object]*entry
	nextSeq uint64
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		tree:    rtreego.NewTree(3, minBranch, maxBranch),
		entries: make(map[*Object]*entry),
	}
}

// Add inserts objects into the scene. Adding an object twice is an error.
// Either every object is added or none is.
func (s *Scene) Add(objs ...*Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rects := make([]rtreego.Rect, len(objs))
	seen := make(map[*Object]struct{}, len(objs))
	for i, o := range objs {
		if _, ok := s.entries[o]; ok {
			return fmt.Errorf("object %q already in scene", o.name)
		}
		if _, ok := seen[o]; ok {
			return fmt.Errorf("object %q added twice", o.name)
		}
		seen[o] = struct{}{}
		rect, err := toRect(o.bounds)
		if err != nil {
			return fmt.Errorf("index object %q: %w", o.name, err)
		}
		rects[i] = rect
	}
	for i, o := range objs {
		o.seq = s.nextSeq
		s.nextSeq++
		s.insert(o, rects[i])
	}
	return nil
}

// AddNodes creates one object per loaded glTF node on the given layer and
// adds them to the scene.
func (s *Scene) AddNodes(nodes []models.Node, layer int) ([]*Object, error) {
	objs := make([]*Object, 0, len(nodes))
	for _, n := range nodes {
		objs = append(objs, NewObject(n.Name, n.Mesh, n.Transform).WithLayer(layer))
	}
	if err := s.Add(objs...); err != nil {
		return nil, err
	}
	return objs, nil
}

// Remove deletes an object. It reports whether the object was present.
func (s *Scene) Remove(o *Object) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[o]
	if !ok {
		return false
	}
	s.tree.Delete(e)
	delete(s.entries, o)
	return true
}

// SetTransform moves an object and re-indexes it. When the new bounds cannot
// be indexed the object keeps its old transform.
func (s *Scene) SetTransform(o *Object, m math3d.Mat4) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[o]
	if !ok {
		o.setTransform(m)
		return nil
	}
	old := *o
	o.setTransform(m)
	rect, err := toRect(o.bounds)
	if err != nil {
		*o = old
		return fmt.Errorf("move object %q: %w", o.name, err)
	}
	s.tree.Delete(e)
	s.insert(o, rect)
	return nil
}

// SetEnabled toggles whether an object is rendered.
func (s *Scene) SetEnabled(o *Object, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.enabled = enabled
}

// Len returns the number of objects in the scene.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Objects returns every object in insertion order.
func (s *Scene) Objects() []*Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objs := make([]*Object, 0, len(s.entries))
	for o := range s.entries {
		objs = append(objs, o)
	}
	sortBySeq(objs)
	return objs
}

// FindIntersecting returns the enabled objects on a layer selected by mask
// whose world bounds overlap box, in insertion order.
func (s *Scene) FindIntersecting(box geom.AABB, mask LayerMask) []Renderable {
	rect, err := toRect(box)
	if err != nil {
		return nil
	}

	s.mu.RLock()
	hits := s.tree.SearchIntersect(rect)
	objs := make([]*Object, 0, len(hits))
	for _, h := range hits {
		o := h.(*entry).obj
		if o.enabled && mask.Contains(o.layer) && o.bounds.Intersects(box) {
			objs = append(objs, o)
		}
	}
	s.mu.RUnlock()

	sortBySeq(objs)
	out := make([]Renderable, len(objs))
	for i, o := range objs {
		out[i] = o
	}
	return out
}

func (s *Scene) insert(o *Object, rect rtreego.Rect) {
	e := &entry{obj: o, rect: rect}
	s.tree.Insert(e)
	s.entries[o] = e
}

func sortBySeq(objs []*Object) {
	slices.SortFunc(objs, func(a, b *Object) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
}

// toRect converts a box to a padded R-tree rectangle.
func toRect(b geom.AABB) (rtreego.Rect, error) {
	if !b.Min.IsFinite() || !b.Max.IsFinite() {
		return rtreego.Rect{}, fmt.Errorf("non-finite bounds %v", b)
	}
	b = b.Expand(boundsPad)
	size := b.Size()
	p := rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z}
	lengths := []float64{
		max(size.X, 2*boundsPad),
		max(size.Y, 2*boundsPad),
		max(size.Z, 2*boundsPad),
	}
	return rtreego.NewRect(p, lengths)
}
