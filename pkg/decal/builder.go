package decal

import (
	"context"

	"go.uber.org/zap"

	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/scene"
)

// Target receives finished decal meshes, typically a renderer layer.
type Target interface {
	SetDecalMesh(positions, normals []math3d.Vec3, uvs []math3d.Vec2, indices []int)
	ClearDecalMesh()
}

// Stats describes one build.
type Stats struct {
	Candidates int // objects passing the candidate filter
	Fragments  int // objects contributing geometry
	Triangles  int
	Vertices   int
}

// Builder runs the decal pipeline against a scene. A Builder only reads the
// scene and is safe for concurrent use when the scene query is.
type Builder struct {
	scene  scene.Query
	logger *zap.Logger
}

// NewBuilder creates a builder over q. A nil logger disables logging.
func NewBuilder(q scene.Query, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{scene: q, logger: logger}
}

// Build computes the decal mesh for p. It returns nil when the projector has
// no material or sprite, its scale is degenerate, or nothing survives
// clipping. An error is returned only when ctx is cancelled.
func (b *Builder) Build(ctx context.Context, p *Projector) (*Mesh, error) {
	m, _, err := b.BuildStats(ctx, p)
	return m, err
}

// BuildStats is Build that also reports what the build did.
func (b *Builder) BuildStats(ctx context.Context, p *Projector) (*Mesh, Stats, error) {
	var st Stats
	if !p.Ready() {
		b.logger.Debug("projector has no material or sprite, skipping")
		return nil, st, nil
	}
	if p.Transform.Degenerate() {
		b.logger.Debug("projector scale is degenerate, skipping",
			zap.Float64("sx", p.Transform.Scale.X),
			zap.Float64("sy", p.Transform.Scale.Y),
			zap.Float64("sz", p.Transform.Scale.Z))
		return nil, st, nil
	}

	box := Bounds(p.Transform)
	candidates := Candidates(b.scene, box, p.AffectedLayers)
	st.Candidates = len(candidates)

	scratch := scratchPool.Get().(*Scratch)
	defer scratchPool.Put(scratch)

	facing := p.Facing()
	fragments := make([]*Fragment, 0, len(candidates))
	for _, obj := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, st, err
		}
		f := Clip(obj, p, scratch)
		if f == nil {
			continue
		}
		Push(f, facing, p.PushDistance)
		fragments = append(fragments, f)
		st.Triangles += f.TriangleCount()
	}
	st.Fragments = len(fragments)

	m := Assemble(fragments)
	st.Vertices = m.VertexCount()

	b.logger.Debug("decal built",
		zap.Int("candidates", st.Candidates),
		zap.Int("fragments", st.Fragments),
		zap.Int("triangles", st.Triangles),
		zap.Int("vertices", st.Vertices))
	return m, st, nil
}

// Rebuild builds p and hands the result to target, clearing it when there is
// no geometry. On error the target is left untouched.
func (b *Builder) Rebuild(ctx context.Context, p *Projector, target Target) error {
	m, err := b.Build(ctx, p)
	if err != nil {
		return err
	}
	if m.Empty() {
		target.ClearDecalMesh()
		return nil
	}
	target.SetDecalMesh(m.Positions, m.Normals, m.UVs, m.Indices)
	return nil
}
