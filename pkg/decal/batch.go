package decal

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job pairs a projector with the target that receives its mesh.
type Job struct {
	Projector *Projector
	Target    Target
}

// RebuildAll rebuilds independent projectors concurrently, with at most
// workers rebuilds in flight (unbounded when workers <= 0). The scene is only
// read. The first error cancels the remaining rebuilds and is returned.
func RebuildAll(ctx context.Context, b *Builder, jobs []Job, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, job := range jobs {
		g.Go(func() error {
			return b.Rebuild(ctx, job.Projector, job.Target)
		})
	}
	return g.Wait()
}
