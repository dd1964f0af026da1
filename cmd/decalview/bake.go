package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/decal/pkg/decal"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/render"
)

type bakeFlags struct {
	output  string
	width   int
	height  int
	scatter int
	seed    int64
	workers int
}

func newBakeCmd(g *globalFlags) *cobra.Command {
	f := &bakeFlags{}
	cmd := &cobra.Command{
		Use:   "bake",
		Short: "Build the decal mesh once and optionally render a PNG preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.Render.Output = f.output
			}
			if flags.Changed("width") {
				cfg.Render.Width = f.width
			}
			if flags.Changed("height") {
				cfg.Render.Height = f.height
			}
			if flags.Changed("workers") {
				cfg.Decal.Workers = f.workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := newLogger(cfg, true)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			w, err := newWorkspace(cfg, log)
			if err != nil {
				return err
			}
			return runBake(cmd, w, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "write a PNG preview to this path")
	flags.IntVar(&f.width, "width", 0, "preview width in pixels")
	flags.IntVar(&f.height, "height", 0, "preview height in pixels")
	flags.IntVar(&f.scatter, "scatter", 0, "also bake this many randomly placed projectors")
	flags.Int64Var(&f.seed, "seed", 1, "random seed for --scatter")
	flags.IntVar(&f.workers, "workers", 0, "parallel rebuilds for --scatter (0 = unlimited)")
	return cmd
}

func runBake(cmd *cobra.Command, w *workspace, f *bakeFlags) error {
	ctx := cmd.Context()

	start := time.Now()
	st, err := w.rebuild(ctx)
	if err != nil {
		return fmt.Errorf("build decal: %w", err)
	}
	w.log.Debug("main projector built", zap.Duration("took", time.Since(start)))

	var layers []*render.Layer
	if f.scatter > 0 {
		var jobs []decal.Job
		jobs, layers = w.scatter(f.scatter, f.seed)
		start = time.Now()
		if err := decal.RebuildAll(ctx, w.builder, jobs, w.cfg.Decal.Workers); err != nil {
			return fmt.Errorf("scatter rebuild: %w", err)
		}
		var tris int
		for _, l := range layers {
			tris += l.Mesh().TriangleCount()
		}
		w.log.Info("scattered decals built",
			zap.Int("projectors", len(jobs)),
			zap.Int("triangles", tris),
			zap.Duration("took", time.Since(start)))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "decal: %d candidates, %d triangles, %d vertices\n",
		st.Candidates, st.Triangles, st.Vertices)

	out := w.cfg.Render.Output
	if out == "" {
		return nil
	}

	fb := render.NewFramebuffer(w.cfg.Render.Width, w.cfg.Render.Height)
	cam := render.NewCamera()
	cam.SetAspectRatio(float64(fb.Width) / float64(fb.Height))
	b := w.bounds()
	cam.Orbit(b.Center(), cam.FitDistance(b), math.Pi/6, -math.Pi/8)

	r := render.NewRasterizer(cam, fb)
	fb.Clear(render.RGB(30, 30, 40))
	w.draw(r, math3d.V3(0.5, 1, 0.3).Normalize(), layers...)

	if err := fb.SavePNG(out); err != nil {
		return err
	}
	w.log.Info("preview written", zap.String("path", out),
		zap.Int("meshes", r.Stats.MeshesDrawn),
		zap.Int("culled", r.Stats.MeshesCulled),
		zap.Int("decal_triangles", r.Stats.DecalTriangles))
	return nil
}
