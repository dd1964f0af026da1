package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/decal/pkg/decal"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/render"
)

const viewHelp = "arrows/hjkl move  z/x depth  q/e roll  [/] size  wasd orbit  b box  r reset  esc quit"

func newViewCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Move a decal projector around the scene in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			w, err := newWorkspace(cfg, log)
			if err != nil {
				return err
			}
			return runView(cmd.Context(), w)
		},
	}
}

// smoothed follows a target value with a critically damped spring.
type smoothed struct {
	Value  float64
	Target float64
	vel    float64
	spring harmonica.Spring
}

func newSmoothed(fps int, v float64) smoothed {
	return smoothed{
		Value:  v,
		Target: v,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
	}
}

// Update advances one frame. Values within a hair of the target snap to it
// so the rebuild trigger goes quiet once motion settles.
func (s *smoothed) Update() {
	s.Value, s.vel = s.spring.Update(s.Value, s.vel, s.Target)
	if math.Abs(s.Value-s.Target) < 1e-4 && math.Abs(s.vel) < 1e-3 {
		s.Value, s.vel = s.Target, 0
	}
}

// projectorMotion holds spring-smoothed projector controls. Yaw and pitch
// come from the configured rotation and stay fixed; roll spins the decal
// around its facing axis.
type projectorMotion struct {
	X, Y, Z, Roll, Size smoothed
	base                math3d.Transform
}

func newProjectorMotion(fps int, t math3d.Transform) *projectorMotion {
	return &projectorMotion{
		X:    newSmoothed(fps, t.Position.X),
		Y:    newSmoothed(fps, t.Position.Y),
		Z:    newSmoothed(fps, t.Position.Z),
		Roll: newSmoothed(fps, 0),
		Size: newSmoothed(fps, 1),
		base: t,
	}
}

func (m *projectorMotion) axes() []*smoothed {
	return []*smoothed{&m.X, &m.Y, &m.Z, &m.Roll, &m.Size}
}

func (m *projectorMotion) Update() {
	for _, a := range m.axes() {
		a.Update()
	}
}

func (m *projectorMotion) Reset() {
	m.X.Target = m.base.Position.X
	m.Y.Target = m.base.Position.Y
	m.Z.Target = m.base.Position.Z
	m.Roll.Target = 0
	m.Size.Target = 1
}

// Transform returns the current smoothed projector transform.
func (m *projectorMotion) Transform() math3d.Transform {
	roll := math3d.QuatFromAxisAngle(math3d.Back(), m.Roll.Value)
	return math3d.Transform{
		Position: math3d.V3(m.X.Value, m.Y.Value, m.Z.Value),
		Rotation: m.base.Rotation.Mul(roll),
		Scale:    math3d.V3(m.base.Scale.X*m.Size.Value, m.base.Scale.Y*m.Size.Value, m.base.Scale.Z),
	}
}

// orbit is the viewer camera position around the scene centre.
type orbit struct {
	yaw, pitch, radius float64
}

// viewer is the interactive terminal session.
type viewer struct {
	w       *workspace
	term    *uv.Terminal
	camera  *render.Camera
	fb      *render.Framebuffer
	raster  *render.Rasterizer
	motion  *projectorMotion
	trigger decal.Trigger
	orbit   orbit
	home    orbit
	stats   decal.Stats
	width   int
	height  int
}

func runView(ctx context.Context, w *workspace) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = term.Shutdown(sctx)
	}()
	term.EnterAltScreen()
	term.HideCursor()

	fps := w.cfg.Render.FPS
	v := &viewer{
		w:       w,
		term:    term,
		camera:  render.NewCamera(),
		motion:  newProjectorMotion(fps, w.projector.Transform),
		trigger: decal.Trigger{Mode: w.cfg.TriggerMode()},
	}
	b := w.bounds()
	v.home = orbit{yaw: math.Pi / 6, pitch: -math.Pi / 8, radius: v.camera.FitDistance(b)}
	v.orbit = v.home
	v.resize(width, height)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !v.handle(ev) {
				return nil
			}
		case <-ticker.C:
			if err := v.frame(ctx); err != nil {
				return err
			}
		}
	}
}

func (v *viewer) resize(width, height int) {
	v.width, v.height = width, height
	_ = v.term.Resize(width, height)

	// Last row is the status line; each cell holds two pixel rows.
	fbh := max((height-1)*2, 2)
	v.fb = render.NewFramebuffer(max(width, 1), fbh)
	v.raster = render.NewRasterizer(v.camera, v.fb)
	v.camera.SetAspectRatio(float64(v.fb.Width) / float64(v.fb.Height))
}

// handle applies one input event. It returns false when the viewer should
// exit.
func (v *viewer) handle(ev uv.Event) bool {
	const (
		step     = 0.05
		rollStep = math.Pi / 12
		turn     = math.Pi / 24
	)
	m := v.motion

	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.term.Erase()
		v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("esc", "ctrl+c"):
			return false
		case ev.MatchString("left", "h"):
			m.X.Target -= step
		case ev.MatchString("right", "l"):
			m.X.Target += step
		case ev.MatchString("up", "k"):
			m.Y.Target += step
		case ev.MatchString("down", "j"):
			m.Y.Target -= step
		case ev.MatchString("z"):
			m.Z.Target -= step
		case ev.MatchString("x"):
			m.Z.Target += step
		case ev.MatchString("q"):
			m.Roll.Target += rollStep
		case ev.MatchString("e"):
			m.Roll.Target -= rollStep
		case ev.MatchString("["):
			m.Size.Target = math.Max(0.1, m.Size.Target-0.1)
		case ev.MatchString("]"):
			m.Size.Target = math.Min(5, m.Size.Target+0.1)
		case ev.MatchString("a"):
			v.orbit.yaw -= turn
		case ev.MatchString("d"):
			v.orbit.yaw += turn
		case ev.MatchString("w"):
			v.orbit.pitch -= turn
		case ev.MatchString("s"):
			v.orbit.pitch += turn
		case ev.MatchString("+", "="):
			v.orbit.radius = math.Max(0.5, v.orbit.radius*0.9)
		case ev.MatchString("-"):
			v.orbit.radius *= 1.1
		case ev.MatchString("b"):
			v.w.cfg.Render.ShowBox = !v.w.cfg.Render.ShowBox
		case ev.MatchString("r"):
			m.Reset()
			v.orbit = v.home
		}
	}
	return true
}

// frame advances the springs, rebuilds the decal when the trigger fires and
// draws one frame.
func (v *viewer) frame(ctx context.Context) error {
	v.motion.Update()
	t := v.motion.Transform()
	v.w.projector.Transform = t

	if v.trigger.NeedsRebuild(t) {
		st, err := v.w.rebuild(ctx)
		if err != nil {
			return err
		}
		v.stats = st
	}

	v.camera.Orbit(v.w.bounds().Center(), v.orbit.radius, v.orbit.yaw, v.orbit.pitch)
	v.fb.Clear(render.RGB(30, 30, 40))
	v.raster.ClearDepth()
	v.raster.ResetStats()
	v.w.draw(v.raster, math3d.V3(0.5, 1, 0.3).Normalize())

	v.fb.Draw(v.term, uv.Rect(0, 0, v.width, v.height-1))
	status := fmt.Sprintf(" %d tris  %d verts  v%d | %s",
		v.stats.Triangles, v.stats.Vertices, v.w.layer.Version(), viewHelp)
	uv.NewStyledString(status).Draw(v.term, uv.Rect(0, v.height-1, v.width, 1))

	if err := v.term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
