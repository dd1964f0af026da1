// Package config handles decalview configuration.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/decal/internal/logger"
	"github.com/taigrr/decal/pkg/decal"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/scene"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration.
type Config struct {
	Decal     DecalConfig     `yaml:"decal"`
	Projector ProjectorConfig `yaml:"projector"`
	Scene     SceneConfig     `yaml:"scene"`
	Render    RenderConfig    `yaml:"render"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DecalConfig holds projection settings.
type DecalConfig struct {
	MaxAngle       float64 `yaml:"max_angle"`
	PushDistance   float64 `yaml:"push_distance"`
	AffectedLayers int32   `yaml:"affected_layers"`
	Texture        string  `yaml:"texture"`
	Trigger        string  `yaml:"trigger"`
	Workers        int     `yaml:"workers"`
}

// ProjectorConfig places the projector box. Rotation is Euler angles in
// degrees.
type ProjectorConfig struct {
	Position [3]float64 `yaml:"position"`
	Rotation [3]float64 `yaml:"rotation"`
	Scale    [3]float64 `yaml:"scale"`
}

// SceneConfig selects the geometry to project onto. An empty model uses the
// built-in demo scene.
type SceneConfig struct {
	Model string `yaml:"model"`
	Layer int    `yaml:"layer"`
}

// RenderConfig holds preview settings.
type RenderConfig struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	FPS     int    `yaml:"fps"`
	Output  string `yaml:"output"`
	ShowBox bool   `yaml:"show_box"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Decal: DecalConfig{
			MaxAngle:       decal.DefaultMaxAngle,
			PushDistance:   decal.DefaultPushDistance,
			AffectedLayers: int32(scene.AllLayers),
			Trigger:        decal.TriggerOnTransform.String(),
		},
		Projector: ProjectorConfig{
			Position: [3]float64{0, 0.5, 0.75},
			Scale:    [3]float64{0.8, 0.8, 1},
		},
		Render: RenderConfig{
			Width:   320,
			Height:  240,
			FPS:     30,
			ShowBox: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	d := c.Decal
	if math.IsNaN(d.MaxAngle) || d.MaxAngle < 0 || d.MaxAngle > 180 {
		return fmt.Errorf("%w: decal.max_angle %v outside [0, 180]", ErrInvalid, d.MaxAngle)
	}
	if math.IsNaN(d.PushDistance) || d.PushDistance < 0 {
		return fmt.Errorf("%w: decal.push_distance %v is negative", ErrInvalid, d.PushDistance)
	}
	if _, ok := decal.ParseTriggerMode(d.Trigger); !ok {
		return fmt.Errorf("%w: decal.trigger %q", ErrInvalid, d.Trigger)
	}
	if d.Workers < 0 {
		return fmt.Errorf("%w: decal.workers %d is negative", ErrInvalid, d.Workers)
	}

	p := c.Projector
	for i := range 3 {
		if !isFinite(p.Position[i]) || !isFinite(p.Rotation[i]) || !isFinite(p.Scale[i]) {
			return fmt.Errorf("%w: projector transform is not finite", ErrInvalid)
		}
	}

	r := c.Render
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: render size %dx%d", ErrInvalid, r.Width, r.Height)
	}
	if r.FPS <= 0 {
		return fmt.Errorf("%w: render.fps %d", ErrInvalid, r.FPS)
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	return nil
}

// TriggerMode returns the configured rebuild trigger.
func (c *Config) TriggerMode() decal.TriggerMode {
	m, _ := decal.ParseTriggerMode(c.Decal.Trigger)
	return m
}

// Transform converts the projector placement to a transform.
func (p ProjectorConfig) Transform() math3d.Transform {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	return math3d.Transform{
		Position: math3d.V3(p.Position[0], p.Position[1], p.Position[2]),
		Rotation: math3d.QuatFromEuler(rad(p.Rotation[0]), rad(p.Rotation[1]), rad(p.Rotation[2])),
		Scale:    math3d.V3(p.Scale[0], p.Scale[1], p.Scale[2]),
	}
}

// ApplyTo copies placement and projection settings onto p. Material and
// sprite are left to the caller.
func (c *Config) ApplyTo(p *decal.Projector) {
	p.Transform = c.Projector.Transform()
	p.MaxAngle = c.Decal.MaxAngle
	p.PushDistance = c.Decal.PushDistance
	p.AffectedLayers = scene.LayerMask(c.Decal.AffectedLayers)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
