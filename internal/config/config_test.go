package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/decal/pkg/decal"
	"github.com/taigrr/decal/pkg/math3d"
	"github.com/taigrr/decal/pkg/scene"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Decal.MaxAngle != 90 {
		t.Errorf("MaxAngle = %v, want 90", cfg.Decal.MaxAngle)
	}
	if cfg.Decal.PushDistance != 0.009 {
		t.Errorf("PushDistance = %v, want 0.009", cfg.Decal.PushDistance)
	}
	if cfg.Decal.AffectedLayers != -1 {
		t.Errorf("AffectedLayers = %d, want -1", cfg.Decal.AffectedLayers)
	}
	if cfg.TriggerMode() != decal.TriggerOnTransform {
		t.Errorf("TriggerMode = %v, want transform", cfg.TriggerMode())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decalview.yaml")
	data := []byte(`
decal:
  max_angle: 45
  affected_layers: 4
  trigger: scale
projector:
  position: [1, 2, 3]
  rotation: [0, 90, 0]
logging:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Decal.MaxAngle != 45 {
		t.Errorf("MaxAngle = %v, want 45", cfg.Decal.MaxAngle)
	}
	if cfg.Decal.PushDistance != 0.009 {
		t.Errorf("PushDistance = %v, want default 0.009", cfg.Decal.PushDistance)
	}
	if cfg.TriggerMode() != decal.TriggerOnScale {
		t.Errorf("TriggerMode = %v, want scale", cfg.TriggerMode())
	}
	if cfg.Projector.Scale != Default().Projector.Scale {
		t.Errorf("Scale = %v, want default", cfg.Projector.Scale)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("decal: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "decalview.yaml")
	cfg := Default()
	cfg.Decal.Texture = "scratch.png"
	cfg.Projector.Rotation = [3]float64{10, 20, 30}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"angle above 180", func(c *Config) { c.Decal.MaxAngle = 181 }},
		{"negative angle", func(c *Config) { c.Decal.MaxAngle = -1 }},
		{"nan angle", func(c *Config) { c.Decal.MaxAngle = math.NaN() }},
		{"negative push", func(c *Config) { c.Decal.PushDistance = -0.1 }},
		{"unknown trigger", func(c *Config) { c.Decal.Trigger = "always" }},
		{"negative workers", func(c *Config) { c.Decal.Workers = -2 }},
		{"infinite scale", func(c *Config) { c.Projector.Scale[1] = math.Inf(1) }},
		{"zero width", func(c *Config) { c.Render.Width = 0 }},
		{"zero fps", func(c *Config) { c.Render.FPS = 0 }},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateBoundaries(t *testing.T) {
	for _, angle := range []float64{0, 180} {
		cfg := Default()
		cfg.Decal.MaxAngle = angle
		cfg.Decal.PushDistance = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("max_angle %v: %v", angle, err)
		}
	}
}

func TestApplyTo(t *testing.T) {
	cfg := Default()
	cfg.Decal.MaxAngle = 60
	cfg.Decal.PushDistance = 0.02
	cfg.Decal.AffectedLayers = 1 << 3
	cfg.Projector.Position = [3]float64{1, 0, 0}
	cfg.Projector.Rotation = [3]float64{0, 90, 0}
	cfg.Projector.Scale = [3]float64{2, 2, 1}

	p := decal.NewProjector()
	cfg.ApplyTo(p)

	if p.MaxAngle != 60 || p.PushDistance != 0.02 {
		t.Errorf("angle/push = %v/%v", p.MaxAngle, p.PushDistance)
	}
	if p.AffectedLayers != scene.LayerMask(8) {
		t.Errorf("AffectedLayers = %d, want 8", p.AffectedLayers)
	}
	if p.Transform.Position != math3d.V3(1, 0, 0) || p.Transform.Scale != math3d.V3(2, 2, 1) {
		t.Errorf("transform = %+v", p.Transform)
	}
	// Yaw of 90 degrees turns local +Z toward world +X.
	if f := p.Facing(); !f.ApproxEqual(math3d.V3(1, 0, 0), 1e-9) {
		t.Errorf("Facing = %v, want +X", f)
	}
	if p.Ready() {
		t.Error("ApplyTo must not make the projector ready")
	}
}
