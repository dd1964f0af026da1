// decalview - projected decal baker and terminal previewer.
//
// Usage:
//
//	decalview bake [--model scene.glb] [--texture mark.png] [-o out.png]
//	decalview view [--model scene.glb] [--texture mark.png]
//	decalview save-config [path]
//
// Without a model a built-in demo scene is used. Without a texture a
// procedural bullet-hole sprite is used.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/decal/internal/config"
	"github.com/taigrr/decal/internal/logger"
)

var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFile    string
	model      string
	texture    string
	maxAngle   float64
	push       float64
	layers     int32
	trigger    string
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "decalview",
		Short: "Project decals onto 3D geometry",
		Long: "decalview clips scene geometry against an oriented projector box and " +
			"emits a textured decal mesh, either baked to a PNG preview or shown live " +
			"in the terminal.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "config file (default ./"+config.FileName+")")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&g.logFile, "log-file", "", "write JSON logs to this file")
	pf.StringVarP(&g.model, "model", "m", "", "glTF/GLB scene to project onto")
	pf.StringVarP(&g.texture, "texture", "t", "", "decal sprite image (PNG/JPG)")
	pf.Float64Var(&g.maxAngle, "max-angle", 0, "largest surface angle in degrees that receives the decal")
	pf.Float64Var(&g.push, "push", 0, "offset toward the projector in world units")
	pf.Int32Var(&g.layers, "layers", 0, "affected layer mask (-1 for all)")
	pf.StringVar(&g.trigger, "trigger", "", "rebuild trigger: transform or scale")

	root.AddCommand(newBakeCmd(g), newViewCmd(g), newSaveConfigCmd(g))
	return root
}

// load reads the config file and applies flags the user set explicitly.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = g.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = g.logFile
	}
	if flags.Changed("model") {
		cfg.Scene.Model = g.model
	}
	if flags.Changed("texture") {
		cfg.Decal.Texture = g.texture
	}
	if flags.Changed("max-angle") {
		cfg.Decal.MaxAngle = g.maxAngle
	}
	if flags.Changed("push") {
		cfg.Decal.PushDistance = g.push
	}
	if flags.Changed("layers") {
		cfg.Decal.AffectedLayers = g.layers
	}
	if flags.Changed("trigger") {
		cfg.Decal.Trigger = g.trigger
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command logger. The interactive viewer owns the
// terminal, so it only logs to file.
func newLogger(cfg *config.Config, console bool) (*zap.Logger, error) {
	opts := logger.Options{Level: cfg.Logging.Level}
	if cfg.Logging.File != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.File)
	}
	if console {
		opts.Console = os.Stderr
	}
	log, err := logger.New(opts)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}
