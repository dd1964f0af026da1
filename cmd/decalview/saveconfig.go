package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taigrr/decal/internal/config"
)

func newSaveConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "save-config [path]",
		Short: "Write the effective configuration as YAML",
		Long: "save-config merges the config file with any flags given and writes the " +
			"result. Without a path it writes to the user config directory.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			path := filepath.Join(config.ConfigDir(), config.FileName)
			if len(args) == 1 {
				path = args[0]
			}
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
