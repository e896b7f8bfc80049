package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/image-cropper/internal/config"
	"github.com/menta2k/image-cropper/internal/utils"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GetConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if utils.FileExists(path) && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.Default().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := a.cfg.ToResolverConfig()
			if err != nil {
				return err
			}
			bounds, err := a.cfg.ContentBounds()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:        %s\n", orDefault(a.resolveConfigPath()))
			fmt.Fprintf(out, "crop shape:    %s\n", rc.CropShape)
			fmt.Fprintf(out, "ratio options: %v\n", a.cfg.Ratios.Options)
			fmt.Fprintf(out, "min crop box:  %.0f\n", rc.MinimumCropBoxSize)
			fmt.Fprintf(out, "content:       %.0fx%.0f at (%.0f,%.0f)\n", bounds.Width, bounds.Height, bounds.X, bounds.Y)
			fmt.Fprintf(out, "output:        %s %s q%d\n", a.cfg.Output.OutputDir, a.cfg.Output.DefaultFormat, a.cfg.Output.Quality)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func orDefault(path string) string {
	if path == "" {
		return "(defaults)"
	}
	return path
}
