package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	imagecropper "github.com/menta2k/image-cropper"
	"github.com/menta2k/image-cropper/pkg/cropper"
)

func newRatiosCmd(a *app) *cobra.Command {
	var rotate int

	cmd := &cobra.Command{
		Use:   "ratios <image>",
		Short: "List the fixed ratios offered for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := a.cfg.ToResolverConfig()
			if err != nil {
				return err
			}
			bounds, err := a.cfg.ContentBounds()
			if err != nil {
				return err
			}
			editor, err := imagecropper.LoadEditor(args[0], bounds, rc)
			if err != nil {
				return err
			}
			for _, op := range quarterTurns(rotate) {
				if _, err := editor.Resolve(op); err != nil {
					return err
				}
			}

			m, err := editor.Resolver().Manager()
			if err != nil {
				return err
			}
			info := editor.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d, %s, shown %s\n",
				args[0], info.Width, info.Height, info.OrientationClass(), m.Type)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tRATIO")
			for _, item := range m.Ratios() {
				fmt.Fprintf(tw, "%s\t%.4f\n", item.Name(m.Type), m.Value(item))
			}
			if rc.CropShape.ForcesSquare() {
				fmt.Fprintf(tw, "(%s shape pins 1:1)\t\n", rc.CropShape)
			}
			if rc.PresetFixedRatio.Kind == cropper.AlwaysUsingOnePresetFixedRatio {
				fmt.Fprintf(tw, "(pinned to %.4f)\t\n", rc.PresetFixedRatio.Ratio)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&rotate, "rotate", 0, "quarter turns applied before listing, positive is clockwise")

	return cmd
}
