package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	imagecropper "github.com/menta2k/image-cropper"
	"github.com/menta2k/image-cropper/internal/utils"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/types"
)

type cropOptions struct {
	ratio      string
	rotate     int
	flip       bool
	normalized string
	straighten float64
	smart      bool
	debug      bool

	outDir   string
	format   string
	quality  int
	lossless bool
	jobs     int
}

func newCropCmd(a *app) *cobra.Command {
	opts := &cropOptions{}

	cmd := &cobra.Command{
		Use:   "crop <image|dir>...",
		Short: "Crop images with a fixed ratio, rotation and straightening",
		Long: `Crop applies the same edits to every input image and writes the results to the
output directory. Directories are searched recursively for jpg, png and webp files.

Edits run in this order: restored normalized crop or smart crop or fixed ratio,
quarter turns, straightening, horizontal flip.`,
		Example: `  # Center a 16:9 crop
  image-cropper crop --ratio 16:9 photo.jpg

  # Restore a saved crop, turn it clockwise and straighten by 3 degrees
  image-cropper crop --normalized 0.1,0.2,0.5,0.5 --rotate 1 --straighten 3 photo.jpg

  # Pick the most interesting square of every image in a folder
  image-cropper crop --smart --ratio 1:1 --debug --jobs 4 ./photos`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrop(cmd.Context(), a, opts, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.ratio, "ratio", "", "fixed ratio as W:H or a decimal, e.g. 16:9 or 1.5")
	cmd.Flags().IntVar(&opts.rotate, "rotate", 0, "quarter turns, positive is clockwise")
	cmd.Flags().BoolVar(&opts.flip, "flip", false, "mirror horizontally")
	cmd.Flags().StringVar(&opts.normalized, "normalized", "", "restore a crop given as x,y,w,h relative to the image")
	cmd.Flags().Float64Var(&opts.straighten, "straighten", 0, "straightening angle in degrees")
	cmd.Flags().BoolVar(&opts.smart, "smart", false, "crop the most interesting region")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "write a debug overlay next to every crop")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: jpg|png|webp (default from config)")
	cmd.Flags().IntVar(&opts.quality, "quality", 0, "JPEG/WebP quality 1-100 (default from config)")
	cmd.Flags().BoolVar(&opts.lossless, "lossless", false, "WebP lossless mode")
	cmd.Flags().IntVar(&opts.jobs, "jobs", 2, "number of images processed in parallel")

	return cmd
}

func runCrop(ctx context.Context, a *app, opts *cropOptions, args []string, out io.Writer) error {
	if opts.normalized != "" && opts.smart {
		return fmt.Errorf("--normalized and --smart are mutually exclusive")
	}
	if opts.jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1")
	}
	if opts.outDir == "" {
		opts.outDir = a.cfg.Output.OutputDir
	}
	if opts.format == "" {
		opts.format = a.cfg.Output.DefaultFormat
	}
	if opts.quality == 0 {
		opts.quality = a.cfg.Output.Quality
	}
	opts.lossless = opts.lossless || a.cfg.Output.Lossless

	files, err := utils.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found")
	}
	if err := utils.EnsureDir(opts.outDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	a.logger.Info("cropping images", "count", len(files), "jobs", opts.jobs, "out", opts.outDir)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for _, file := range files {
		g.Go(func() error {
			path, err := cropFile(ctx, a, opts, file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			size := "?"
			if st, err := os.Stat(path); err == nil {
				size = utils.FormatFileSize(st.Size())
			}
			mu.Lock()
			fmt.Fprintf(out, "%s -> %s (%s)\n", file, path, size)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// cropFile resolves the requested edits for one image and saves the result
func cropFile(ctx context.Context, a *app, opts *cropOptions, file string) (string, error) {
	rc, err := a.cfg.ToResolverConfig()
	if err != nil {
		return "", err
	}
	bounds, err := a.cfg.ContentBounds()
	if err != nil {
		return "", err
	}
	value, err := parseRatio(opts.ratio)
	if err != nil {
		return "", err
	}

	editor, err := imagecropper.LoadEditor(file, bounds, rc)
	if err != nil {
		return "", err
	}

	var suggestion types.Rect
	var ops []cropper.Operation
	switch {
	case opts.normalized != "":
		box, err := parseNormalized(opts.normalized)
		if err != nil {
			return "", err
		}
		ops = append(ops, cropper.ApplyPresetOp{Preset: cropper.PresetNormalized{Rect: box.Rect()}})
		if value > 0 {
			ops = append(ops, cropper.SetFixedRatioOp{Ratio: value})
		}
	case opts.smart:
		if value == 0 {
			value = editor.Info().NativeAspect()
		}
		suggestion, err = editor.SuggestCrop(ctx, value)
		if err != nil {
			return "", err
		}
		ops = append(ops, cropper.RestoreWithRatioOp{Preset: cropper.PresetNormalized{Rect: suggestion}, Ratio: value})
	case value > 0:
		ops = append(ops, cropper.SetFixedRatioOp{Ratio: value, Zoom: true})
	}
	ops = append(ops, quarterTurns(opts.rotate)...)
	if opts.straighten != 0 {
		ops = append(ops, cropper.StraightenOp{Angle: types.Degrees(opts.straighten)})
	}
	if opts.flip {
		ops = append(ops, cropper.FlipHorizontalOp{})
	}

	for _, op := range ops {
		if _, err := editor.Resolve(op); err != nil {
			return "", err
		}
	}

	info := editor.CropInfo()
	a.logger.Debug("resolved crop",
		"file", file,
		"image_rect", editor.Resolver().ImageRect(),
		"normalized", editor.Resolver().NormalizedRect(),
		"rotation", info.Rotation,
		"scale", info.Scale)

	outCfg := a.cfg.Output
	path := utils.GenerateOutputFilename(file, opts.outDir, outCfg.Prefix, outCfg.Suffix, opts.format)
	if err := editor.Save(ctx, path, opts.format, opts.quality, opts.lossless); err != nil {
		return "", err
	}

	if opts.debug {
		overlay, err := editor.DebugOverlay(suggestion)
		if err != nil {
			return "", err
		}
		dbgPath := utils.GenerateOutputFilename(file, opts.outDir, outCfg.Prefix, outCfg.Suffix+"_debug", "png")
		if err := processing.NewProcessor().SaveImage(overlay, dbgPath, "png", 92, false); err != nil {
			return "", fmt.Errorf("failed to save debug overlay: %w", err)
		}
	}

	return path, nil
}

// quarterTurns returns n quarter turn operations, counter-clockwise when n is negative
func quarterTurns(n int) []cropper.Operation {
	angle := math.Pi / 2
	if n < 0 {
		angle, n = -angle, -n
	}
	ops := make([]cropper.Operation, 0, n%4)
	for range n % 4 {
		ops = append(ops, cropper.RotateBy90Op{Angle: angle})
	}
	return ops
}

// parseRatio accepts "W:H" or a decimal. Empty means no fixed ratio.
func parseRatio(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if w, h, ok := strings.Cut(s, ":"); ok {
		wf, err1 := strconv.ParseFloat(strings.TrimSpace(w), 64)
		hf, err2 := strconv.ParseFloat(strings.TrimSpace(h), 64)
		if err1 != nil || err2 != nil || wf <= 0 || hf <= 0 {
			return 0, fmt.Errorf("invalid ratio %q", s)
		}
		return wf / hf, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid ratio %q", s)
	}
	return v, nil
}

// parseNormalized parses "x,y,w,h" with every component in [0,1]
func parseNormalized(s string) (types.Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return types.Box{}, fmt.Errorf("normalized crop %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || f < 0 || f > 1 {
			return types.Box{}, fmt.Errorf("normalized crop %q: component %d out of range", s, i)
		}
		v[i] = f
	}
	if v[2] == 0 || v[3] == 0 {
		return types.Box{}, fmt.Errorf("normalized crop %q is empty", s)
	}
	return types.Box{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}
