// Package imagecropper provides interactive crop geometry for images.
//
// The engine keeps a crop box and an affine transformation of the image consistent
// across composable edits: fixed ratio changes, quarter turns, straightening, flips,
// resets, restored presets and changes of the available layout area. Pixels are only
// touched when a committed crop is exported.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"math"
//
//		imagecropper "github.com/menta2k/image-cropper"
//		"github.com/menta2k/image-cropper/pkg/cropper"
//		"github.com/menta2k/image-cropper/pkg/types"
//	)
//
//	func main() {
//		bounds := types.Rect{Width: 800, Height: 800}
//		editor, err := imagecropper.LoadEditor("photo.jpg", bounds, cropper.DefaultConfig())
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// Lock to 16:9 and turn the image clockwise
//		if _, err := editor.Resolve(cropper.SetFixedRatioOp{Ratio: 16.0 / 9, Zoom: true}); err != nil {
//			log.Fatal(err)
//		}
//		if _, err := editor.Resolve(cropper.RotateBy90Op{Angle: math.Pi / 2}); err != nil {
//			log.Fatal(err)
//		}
//
//		if err := editor.Save(context.Background(), "photo_cropped.jpg", "jpg", 90, false); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these components:
//
// 1. Ratio (pkg/ratio): Derives the fixed ratio candidates for an image
// 2. Mapper (pkg/mapper): Converts between normalized, mask frame and image coordinates
// 3. Cropper (pkg/cropper): Resolves edit operations into crop boxes and transformations
// 4. Processing (pkg/processing): Exports committed crops and suggests interesting regions
package imagecropper

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"

	"github.com/menta2k/image-cropper/internal/logging"
	"github.com/menta2k/image-cropper/pkg/analyzer"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/ratio"
	"github.com/menta2k/image-cropper/pkg/types"
)

// Version of the image cropper library
const Version = "1.0.0"

// SetLogger installs l for the engine packages. Nil silences them again.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// RatioCandidates derives the fixed ratio candidates for an image of the given native
// aspect and orientation.
func RatioCandidates(nativeAspect float64, orientation types.RatioType, options ratio.Options, customs []ratio.CustomRatio) ([]ratio.Item, error) {
	originalRatioH := nativeAspect
	if orientation == types.Vertical {
		originalRatioH = 1 / nativeAspect
	}
	return ratio.Ratios(orientation, originalRatioH, options, customs)
}

// Editor couples one image with its crop resolver
type Editor struct {
	analyzer  *analyzer.ImageAnalyzer
	processor *processing.Processor
	resolver  *cropper.Resolver

	img  image.Image
	info analyzer.ImageInfo
}

// NewEditor creates an editor for img laid out in contentBounds
func NewEditor(img image.Image, contentBounds types.Rect, cfg cropper.Config) (*Editor, error) {
	a := analyzer.New()
	if err := a.ValidateImage(img); err != nil {
		return nil, fmt.Errorf("image validation failed: %w", err)
	}

	info := a.GetImageInfo(img)
	resolver, err := cropper.NewResolver(info.Size(), contentBounds, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	return &Editor{
		analyzer:  a,
		processor: processing.NewProcessor(),
		resolver:  resolver,
		img:       img,
		info:      info,
	}, nil
}

// LoadEditor loads an image from file and creates an editor for it
func LoadEditor(path string, contentBounds types.Rect, cfg cropper.Config) (*Editor, error) {
	img, err := processing.NewProcessor().LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return NewEditor(img, contentBounds, cfg)
}

// NewEditorFromReader decodes an image from reader and creates an editor for it
func NewEditorFromReader(reader io.Reader, contentBounds types.Rect, cfg cropper.Config) (*Editor, error) {
	img, err := analyzer.New().LoadImageFromReader(reader)
	if err != nil {
		return nil, err
	}
	return NewEditor(img, contentBounds, cfg)
}

// Image returns the source image
func (e *Editor) Image() image.Image { return e.img }

// Info returns basic information about the source image
func (e *Editor) Info() analyzer.ImageInfo { return e.info }

// Resolver returns the crop resolver
func (e *Editor) Resolver() *cropper.Resolver { return e.resolver }

// Resolve runs an edit operation
func (e *Editor) Resolve(op cropper.Operation) (cropper.Result, error) {
	return e.resolver.Resolve(op)
}

// Candidates returns the ratio candidates for the image as currently displayed
func (e *Editor) Candidates() ([]ratio.Item, error) {
	return e.resolver.Candidates()
}

// CropInfo returns the summary of the installed crop
func (e *Editor) CropInfo() types.CropInfo {
	return e.resolver.CropInfo()
}

// Export renders the installed crop. Crops without fine rotation are cut straight from the
// source pixels.
func (e *Editor) Export(ctx context.Context) (image.Image, error) {
	t := e.resolver.Transformation()
	if math.Abs(t.FineRotation()) < 1e-9 {
		return e.processor.ExportRect(ctx, e.img, e.resolver.ImageRect(), t.RotationType, t.IsFlippedHorizontally)
	}
	return e.processor.ExportCrop(ctx, e.img, e.resolver.CropInfo(), t.IsFlippedHorizontally)
}

// Save renders the installed crop and writes it to path. Lossless only applies to webp.
func (e *Editor) Save(ctx context.Context, path, format string, quality int, lossless bool) error {
	out, err := e.Export(ctx)
	if err != nil {
		return fmt.Errorf("failed to export crop: %w", err)
	}
	if err := e.processor.SaveImage(out, path, format, quality, lossless); err != nil {
		return fmt.Errorf("failed to save crop: %w", err)
	}
	return nil
}

// SuggestCrop finds the most interesting region of the source image with the given ratio,
// relative to the full image
func (e *Editor) SuggestCrop(ctx context.Context, value float64) (types.Rect, error) {
	return e.processor.SuggestNormalizedCrop(ctx, e.img, value)
}

// ApplySmartCrop restores the suggested region for value and locks the ratio to it. On error
// the installed crop is kept.
func (e *Editor) ApplySmartCrop(ctx context.Context, value float64) (cropper.Result, error) {
	suggestion, err := e.SuggestCrop(ctx, value)
	if err != nil {
		return cropper.Result{}, err
	}
	return e.resolver.RestoreWithRatio(cropper.PresetNormalized{Rect: suggestion}, value)
}

// DebugOverlay draws the installed crop outline, and suggestion when not empty, over the
// source image
func (e *Editor) DebugOverlay(suggestion types.Rect) (image.Image, error) {
	corners := processing.CropCorners(e.resolver.CropInfo(), e.info.Size())
	return e.processor.CreateDebugOverlay(e.img, corners, suggestion)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
