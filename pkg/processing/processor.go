package processing

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/muesli/smartcrop"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-cropper/pkg/types"
)

// Processor handles pixel operations for committed crops
type Processor struct {
	resampler imaging.ResampleFilter
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{resampler: imaging.Lanczos}
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := p.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes an image from byte data with WebP support
func (p *Processor) DecodeImage(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// ExportCrop renders a committed crop from the source image. The image is turned by the
// crop rotation, the crop rectangle is cut around the displaced center and the result is
// mirrored when flipped is set.
func (p *Processor) ExportCrop(ctx context.Context, img image.Image, info types.CropInfo, flipped bool) (image.Image, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if info.ImageViewSize.IsEmpty() || info.CropSize.IsEmpty() || !(info.Scale > 0) {
		return nil, fmt.Errorf("invalid crop info: view %+v crop %+v scale %v", info.ImageViewSize, info.CropSize, info.Scale)
	}

	// pixels per view unit at scale 1
	k := float64(img.Bounds().Dx()) / info.ImageViewSize.Width / info.Scale

	rotated := img
	if deg := -info.Rotation * 180 / math.Pi; math.Abs(deg) > 1e-9 {
		rotated = imaging.Rotate(img, deg, color.Transparent)
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	b := rotated.Bounds()
	cx := float64(b.Min.X) + float64(b.Dx())/2 - info.Translation.X*k
	cy := float64(b.Min.Y) + float64(b.Dy())/2 - info.Translation.Y*k
	w, h := info.CropSize.Width*k, info.CropSize.Height*k

	rect := image.Rect(
		int(math.Round(cx-w/2)), int(math.Round(cy-h/2)),
		int(math.Round(cx+w/2)), int(math.Round(cy+h/2)),
	).Intersect(b)
	if rect.Empty() {
		return nil, fmt.Errorf("empty crop rectangle")
	}

	out := imaging.Crop(rotated, rect)
	if flipped {
		out = imaging.FlipH(out)
	}
	return out, nil
}

// ExportRect renders a crop given in source pixels and applies the quarter turn and
// mirroring. It matches ExportCrop for crops without fine rotation.
func (p *Processor) ExportRect(ctx context.Context, img image.Image, r types.Rect, rotation types.RotationType, flipped bool) (image.Image, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	out, err := p.CropImageToRect(img, r, 0, 0)
	if err != nil {
		return nil, err
	}

	switch rotation {
	case types.RotationRight:
		out = imaging.Rotate270(out)
	case types.RotationUpsideDown:
		out = imaging.Rotate180(out)
	case types.RotationLeft:
		out = imaging.Rotate90(out)
	}
	if flipped {
		out = imaging.FlipH(out)
	}
	return out, nil
}

// CropImageToRect crops an image to a rectangle in pixel coordinates, optionally resizing
// the result to fill the target dimensions.
func (p *Processor) CropImageToRect(img image.Image, r types.Rect, targetWidth, targetHeight int) (image.Image, error) {
	bounds := img.Bounds()
	rect := image.Rect(
		bounds.Min.X+int(r.X+0.5), bounds.Min.Y+int(r.Y+0.5),
		bounds.Min.X+int(r.MaxX()+0.5), bounds.Min.Y+int(r.MaxY()+0.5),
	).Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("empty crop rectangle")
	}

	cropped := imaging.Crop(img, rect)
	if targetWidth > 0 && targetHeight > 0 {
		cropped = imaging.Fill(cropped, targetWidth, targetHeight, imaging.Center, p.resampler)
	}
	return cropped, nil
}

// SuggestNormalizedCrop finds the most interesting region of img with the given width/height
// ratio and returns it relative to the image size.
func (p *Processor) SuggestNormalizedCrop(ctx context.Context, img image.Image, ratio float64) (types.Rect, error) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return types.Rect{}, types.Errorf("suggest crop", types.ErrInvalidRatio, "%v", ratio)
	}
	if err := checkContext(ctx); err != nil {
		return types.Rect{}, err
	}

	const unit = 1000
	w, h := int(math.Round(ratio*unit)), unit
	if w == 0 {
		w = 1
	}

	analyzer := smartcrop.NewAnalyzer(&resizer{resampler: p.resampler})

	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)
	go func() {
		crop, err := analyzer.FindBestCrop(img, w, h)
		resultChan <- cropResult{crop: crop, err: err}
	}()

	var crop image.Rectangle
	select {
	case <-ctx.Done():
		return types.Rect{}, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return types.Rect{}, fmt.Errorf("finding best crop: %w", result.err)
		}
		crop = result.crop
	}

	b := img.Bounds()
	crop = crop.Intersect(b)
	if crop.Empty() {
		return types.Rect{}, fmt.Errorf("finding best crop: empty result")
	}
	fw, fh := float64(b.Dx()), float64(b.Dy())
	return types.Rect{
		X:      float64(crop.Min.X-b.Min.X) / fw,
		Y:      float64(crop.Min.Y-b.Min.Y) / fh,
		Width:  float64(crop.Dx()) / fw,
		Height: float64(crop.Dy()) / fh,
	}, nil
}

// resizer implements the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

// CropCorners maps the corners of a committed crop box into pixel coordinates of an image
// of the given size, clockwise from top-left.
func CropCorners(info types.CropInfo, imageSize types.Size) [4]types.Point {
	k := imageSize.Width / info.ImageViewSize.Width / info.Scale
	m := gg.Translate(imageSize.Width/2, imageSize.Height/2).
		Multiply(gg.Scale(k, k)).
		Multiply(gg.Rotate(-info.Rotation)).
		Multiply(gg.Translate(-info.Translation.X, -info.Translation.Y))

	hw, hh := info.CropSize.Width/2, info.CropSize.Height/2
	var out [4]types.Point
	for i, c := range []gg.Point{gg.Pt(-hw, -hh), gg.Pt(hw, -hh), gg.Pt(hw, hh), gg.Pt(-hw, hh)} {
		q := m.TransformPoint(c)
		out[i] = types.Point{X: q.X, Y: q.Y}
	}
	return out
}

// CreateDebugOverlay draws the crop outline over the image, plus the suggested region when
// it is not empty.
func (p *Processor) CreateDebugOverlay(img image.Image, corners [4]types.Point, suggestion types.Rect) (image.Image, error) {
	dc := gg.NewContextForImage(imaging.Clone(img))
	defer dc.Close()

	b := img.Bounds()
	stroke := math.Max(2, 0.004*float64(min(b.Dx(), b.Dy()))) // ~0.4% of min side

	if !suggestion.IsEmpty() {
		dc.SetRGB(0, 1, 0)
		dc.SetLineWidth(stroke)
		dc.DrawRectangle(suggestion.X*float64(b.Dx()), suggestion.Y*float64(b.Dy()),
			suggestion.Width*float64(b.Dx()), suggestion.Height*float64(b.Dy()))
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("drawing suggestion: %w", err)
		}
	}

	dc.SetRGB(1, 0.8, 0)
	dc.SetLineWidth(stroke)
	dc.MoveTo(corners[0].X, corners[0].Y)
	for _, c := range corners[1:] {
		dc.LineTo(c.X, c.Y)
	}
	dc.ClosePath()
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("drawing crop outline: %w", err)
	}

	// image center marker
	ix, iy := float64(b.Dx())/2, float64(b.Dy())/2
	dc.SetRGB(0, 0.67, 1)
	dc.MoveTo(ix-6, iy)
	dc.LineTo(ix+6, iy)
	dc.MoveTo(ix, iy-6)
	dc.LineTo(ix, iy+6)
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("drawing center marker: %w", err)
	}

	return dc.Image(), nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
