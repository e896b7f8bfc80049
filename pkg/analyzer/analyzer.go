package analyzer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-cropper/pkg/types"
)

// ImageAnalyzer reports the image facts the crop engine consumes
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	SupportedFormats []string
	MinImageSize     int
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: []string{"jpg", "jpeg", "png", "webp"},
			MinImageSize:     1,
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// LoadImageFromReader loads an image from an io.Reader
func (a *ImageAnalyzer) LoadImageFromReader(reader io.Reader) (image.Image, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if !a.isFormatSupported(format) {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}

	return img, nil
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	return ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
	}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width  int
	Height int
	Area   int
}

// Size returns the image dimensions.
func (i ImageInfo) Size() types.Size {
	return types.Size{Width: float64(i.Width), Height: float64(i.Height)}
}

// NativeAspect returns width/height of the full image.
func (i ImageInfo) NativeAspect() float64 {
	return float64(i.Width) / float64(i.Height)
}

// IsHorizontal reports whether the image is wider than tall.
func (i ImageInfo) IsHorizontal() bool {
	return i.Width > i.Height
}

// OrientationClass classifies the unrotated image.
func (i ImageInfo) OrientationClass() types.RatioType {
	if i.IsHorizontal() {
		return types.Horizontal
	}
	return types.Vertical
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ValidateImage checks if an image meets minimum requirements
func (a *ImageAnalyzer) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() < a.config.MinImageSize || bounds.Dy() < a.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), a.config.MinImageSize)
	}
	return nil
}
