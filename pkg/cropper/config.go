package cropper

import (
	"fmt"
	"math"

	"github.com/menta2k/image-cropper/pkg/ratio"
	"github.com/menta2k/image-cropper/pkg/types"
)

// PresetFixedRatioKind selects the fixed ratio policy.
type PresetFixedRatioKind int

const (
	// CanUseMultiplePresetFixedRatio lets the user pick among the candidates.
	// A positive Ratio is applied when the resolver is created.
	CanUseMultiplePresetFixedRatio PresetFixedRatioKind = iota
	// AlwaysUsingOnePresetFixedRatio pins the crop box to Ratio. A zero Ratio
	// is derived from the restored preset mask.
	AlwaysUsingOnePresetFixedRatio
)

// PresetFixedRatio is the fixed ratio policy and its ratio.
type PresetFixedRatio struct {
	Kind  PresetFixedRatioKind
	Ratio float64
}

// CropShape is the shape of the crop mask. Only the ratio it implies matters here.
type CropShape int

const (
	ShapeRect CropShape = iota
	ShapeSquare
	ShapeEllipse
	ShapeCircle
	ShapeRoundedRect
	ShapeDiamond
	ShapeHeart
	ShapePolygon
	ShapePath
)

var shapeNames = []string{"rect", "square", "ellipse", "circle", "rounded rect", "diamond", "heart", "polygon", "custom path"}

func (s CropShape) String() string {
	if int(s) < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseCropShape returns the shape with the given name.
func ParseCropShape(name string) (CropShape, error) {
	for i, n := range shapeNames {
		if n == name {
			return CropShape(i), nil
		}
	}
	return ShapeRect, fmt.Errorf("unknown crop shape %q", name)
}

// ForcesSquare reports whether the shape always uses a 1:1 ratio.
func (s CropShape) ForcesSquare() bool {
	return s == ShapeSquare || s == ShapeCircle || s == ShapeHeart
}

// Config holds the policies of a Resolver.
type Config struct {
	RatioOptions       ratio.Options
	CustomRatios       []ratio.CustomRatio
	PresetFixedRatio   PresetFixedRatio
	CropShape          CropShape
	FixRatiosShowType  ratio.ShowType
	MinimumCropBoxSize float64
	// RotationLimit clamps straightening. Nil means no limit.
	RotationLimit *types.Angle
	// AngleShowLimit clamps the displayed angle only. Nil means no limit.
	AngleShowLimit *types.Angle
}

// DefaultConfig returns the default policies.
func DefaultConfig() Config {
	rotationLimit := types.Degrees(45)
	showLimit := types.Degrees(40)
	return Config{
		RatioOptions:       ratio.All,
		PresetFixedRatio:   PresetFixedRatio{Kind: CanUseMultiplePresetFixedRatio},
		CropShape:          ShapeRect,
		FixRatiosShowType:  ratio.ShowAdaptive,
		MinimumCropBoxSize: 42,
		RotationLimit:      &rotationLimit,
		AngleShowLimit:     &showLimit,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.PresetFixedRatio.Ratio < 0 || math.IsNaN(c.PresetFixedRatio.Ratio) || math.IsInf(c.PresetFixedRatio.Ratio, 0) {
		return types.Errorf("config", types.ErrInvalidRatio, "preset fixed ratio %v", c.PresetFixedRatio.Ratio)
	}
	if c.MinimumCropBoxSize < 0 {
		return types.Errorf("config", types.ErrInvalidFrame, "minimum crop box size %v", c.MinimumCropBoxSize)
	}
	for _, cr := range c.CustomRatios {
		if cr.Width <= 0 || cr.Height <= 0 {
			return types.Errorf("config", types.ErrInvalidRatio, "custom ratio %d:%d", cr.Width, cr.Height)
		}
	}
	return nil
}

// effective applies the ratio implied by the crop shape.
func (c Config) effective() Config {
	if c.CropShape.ForcesSquare() {
		c.PresetFixedRatio = PresetFixedRatio{Kind: AlwaysUsingOnePresetFixedRatio, Ratio: 1}
	}
	return c
}

// ContentBounds returns the area available to the crop box inside a viewport of the given
// size, leaving padding on every side and room for the rotation dial below.
func ContentBounds(viewport types.Size, padding, dashboardHeight float64) (types.Rect, error) {
	r := types.Rect{
		X:      padding,
		Y:      padding,
		Width:  viewport.Width - 2*padding,
		Height: viewport.Height - 2*padding - dashboardHeight,
	}
	if r.IsEmpty() {
		return types.Rect{}, types.Errorf("content bounds", types.ErrInvalidFrame,
			"viewport %.1fx%.1f too small", viewport.Width, viewport.Height)
	}
	return r, nil
}
