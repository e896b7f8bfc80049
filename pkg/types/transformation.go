package types

import "math"

// Transformation is a snapshot of the affine state of the crop view together with the
// mask frame it was computed against.
//
// Offset is the top-left corner of the crop box inside the displayed content, whose
// size is the image view size (InitialMaskFrame) rotated by RotationType and multiplied
// by Scale. ScrollBounds spans that displayed content.
//
// Values are never modified in place; the With* methods return copies.
type Transformation struct {
	Offset                Point        `json:"offset" yaml:"offset"`
	Rotation              float64      `json:"rotation" yaml:"rotation"`
	Scale                 float64      `json:"scale" yaml:"scale"`
	ManualZoomed          bool         `json:"manual_zoomed" yaml:"manual_zoomed"`
	InitialMaskFrame      Rect         `json:"initial_mask_frame" yaml:"initial_mask_frame"`
	MaskFrame             Rect         `json:"mask_frame" yaml:"mask_frame"`
	ScrollBounds          Rect         `json:"scroll_bounds" yaml:"scroll_bounds"`
	RotationType          RotationType `json:"rotation_type" yaml:"rotation_type"`
	IsFlippedHorizontally bool         `json:"is_flipped_horizontally" yaml:"is_flipped_horizontally"`
}

// NewTransformation validates t and returns it.
func NewTransformation(t Transformation) (Transformation, error) {
	if err := t.Validate(); err != nil {
		return Transformation{}, err
	}
	return t, nil
}

// Validate checks the mask frame and scale invariants.
func (t Transformation) Validate() error {
	if t.MaskFrame.IsEmpty() {
		return Errorf("transformation", ErrInvalidFrame, "mask frame %.3fx%.3f", t.MaskFrame.Width, t.MaskFrame.Height)
	}
	if !(t.Scale > 0) || math.IsInf(t.Scale, 0) {
		return Errorf("transformation", ErrInvalidRatio, "scale %v", t.Scale)
	}
	return nil
}

// FineRotation returns the rotation left after removing the quarter turns.
func (t Transformation) FineRotation() float64 {
	return t.Rotation - t.RotationType.Radians()
}

// WithOffset returns a copy with a new offset.
func (t Transformation) WithOffset(p Point) Transformation {
	t.Offset = p
	return t
}

// WithScale returns a copy with a new scale; ManualZoomed follows the scale.
func (t Transformation) WithScale(s float64) Transformation {
	t.Scale = s
	t.ManualZoomed = s != 1
	return t
}

// WithMaskFrame returns a copy with a new mask frame.
func (t Transformation) WithMaskFrame(r Rect) Transformation {
	t.MaskFrame = r
	return t
}

// WithFlip returns a copy with the horizontal flip flag set to flipped.
func (t Transformation) WithFlip(flipped bool) Transformation {
	t.IsFlippedHorizontally = flipped
	return t
}

// CropInfo summarizes a committed crop for calling code.
type CropInfo struct {
	Translation   Point   `json:"translation" yaml:"translation"`
	Rotation      float64 `json:"rotation" yaml:"rotation"`
	Scale         float64 `json:"scale" yaml:"scale"`
	CropSize      Size    `json:"crop_size" yaml:"crop_size"`
	ImageViewSize Size    `json:"image_view_size" yaml:"image_view_size"`
}
