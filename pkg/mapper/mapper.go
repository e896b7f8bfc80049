// Package mapper converts crop geometry between normalized rectangles, mask frames
// and image space. All functions are pure.
package mapper

import (
	"math"

	"github.com/menta2k/image-cropper/pkg/types"
)

// frameTolerance absorbs floating point error when checking containment.
const frameTolerance = 1e-6

// FromNormalized builds the transformation that shows the normalized region n of the
// content currently filling cropFrame.
func FromNormalized(n types.Rect, cropFrame types.Rect) (types.Transformation, error) {
	if cropFrame.IsEmpty() {
		return types.Transformation{}, types.Errorf("from normalized", types.ErrInvalidFrame,
			"crop frame %.3fx%.3f", cropFrame.Width, cropFrame.Height)
	}
	if !validNormalized(n) {
		return types.Transformation{}, types.Errorf("from normalized", types.ErrInvalidFrame,
			"normalized rect %+v", n)
	}

	scale := math.Min(1/n.Width, 1/n.Height)
	offset := types.Point{
		X: cropFrame.Width * n.X * scale,
		Y: cropFrame.Height * n.Y * scale,
	}

	mask := cropFrame
	switch {
	case n.Width > n.Height:
		mask.Height = n.Height * cropFrame.Height / n.Width
		mask.Y += (cropFrame.Height - mask.Height) / 2
	case n.Width < n.Height:
		mask.Width = n.Width * cropFrame.Width / n.Height
		mask.X += (cropFrame.Width - mask.Width) / 2
	}

	return types.NewTransformation(types.Transformation{
		Offset:           offset,
		Scale:            scale,
		ManualZoomed:     scale != 1,
		InitialMaskFrame: cropFrame,
		MaskFrame:        mask,
		ScrollBounds:     types.RectOf(types.Point{}, cropFrame.Size().Scaled(scale)),
	})
}

// ToNormalized returns the region of the content filling cropFrame that t shows.
// It is the inverse of FromNormalized.
func ToNormalized(t types.Transformation, cropFrame types.Rect) types.Rect {
	cw := cropFrame.Width * t.Scale
	ch := cropFrame.Height * t.Scale
	return types.Rect{
		X:      t.Offset.X / cw,
		Y:      t.Offset.Y / ch,
		Width:  t.MaskFrame.Width / cw,
		Height: t.MaskFrame.Height / ch,
	}
}

func validNormalized(n types.Rect) bool {
	in := func(v float64) bool { return v >= 0 && v <= 1 }
	return in(n.X) && in(n.Y) && n.Width > 0 && n.Width <= 1 && n.Height > 0 && n.Height <= 1
}

// Rescale maps t, computed against oldMaskFrame, onto newMaskFrame. The old aspect is fitted
// into newMaskFrame on its binding dimension; offset and scroll bounds scale linearly with the
// resulting factor and the fitted mask is centered in newMaskFrame. Scale is left to the caller.
func Rescale(t types.Transformation, oldMaskFrame, newMaskFrame, contentBounds types.Rect) (types.Transformation, error) {
	switch {
	case oldMaskFrame.IsEmpty(), newMaskFrame.IsEmpty():
		return types.Transformation{}, types.Errorf("rescale", types.ErrInvalidFrame,
			"mask frames %+v -> %+v", oldMaskFrame, newMaskFrame)
	case contentBounds.IsEmpty():
		return types.Transformation{}, types.Errorf("rescale", types.ErrInvalidFrame, "empty content bounds")
	case !contentBounds.Contains(newMaskFrame, frameTolerance):
		return types.Transformation{}, types.Errorf("rescale", types.ErrInvalidFrame,
			"mask frame %+v outside content bounds %+v", newMaskFrame, contentBounds)
	}

	fitted, adjust := types.FitAspect(oldMaskFrame.Size(), newMaskFrame.Size())
	out := scaleOffsets(t, adjust)
	out.MaskFrame = newMaskFrame.CenteredIn(fitted)
	return out, nil
}

// FitToBounds fits the mask aspect of t into contentBounds, scaling offset and scroll bounds
// to match, and centers the result in cropFrame.
func FitToBounds(t types.Transformation, contentBounds, cropFrame types.Rect) (types.Transformation, error) {
	if t.MaskFrame.IsEmpty() || contentBounds.IsEmpty() {
		return types.Transformation{}, types.Errorf("fit to bounds", types.ErrInvalidFrame,
			"mask %+v bounds %+v", t.MaskFrame, contentBounds)
	}
	fitted, adjust := types.FitAspect(t.MaskFrame.Size(), contentBounds.Size())
	out := scaleOffsets(t, adjust)
	out.MaskFrame = cropFrame.CenteredIn(fitted)
	return out, nil
}

func scaleOffsets(t types.Transformation, f float64) types.Transformation {
	t.Offset = t.Offset.Scaled(f)
	t.ScrollBounds = t.ScrollBounds.Scaled(f)
	return t
}

// DisplayedContentSize returns the size of the image content as shown for t.
func DisplayedContentSize(t types.Transformation, imageViewSize types.Size) types.Size {
	s := imageViewSize
	if t.RotationType.IsSideways() {
		s = s.Swapped()
	}
	return s.Scaled(t.Scale)
}

// CropInfo summarizes t for a crop box of the given frame.
func CropInfo(t types.Transformation, cropBox types.Rect, imageViewSize types.Size) types.CropInfo {
	content := DisplayedContentSize(t, imageViewSize)
	visibleCenter := t.Offset.Add(types.Point{X: cropBox.Width / 2, Y: cropBox.Height / 2})
	return types.CropInfo{
		Translation:   types.Point{X: content.Width / 2, Y: content.Height / 2}.Sub(visibleCenter),
		Rotation:      t.Rotation,
		Scale:         t.Scale,
		CropSize:      cropBox.Size(),
		ImageViewSize: imageViewSize,
	}
}

// ImageRect returns the crop of t in original image pixels. Quarter turns are undone;
// fine rotation is ignored.
func ImageRect(t types.Transformation, imageViewSize, imageSize types.Size) types.Rect {
	content := DisplayedContentSize(t, imageViewSize)
	// normalized region in displayed coordinates
	n := types.Rect{
		X:      t.Offset.X / content.Width,
		Y:      t.Offset.Y / content.Height,
		Width:  t.MaskFrame.Width / content.Width,
		Height: t.MaskFrame.Height / content.Height,
	}

	switch t.RotationType {
	case types.RotationRight:
		// displayed (x, y) comes from image (y, 1-x)
		n = types.Rect{X: n.Y, Y: 1 - n.X - n.Width, Width: n.Height, Height: n.Width}
	case types.RotationUpsideDown:
		n = types.Rect{X: 1 - n.X - n.Width, Y: 1 - n.Y - n.Height, Width: n.Width, Height: n.Height}
	case types.RotationLeft:
		n = types.Rect{X: 1 - n.Y - n.Height, Y: n.X, Width: n.Height, Height: n.Width}
	}

	return types.Rect{
		X:      n.X * imageSize.Width,
		Y:      n.Y * imageSize.Height,
		Width:  n.Width * imageSize.Width,
		Height: n.Height * imageSize.Height,
	}
}
