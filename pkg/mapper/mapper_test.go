package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-cropper/pkg/types"
)

const delta = 1e-9

func assertRect(t *testing.T, want, got types.Rect) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x")
	assert.InDelta(t, want.Y, got.Y, delta, "y")
	assert.InDelta(t, want.Width, got.Width, delta, "width")
	assert.InDelta(t, want.Height, got.Height, delta, "height")
}

func TestFromNormalizedNarrowsWidth(t *testing.T) {
	frame := types.Rect{X: 0, Y: 0, Width: 400, Height: 200}
	tr, err := FromNormalized(types.Rect{X: 0.25, Y: 0, Width: 0.5, Height: 1}, frame)
	require.NoError(t, err)

	// min(1/0.5, 1/1) is 1, so the content is not magnified
	assert.Equal(t, 1.0, tr.Scale)
	assert.False(t, tr.ManualZoomed)
	assert.Equal(t, types.Point{X: 100, Y: 0}, tr.Offset)
	assertRect(t, types.Rect{X: 100, Y: 0, Width: 200, Height: 200}, tr.MaskFrame)
	assertRect(t, frame, tr.InitialMaskFrame)
	assertRect(t, types.Rect{Width: 400, Height: 200}, tr.ScrollBounds)
}

func TestFromNormalizedNarrowsHeight(t *testing.T) {
	frame := types.Rect{X: 10, Y: 20, Width: 300, Height: 300}
	tr, err := FromNormalized(types.Rect{X: 0.5, Y: 0.25, Width: 0.5, Height: 0.25}, frame)
	require.NoError(t, err)

	assert.Equal(t, 2.0, tr.Scale)
	assert.True(t, tr.ManualZoomed)
	assert.Equal(t, types.Point{X: 300, Y: 150}, tr.Offset)
	assertRect(t, types.Rect{X: 10, Y: 95, Width: 300, Height: 150}, tr.MaskFrame)
	assertRect(t, types.Rect{Width: 600, Height: 600}, tr.ScrollBounds)
}

func TestFromNormalizedSquareKeepsMask(t *testing.T) {
	frame := types.Rect{X: 0, Y: 50, Width: 400, Height: 300}
	tr, err := FromNormalized(types.Rect{X: 0, Y: 0, Width: 1, Height: 1}, frame)
	require.NoError(t, err)
	assert.Equal(t, frame, tr.MaskFrame)
	assert.Equal(t, 1.0, tr.Scale)
}

func TestFromNormalizedInvalid(t *testing.T) {
	frame := types.Rect{Width: 100, Height: 100}
	tests := []struct {
		name  string
		n     types.Rect
		frame types.Rect
	}{
		{"zero width", types.Rect{Width: 0, Height: 1}, frame},
		{"too tall", types.Rect{Width: 0.5, Height: 1.5}, frame},
		{"negative x", types.Rect{X: -0.1, Width: 0.5, Height: 0.5}, frame},
		{"empty frame", types.Rect{Width: 0.5, Height: 0.5}, types.Rect{Width: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromNormalized(tt.n, tt.frame)
			assert.ErrorIs(t, err, types.ErrInvalidFrame)
		})
	}
}

func TestNormalizedRoundTrip(t *testing.T) {
	frames := []types.Rect{
		{X: 0, Y: 0, Width: 400, Height: 200},
		{X: 12, Y: 30, Width: 333, Height: 517},
	}
	rects := []types.Rect{
		{X: 0.25, Y: 0, Width: 0.5, Height: 1},
		{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.7},
		{X: 0.6, Y: 0.05, Width: 0.4, Height: 0.15},
		{X: 0, Y: 0, Width: 1, Height: 1},
		{X: 0.33, Y: 0.33, Width: 0.2, Height: 0.2},
	}
	for _, f := range frames {
		for _, n := range rects {
			tr, err := FromNormalized(n, f)
			require.NoError(t, err)
			assertRect(t, n, ToNormalized(tr, f))
		}
	}
}

func TestRescaleIdentity(t *testing.T) {
	mask := types.Rect{X: 0, Y: 100, Width: 400, Height: 200}
	tr := types.Transformation{
		Offset:       types.Point{X: 12, Y: 34},
		Scale:        1.7,
		MaskFrame:    mask,
		ScrollBounds: types.Rect{Width: 680, Height: 680},
	}

	got, err := Rescale(tr, mask, mask, types.Rect{Width: 400, Height: 400})
	require.NoError(t, err)
	assert.Equal(t, tr, got)
}

func TestRescale(t *testing.T) {
	tr := types.Transformation{
		Offset:       types.Point{X: 10, Y: 20},
		Scale:        3,
		MaskFrame:    types.Rect{Width: 200, Height: 100},
		ScrollBounds: types.Rect{Width: 400, Height: 400},
	}
	bounds := types.Rect{Width: 400, Height: 400}

	got, err := Rescale(tr, tr.MaskFrame, bounds, bounds)
	require.NoError(t, err)
	assert.Equal(t, types.Point{X: 20, Y: 40}, got.Offset)
	assert.Equal(t, 3.0, got.Scale)
	assertRect(t, types.Rect{Width: 800, Height: 800}, got.ScrollBounds)
	assertRect(t, types.Rect{X: 0, Y: 100, Width: 400, Height: 200}, got.MaskFrame)
}

func TestRescaleInvalid(t *testing.T) {
	tr := types.Transformation{Scale: 1, MaskFrame: types.Rect{Width: 10, Height: 10}}
	bounds := types.Rect{Width: 100, Height: 100}

	_, err := Rescale(tr, types.Rect{}, bounds, bounds)
	assert.ErrorIs(t, err, types.ErrInvalidFrame)

	_, err = Rescale(tr, tr.MaskFrame, types.Rect{X: 50, Width: 100, Height: 100}, bounds)
	assert.ErrorIs(t, err, types.ErrInvalidFrame)

	_, err = Rescale(tr, tr.MaskFrame, tr.MaskFrame, types.Rect{})
	assert.ErrorIs(t, err, types.ErrInvalidFrame)
}

func TestFitToBounds(t *testing.T) {
	tr := types.Transformation{
		Offset:       types.Point{X: 10, Y: 10},
		Scale:        1,
		MaskFrame:    types.Rect{Width: 100, Height: 50},
		ScrollBounds: types.Rect{Width: 100, Height: 100},
	}
	got, err := FitToBounds(tr, types.Rect{Width: 400, Height: 400}, types.Rect{X: 0, Y: 100, Width: 400, Height: 200})
	require.NoError(t, err)

	assert.Equal(t, types.Point{X: 40, Y: 40}, got.Offset)
	assertRect(t, types.Rect{X: 0, Y: 100, Width: 400, Height: 200}, got.MaskFrame)
	assertRect(t, types.Rect{Width: 400, Height: 400}, got.ScrollBounds)

	_, err = FitToBounds(types.Transformation{Scale: 1}, types.Rect{Width: 1, Height: 1}, types.Rect{})
	assert.ErrorIs(t, err, types.ErrInvalidFrame)
}

func TestDisplayedContentSize(t *testing.T) {
	v := types.Size{Width: 400, Height: 200}
	assert.Equal(t, types.Size{Width: 800, Height: 400},
		DisplayedContentSize(types.Transformation{Scale: 2}, v))
	assert.Equal(t, types.Size{Width: 200, Height: 400},
		DisplayedContentSize(types.Transformation{Scale: 1, RotationType: types.RotationLeft}, v))
}

func TestCropInfo(t *testing.T) {
	tr := types.Transformation{
		Offset:    types.Point{X: 200, Y: 0},
		Rotation:  0.1,
		Scale:     2,
		MaskFrame: types.Rect{Width: 400, Height: 400},
	}
	info := CropInfo(tr, tr.MaskFrame, types.Size{Width: 400, Height: 200})

	// content is 800x400 and the visible center is (400, 200)
	assert.Equal(t, types.Point{X: 0, Y: 0}, info.Translation)
	assert.Equal(t, 0.1, info.Rotation)
	assert.Equal(t, 2.0, info.Scale)
	assert.Equal(t, types.Size{Width: 400, Height: 400}, info.CropSize)
	assert.Equal(t, types.Size{Width: 400, Height: 200}, info.ImageViewSize)

	tr.Offset = types.Point{}
	info = CropInfo(tr, tr.MaskFrame, types.Size{Width: 400, Height: 200})
	assert.Equal(t, types.Point{X: 200, Y: 0}, info.Translation)
}

func TestImageRect(t *testing.T) {
	view := types.Size{Width: 400, Height: 200}
	image := types.Size{Width: 4000, Height: 2000}
	tests := []struct {
		name     string
		rotation types.RotationType
		mask     types.Rect
		want     types.Rect
	}{
		{"none", types.RotationNone, types.Rect{Width: 200, Height: 200}, types.Rect{Width: 2000, Height: 2000}},
		{"right", types.RotationRight, types.Rect{Width: 100, Height: 400}, types.Rect{X: 0, Y: 1000, Width: 4000, Height: 1000}},
		{"left", types.RotationLeft, types.Rect{Width: 100, Height: 400}, types.Rect{X: 0, Y: 0, Width: 4000, Height: 1000}},
		{"upside down", types.RotationUpsideDown, types.Rect{Width: 200, Height: 200}, types.Rect{X: 2000, Y: 0, Width: 2000, Height: 2000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := types.Transformation{Scale: 1, RotationType: tt.rotation, MaskFrame: tt.mask}
			assertRect(t, tt.want, ImageRect(tr, view, image))
		})
	}
}
