package cropper

import (
	"github.com/menta2k/image-cropper/pkg/ratio"
	"github.com/menta2k/image-cropper/pkg/types"
)

// Operation is an edit command accepted by Resolve.
type Operation interface {
	apply(r *Resolver) (Result, error)
}

type (
	SetFixedRatioOp struct {
		Ratio float64
		Zoom  bool
	}
	SelectRatioOp struct {
		Item ratio.Item
	}
	ToggleRatioLockOp      struct{}
	ResetOp                struct{}
	FlipHorizontalOp       struct{}
	AlterCropper90DegreeOp struct{}
	// RotateBy90Op turns by Angle, which must be plus or minus pi/2.
	RotateBy90Op struct {
		Angle float64
	}
	ApplyPresetOp struct {
		Preset Preset
	}
	UpdateContentBoundsOp struct {
		Bounds types.Rect
	}
	StraightenOp struct {
		Angle types.Angle
	}
	// RestoreWithRatioOp resets, restores Preset and locks Ratio as one edit.
	RestoreWithRatioOp struct {
		Preset Preset
		Ratio  float64
	}
)

func (o SetFixedRatioOp) apply(r *Resolver) (Result, error) { return r.SetFixedRatio(o.Ratio, o.Zoom) }
func (o SelectRatioOp) apply(r *Resolver) (Result, error)   { return r.SelectRatio(o.Item) }
func (ToggleRatioLockOp) apply(r *Resolver) (Result, error) { return r.ToggleRatioLock() }
func (ResetOp) apply(r *Resolver) (Result, error)           { return r.Reset() }
func (FlipHorizontalOp) apply(r *Resolver) (Result, error)  { return r.FlipHorizontal() }
func (AlterCropper90DegreeOp) apply(r *Resolver) (Result, error) {
	return r.AlterCropper90Degree()
}
func (o RotateBy90Op) apply(r *Resolver) (Result, error) { return r.RotateBy90(o.Angle, nil) }
func (o ApplyPresetOp) apply(r *Resolver) (Result, error) {
	if o.Preset == nil {
		return r.result(false), types.Errorf("apply preset", types.ErrInvalidFrame, "nil preset")
	}
	return r.ApplyPreset(o.Preset)
}
func (o UpdateContentBoundsOp) apply(r *Resolver) (Result, error) {
	return r.UpdateContentBounds(o.Bounds)
}
func (o StraightenOp) apply(r *Resolver) (Result, error) { return r.Straighten(o.Angle) }
func (o RestoreWithRatioOp) apply(r *Resolver) (Result, error) {
	return r.RestoreWithRatio(o.Preset, o.Ratio)
}

// Resolve runs op against the installed state. On error the installed state is unchanged.
func (r *Resolver) Resolve(op Operation) (Result, error) {
	return op.apply(r)
}
