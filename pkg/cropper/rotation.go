package cropper

import (
	"math"

	"github.com/menta2k/image-cropper/internal/logging"
	"github.com/menta2k/image-cropper/pkg/mapper"
	"github.com/menta2k/image-cropper/pkg/types"
)

// quarterTurn returns +1 for a clockwise quarter turn and -1 for a counter clockwise one.
func quarterTurn(angle float64) (int, bool) {
	const tol = 1e-9
	switch {
	case math.Abs(angle-math.Pi/2) < tol:
		return 1, true
	case math.Abs(angle+math.Pi/2) < tol:
		return -1, true
	}
	return 0, false
}

// PendingRotation is a computed quarter turn waiting to be installed. While it is pending
// every other rotation request is rejected.
type PendingRotation struct {
	r      *Resolver
	t      types.Transformation
	box    types.Rect
	aspect float64
	result Result
	done   bool
}

// BeginRotateBy90 computes a rotation by angle, which must be exactly plus or minus pi/2.
// Positive angles turn clockwise. The caller must Commit or Cancel the returned rotation.
func (r *Resolver) BeginRotateBy90(angle float64) (*PendingRotation, error) {
	const op = "rotate by 90"
	dir, ok := quarterTurn(angle)
	if !ok {
		return nil, types.Errorf(op, types.ErrOperationRejected, "angle %v is not a quarter turn", angle)
	}
	if !r.rotating.CompareAndSwap(false, true) {
		logging.Logger().Debug("rotation rejected", "reason", "in flight")
		return nil, types.Errorf(op, types.ErrOperationRejected, "rotation in flight")
	}

	p, err := r.rotated(op, dir)
	if err != nil {
		r.rotating.Store(false)
		return nil, err
	}
	return p, nil
}

func (r *Resolver) rotated(op string, dir int) (*PendingRotation, error) {
	t := r.current
	old := r.cropBox
	content := mapper.DisplayedContentSize(t, r.origin.Size())

	fitted, _ := types.FitAspect(old.Size().Swapped(), r.contentBounds.Size())
	box := r.contentBounds.CenteredIn(fitted)
	f := box.Width / old.Height

	var offset types.Point
	if dir > 0 {
		offset = types.Point{X: content.Height - (t.Offset.Y + old.Height), Y: t.Offset.X}
	} else {
		offset = types.Point{X: t.Offset.Y, Y: content.Width - (t.Offset.X + old.Width)}
	}

	fine := t.FineRotation()
	nt := t.WithScale(t.Scale * f)
	nt.Offset = offset.Scaled(f)
	nt.RotationType = types.QuarterTurns(int(t.RotationType) + dir)
	nt.Rotation = nt.RotationType.Radians() + fine
	nt.ScrollBounds = types.RectOf(types.Point{}, content.Swapped().Scaled(f))
	if err := r.check(op, nt, box, r.contentBounds); err != nil {
		return nil, err
	}

	m, err := r.managerFor(nt.RotationType)
	if err != nil {
		return nil, err
	}

	aspect := r.aspectRatio
	if r.ratioLocked {
		aspect = box.Width / box.Height
	}
	nt.MaskFrame = box
	return &PendingRotation{
		r:      r,
		t:      nt,
		box:    box,
		aspect: aspect,
		result: Result{
			Transformation: nt,
			CropBox:        box,
			Changed:        true,
			Animated:       true,
			Candidates:     m.Ratios(),
		},
	}, nil
}

// Result returns the outcome the rotation installs on Commit.
func (p *PendingRotation) Result() Result { return p.result }

func (p *PendingRotation) install() {
	if p.done {
		return
	}
	p.r.aspectRatio = p.aspect
	p.r.install(p.t, p.box)
	logging.Logger().Debug("rotated", "rotation", p.t.RotationType, "cropBox", p.box)
}

func (p *PendingRotation) release() {
	if p.done {
		return
	}
	p.done = true
	p.r.rotating.Store(false)
}

// Commit installs the rotation and releases the guard.
func (p *PendingRotation) Commit() Result {
	p.install()
	p.release()
	return p.result
}

// Cancel releases the guard without installing anything.
func (p *PendingRotation) Cancel() {
	p.release()
}

// RotateBy90 rotates by a quarter turn and runs onComplete before releasing the guard,
// so a rotation requested from onComplete is rejected.
func (r *Resolver) RotateBy90(angle float64, onComplete func(Result)) (Result, error) {
	p, err := r.BeginRotateBy90(angle)
	if err != nil {
		return r.result(false), err
	}
	defer p.release()

	p.install()
	if onComplete != nil {
		onComplete(p.result)
	}
	return p.result, nil
}
