// Package cropper resolves crop edits into crop box frames and transformations.
package cropper

import (
	"math"
	"sync/atomic"

	"github.com/menta2k/image-cropper/internal/logging"
	"github.com/menta2k/image-cropper/pkg/mapper"
	"github.com/menta2k/image-cropper/pkg/ratio"
	"github.com/menta2k/image-cropper/pkg/types"
)

// frameTolerance absorbs floating point error when checking containment.
const frameTolerance = 1e-6

// State is the resolver state. Zoom and flip are tracked on the transformation.
type State int

const (
	Idle State = iota
	RatioLocked
	RotatingInFlight
)

func (s State) String() string {
	switch s {
	case RatioLocked:
		return "ratioLocked"
	case RotatingInFlight:
		return "rotatingInFlight"
	default:
		return "idle"
	}
}

// Result is the outcome of an operation.
type Result struct {
	Transformation types.Transformation
	CropBox        types.Rect
	// Changed is false when the operation was a no-op.
	Changed bool
	// Animated is a hint for the host renderer.
	Animated bool
	// AwaitingSelection is set when the host must present Candidates to the user.
	AwaitingSelection bool
	// Candidates is set whenever the ratio candidates had to be derived again.
	Candidates []ratio.Item
}

// Resolver owns the installed transformation and crop box of one image.
// It is not safe for concurrent use except for the rotation guard.
type Resolver struct {
	cfg       Config
	imageSize types.Size

	contentBounds types.Rect
	origin        types.Rect

	current     types.Transformation
	cropBox     types.Rect
	aspectRatio float64
	ratioLocked bool

	rotating atomic.Bool
}

// NewResolver creates a resolver for an image of imageSize shown in contentBounds.
// A preset fixed ratio from cfg is applied immediately.
func NewResolver(imageSize types.Size, contentBounds types.Rect, cfg Config) (*Resolver, error) {
	const op = "new resolver"
	if imageSize.IsEmpty() {
		return nil, types.Errorf(op, types.ErrInvalidFrame, "image size %.1fx%.1f", imageSize.Width, imageSize.Height)
	}
	if contentBounds.IsEmpty() {
		return nil, types.Errorf(op, types.ErrInvalidFrame, "empty content bounds")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		cfg:           cfg.effective(),
		imageSize:     imageSize,
		contentBounds: contentBounds,
		origin:        originFrame(imageSize, contentBounds),
	}
	r.current = r.originalTransformation()
	r.cropBox = r.origin

	if p := r.cfg.PresetFixedRatio; p.Ratio > 0 {
		if _, err := r.SetFixedRatio(p.Ratio, true); err != nil {
			return nil, err
		}
	}

	logging.Logger().Debug("resolver created",
		"image", imageSize, "bounds", contentBounds, "origin", r.origin)
	return r, nil
}

// originFrame fits the unrotated image into bounds.
func originFrame(imageSize types.Size, bounds types.Rect) types.Rect {
	fitted, _ := types.FitAspect(imageSize, bounds.Size())
	return bounds.CenteredIn(fitted)
}

func (r *Resolver) originalTransformation() types.Transformation {
	return types.Transformation{
		Scale:            1,
		InitialMaskFrame: r.origin,
		MaskFrame:        r.origin,
		ScrollBounds:     types.RectOf(types.Point{}, r.origin.Size()),
	}
}

// Transformation returns the installed transformation.
func (r *Resolver) Transformation() types.Transformation { return r.current }

// CropBox returns the installed crop box frame.
func (r *Resolver) CropBox() types.Rect { return r.cropBox }

// ContentBounds returns the content bounds the crop box is laid out in.
func (r *Resolver) ContentBounds() types.Rect { return r.contentBounds }

// OriginFrame returns the crop box of the untouched image.
func (r *Resolver) OriginFrame() types.Rect { return r.origin }

// AspectRatio returns the installed fixed ratio, or 0 when none was set.
func (r *Resolver) AspectRatio() float64 { return r.aspectRatio }

// Config returns the effective configuration.
func (r *Resolver) Config() Config { return r.cfg }

// State returns the current state.
func (r *Resolver) State() State {
	switch {
	case r.rotating.Load():
		return RotatingInFlight
	case r.ratioLocked:
		return RatioLocked
	default:
		return Idle
	}
}

// CropInfo summarizes the installed crop.
func (r *Resolver) CropInfo() types.CropInfo {
	return mapper.CropInfo(r.current, r.cropBox, r.origin.Size())
}

// ImageRect returns the installed crop in original image pixels.
func (r *Resolver) ImageRect() types.Rect {
	return mapper.ImageRect(r.current, r.origin.Size(), r.imageSize)
}

// NormalizedRect returns the installed crop relative to the displayed content.
func (r *Resolver) NormalizedRect() types.Rect {
	content := mapper.DisplayedContentSize(r.current, r.origin.Size())
	return types.Rect{
		X:      r.current.Offset.X / content.Width,
		Y:      r.current.Offset.Y / content.Height,
		Width:  r.cropBox.Width / content.Width,
		Height: r.cropBox.Height / content.Height,
	}
}

// DisplayAngle clamps a straightening angle for display.
func (r *Resolver) DisplayAngle(a types.Angle) types.Angle {
	return a.Clamp(r.cfg.AngleShowLimit)
}

func (r *Resolver) ratioTypeFor(rot types.RotationType) types.RatioType {
	return ratio.ResolveRatioType(r.cfg.FixRatiosShowType, r.imageSize.Width > r.imageSize.Height, rot)
}

// originalRatioHFor returns the horizontal form of the displayed image aspect, so that the
// value picked for the ratio type matches the image as shown.
func (r *Resolver) originalRatioHFor(rot types.RotationType) float64 {
	shown := r.imageSize
	if rot.IsSideways() {
		shown = shown.Swapped()
	}
	if r.ratioTypeFor(rot) == types.Vertical {
		return 1 / shown.AspectRatio()
	}
	return shown.AspectRatio()
}

func (r *Resolver) managerFor(rot types.RotationType) (*ratio.Manager, error) {
	return ratio.NewManager(r.ratioTypeFor(rot), r.originalRatioHFor(rot), r.cfg.RatioOptions, r.cfg.CustomRatios)
}

// Manager derives the ratio candidates for the image as currently displayed.
func (r *Resolver) Manager() (*ratio.Manager, error) {
	return r.managerFor(r.current.RotationType)
}

// Candidates returns the ratio candidates for the image as currently displayed.
func (r *Resolver) Candidates() ([]ratio.Item, error) {
	m, err := r.Manager()
	if err != nil {
		return nil, err
	}
	return m.Ratios(), nil
}

func (r *Resolver) result(changed bool) Result {
	return Result{Transformation: r.current, CropBox: r.cropBox, Changed: changed}
}

// check validates a candidate state against bounds before it is installed.
func (r *Resolver) check(op string, t types.Transformation, box, bounds types.Rect) error {
	if err := t.Validate(); err != nil {
		return &types.GeometryError{Op: op, Err: err}
	}
	if box.IsEmpty() {
		return types.Errorf(op, types.ErrInvalidFrame, "crop box %.3fx%.3f", box.Width, box.Height)
	}
	if minSize := r.cfg.MinimumCropBoxSize; box.Width < minSize-frameTolerance || box.Height < minSize-frameTolerance {
		return types.Errorf(op, types.ErrInvalidFrame, "crop box %.1fx%.1f below minimum %.1f", box.Width, box.Height, minSize)
	}
	if !bounds.Contains(box, frameTolerance) {
		return types.Errorf(op, types.ErrInvalidFrame, "crop box %+v outside content bounds %+v", box, bounds)
	}
	if !r.covers(t, box) {
		return types.Errorf(op, types.ErrInvalidFrame, "crop box %+v not covered by the image", box)
	}
	return nil
}

// cropCenter returns the crop center in unrotated content coordinates at scale 1, and the
// content size at scale 1.
func (r *Resolver) cropCenter(t types.Transformation, box types.Rect) (types.Point, types.Size) {
	base := mapper.DisplayedContentSize(t.WithScale(1), r.origin.Size())
	mid := types.Point{X: base.Width / 2, Y: base.Height / 2}
	half := types.Point{X: box.Width / 2, Y: box.Height / 2}
	return mid.Add(t.Offset.Add(half).Scaled(1 / t.Scale).Sub(mid).Rotated(-t.FineRotation())), base
}

// halfExtents returns the half size of box turned by fine, measured along the content axes.
func halfExtents(box types.Rect, fine float64) (float64, float64) {
	c, s := math.Abs(math.Cos(fine)), math.Abs(math.Sin(fine))
	return (box.Width*c + box.Height*s) / 2, (box.Width*s + box.Height*c) / 2
}

// covers reports whether the content of t, turned by its fine rotation, lies under all of box.
func (r *Resolver) covers(t types.Transformation, box types.Rect) bool {
	center, base := r.cropCenter(t, box)
	ex, ey := halfExtents(box, t.FineRotation())
	ex, ey = ex/t.Scale, ey/t.Scale
	tol := frameTolerance / t.Scale
	return center.X >= ex-tol && base.Width-center.X >= ex-tol &&
		center.Y >= ey-tol && base.Height-center.Y >= ey-tol
}

// install replaces the installed state. Callers validate with check first.
func (r *Resolver) install(t types.Transformation, box types.Rect) {
	t.MaskFrame = box
	r.current = t
	r.cropBox = box
}

// fixedRatioCropBox fits value inside from around its center. With zoom the box is then
// enlarged to fill the content bounds and the content scales with it.
func (r *Resolver) fixedRatioCropBox(t types.Transformation, from types.Rect, value float64, zoom bool) (types.Transformation, types.Rect) {
	size := from.Size()
	shrunk := types.Size{Width: size.Height * value, Height: size.Height}
	if value > size.AspectRatio() {
		shrunk = types.Size{Width: size.Width, Height: size.Width / value}
	}
	box := from.CenteredIn(shrunk)
	t.Offset = t.Offset.Add(box.Origin().Sub(from.Origin()))
	if !zoom {
		t.MaskFrame = box
		return t, box
	}

	fitted, f := types.FitAspect(shrunk, r.contentBounds.Size())
	box = r.contentBounds.CenteredIn(fitted)
	t.Offset = t.Offset.Scaled(f)
	t.ScrollBounds = t.ScrollBounds.Scaled(f)
	t = t.WithScale(t.Scale * f)
	t.MaskFrame = box
	return t, box
}

// SetFixedRatio locks the crop box to value. Setting the installed ratio again is a no-op.
func (r *Resolver) SetFixedRatio(value float64, zoom bool) (Result, error) {
	const op = "set fixed ratio"
	if !(value > 0) || math.IsInf(value, 0) {
		return r.result(false), types.Errorf(op, types.ErrInvalidRatio, "%v", value)
	}
	if r.aspectRatio == value {
		r.ratioLocked = true
		return r.result(false), nil
	}

	t, box := r.fixedRatioCropBox(r.current, r.cropBox, value, zoom)
	if err := r.check(op, t, box, r.contentBounds); err != nil {
		return r.result(false), err
	}
	r.aspectRatio = value
	r.ratioLocked = true
	r.install(t, box)

	logging.Logger().Debug("fixed ratio set", "ratio", value, "zoom", zoom, "cropBox", box)
	res := r.result(true)
	res.Animated = r.cfg.PresetFixedRatio.Kind != AlwaysUsingOnePresetFixedRatio
	return res, nil
}

// SelectRatio applies a candidate picked from a presented list. The box is not zoomed.
func (r *Resolver) SelectRatio(item ratio.Item) (Result, error) {
	return r.SetFixedRatio(item.Value(r.ratioTypeFor(r.current.RotationType)), false)
}

// ToggleRatioLock unlocks a locked ratio. Otherwise it derives the candidates: a single
// candidate is applied at once, several are returned for presentation.
func (r *Resolver) ToggleRatioLock() (Result, error) {
	const op = "toggle ratio lock"
	if r.ratioLocked {
		if r.cfg.PresetFixedRatio.Kind == AlwaysUsingOnePresetFixedRatio {
			return r.result(false), types.Errorf(op, types.ErrOperationRejected, "ratio is pinned")
		}
		r.ratioLocked = false
		return r.result(true), nil
	}

	m, err := r.Manager()
	if err != nil {
		return r.result(false), err
	}
	if m.Count() == 0 {
		return r.result(false), types.Errorf(op, types.ErrEmptyCandidateList, "no ratio enabled")
	}
	if item, ok := m.Single(); ok {
		res, err := r.SetFixedRatio(m.Value(item), true)
		res.Candidates = m.Ratios()
		return res, err
	}
	res := r.result(false)
	res.AwaitingSelection = true
	res.Candidates = m.Ratios()
	return res, nil
}

// Reset restores the untouched image and derives the ratio candidates again.
// A pinned ratio is applied again afterwards.
func (r *Resolver) Reset() (Result, error) {
	const op = "reset"
	t := r.originalTransformation()
	box := r.origin
	aspect := 0.0
	locked := false
	if p := r.cfg.PresetFixedRatio; p.Kind == AlwaysUsingOnePresetFixedRatio && p.Ratio > 0 {
		t, box = r.fixedRatioCropBox(t, box, p.Ratio, true)
		aspect, locked = p.Ratio, true
	}
	if err := r.check(op, t, box, r.contentBounds); err != nil {
		return r.result(false), err
	}
	m, err := r.managerFor(types.RotationNone)
	if err != nil {
		return r.result(false), err
	}

	r.aspectRatio, r.ratioLocked = aspect, locked
	r.install(t, box)

	logging.Logger().Debug("reset", "cropBox", box)
	res := r.result(true)
	res.Candidates = m.Ratios()
	return res, nil
}

// FlipHorizontal toggles the mirroring flag.
func (r *Resolver) FlipHorizontal() (Result, error) {
	r.current = r.current.WithFlip(!r.current.IsFlippedHorizontally)
	return r.result(true), nil
}

// AlterCropper90Degree swaps portrait and landscape framing while staying in fixed ratio mode.
func (r *Resolver) AlterCropper90Degree() (Result, error) {
	const op = "alter cropper 90 degree"
	value := r.cropBox.Height / r.cropBox.Width
	t, box := r.fixedRatioCropBox(r.current, r.cropBox, value, true)
	if err := r.check(op, t, box, r.contentBounds); err != nil {
		return r.result(false), err
	}
	r.aspectRatio = value
	r.ratioLocked = true
	r.install(t, box)
	res := r.result(true)
	res.Animated = true
	return res, nil
}

// Straighten sets the fine rotation, clamped by the rotation limit. The point of the image
// under the crop center stays put and the scale grows when needed so the rotated content
// still covers the whole crop box.
func (r *Resolver) Straighten(angle types.Angle) (Result, error) {
	const op = "straighten"
	fine := angle.Clamp(r.cfg.RotationLimit).Radians()
	t := r.current
	box := r.cropBox

	center, base := r.cropCenter(t, box)
	dx := math.Min(center.X, base.Width-center.X)
	dy := math.Min(center.Y, base.Height-center.Y)
	if !(dx > 0) || !(dy > 0) {
		return r.result(false), types.Errorf(op, types.ErrInvalidFrame, "crop center %+v outside content %+v", center, base)
	}
	ex, ey := halfExtents(box, fine)
	scale := math.Max(t.Scale, math.Max(ex/dx, ey/dy))

	mid := types.Point{X: base.Width / 2, Y: base.Height / 2}
	half := types.Point{X: box.Width / 2, Y: box.Height / 2}
	nt := t.WithScale(scale)
	nt.Rotation = t.RotationType.Radians() + fine
	nt.Offset = mid.Add(center.Sub(mid).Rotated(fine)).Scaled(scale).Sub(half)
	nt.ScrollBounds = types.RectOf(types.Point{}, base.Scaled(scale))
	if err := r.check(op, nt, box, r.contentBounds); err != nil {
		return r.result(false), err
	}
	r.install(nt, box)
	return r.result(true), nil
}
