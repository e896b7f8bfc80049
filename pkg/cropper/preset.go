package cropper

import (
	"math"

	"github.com/menta2k/image-cropper/internal/logging"
	"github.com/menta2k/image-cropper/pkg/mapper"
	"github.com/menta2k/image-cropper/pkg/types"
)

// Preset is a previously captured crop to restore.
type Preset interface {
	source(origin types.Rect) (types.Transformation, error)
}

// PresetInfo restores a captured transformation.
type PresetInfo struct {
	Transformation types.Transformation
}

func (p PresetInfo) source(types.Rect) (types.Transformation, error) {
	t := p.Transformation
	if err := t.Validate(); err != nil {
		return types.Transformation{}, &types.GeometryError{Op: "preset info", Err: err}
	}
	if t.InitialMaskFrame.IsEmpty() {
		return types.Transformation{}, types.Errorf("preset info", types.ErrInvalidFrame, "empty initial mask frame")
	}
	return t, nil
}

// PresetNormalized restores a crop described relative to the untouched image.
type PresetNormalized struct {
	Rect types.Rect
}

func (p PresetNormalized) source(origin types.Rect) (types.Transformation, error) {
	return mapper.FromNormalized(p.Rect, origin)
}

// resolveTransformation lays src out in bounds, where origin is the crop box of the
// untouched image. The first phase realizes the crop box the layout can actually show; the
// second corrects the scale by how far the realized box departs from the requested one.
func (r *Resolver) resolveTransformation(op string, src types.Transformation, bounds, origin types.Rect) (types.Transformation, types.Rect, error) {
	// realize
	fitted, err := mapper.FitToBounds(src, bounds, origin)
	if err != nil {
		return types.Transformation{}, types.Rect{}, err
	}
	realized := fitted.MaskFrame.Intersect(bounds)
	if realized.IsEmpty() {
		return types.Transformation{}, types.Rect{}, types.Errorf(op, types.ErrInvalidFrame,
			"mask %+v outside content bounds %+v", fitted.MaskFrame, bounds)
	}

	// adjust
	adjust := (realized.Width / origin.Width) / (src.MaskFrame.Width / src.InitialMaskFrame.Width)
	out := fitted.WithScale(src.Scale * adjust)
	out.InitialMaskFrame = origin
	if realized != fitted.MaskFrame {
		if out, err = mapper.Rescale(out, fitted.MaskFrame, realized, bounds); err != nil {
			return types.Transformation{}, types.Rect{}, err
		}
	}
	out.ScrollBounds = types.RectOf(types.Point{}, mapper.DisplayedContentSize(out, origin.Size()))
	out.MaskFrame = realized
	return out, realized, nil
}

// ApplyPreset restores p. Under the one fixed ratio policy the ratio is locked to the
// configured ratio, or to the restored crop box's own aspect when none is configured.
func (r *Resolver) ApplyPreset(p Preset) (Result, error) {
	const op = "apply preset"
	src, err := p.source(r.origin)
	if err != nil {
		return r.result(false), err
	}
	t, box, err := r.resolveTransformation(op, src, r.contentBounds, r.origin)
	if err != nil {
		return r.result(false), err
	}

	aspect, locked := 0.0, false
	if pf := r.cfg.PresetFixedRatio; pf.Kind == AlwaysUsingOnePresetFixedRatio {
		aspect, locked = box.Width/box.Height, true
		if pf.Ratio > 0 {
			aspect = pf.Ratio
			t, box = r.fixedRatioCropBox(t, box, aspect, false)
		}
	}
	if err := r.check(op, t, box, r.contentBounds); err != nil {
		return r.result(false), err
	}

	r.aspectRatio, r.ratioLocked = aspect, locked
	r.install(t, box)
	logging.Logger().Debug("preset applied", "cropBox", box, "scale", t.Scale)
	return r.result(true), nil
}

// UpdateContentBounds lays the installed crop out again in new content bounds, as after a
// device rotation. The ratio lock is kept.
func (r *Resolver) UpdateContentBounds(bounds types.Rect) (Result, error) {
	const op = "update content bounds"
	if bounds.IsEmpty() {
		return r.result(false), types.Errorf(op, types.ErrInvalidFrame, "empty content bounds")
	}
	origin := originFrame(r.imageSize, bounds)
	t, box, err := r.resolveTransformation(op, r.current, bounds, origin)
	if err != nil {
		return r.result(false), err
	}
	if err := r.check(op, t, box, bounds); err != nil {
		return r.result(false), err
	}

	r.contentBounds = bounds
	r.origin = origin
	r.install(t, box)
	logging.Logger().Debug("content bounds updated", "bounds", bounds, "cropBox", box)
	return r.result(true), nil
}

// state is the part of a Resolver that edits replace.
type state struct {
	current     types.Transformation
	cropBox     types.Rect
	aspectRatio float64
	ratioLocked bool
}

func (r *Resolver) save() state {
	return state{current: r.current, cropBox: r.cropBox, aspectRatio: r.aspectRatio, ratioLocked: r.ratioLocked}
}

func (r *Resolver) restore(s state) {
	r.current, r.cropBox = s.current, s.cropBox
	r.aspectRatio, r.ratioLocked = s.aspectRatio, s.ratioLocked
}

// RestoreWithRatio starts over from the untouched image, restores p and locks value, all as
// one edit. If any step fails the previously installed state is put back.
func (r *Resolver) RestoreWithRatio(p Preset, value float64) (Result, error) {
	const op = "restore with ratio"
	if p == nil {
		return r.result(false), types.Errorf(op, types.ErrInvalidFrame, "nil preset")
	}
	if !(value > 0) || math.IsInf(value, 0) {
		return r.result(false), types.Errorf(op, types.ErrInvalidRatio, "%v", value)
	}

	saved := r.save()
	steps := []func() (Result, error){
		r.Reset,
		func() (Result, error) { return r.ApplyPreset(p) },
		func() (Result, error) { return r.SetFixedRatio(value, false) },
	}
	var res Result
	for _, step := range steps {
		var err error
		if res, err = step(); err != nil {
			r.restore(saved)
			return r.result(false), err
		}
	}
	res.Changed = true
	return res, nil
}
