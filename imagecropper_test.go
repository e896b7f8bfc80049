package imagecropper

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/ratio"
	"github.com/menta2k/image-cropper/pkg/types"
)

var bounds = types.Rect{Width: 400, Height: 400}

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Create a pattern with a bright subject right of the center
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/2 && x < 3*width/4 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

func newEditor(t *testing.T, width, height int) *Editor {
	t.Helper()
	editor, err := NewEditor(createTestImage(width, height), bounds, cropper.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}
	return editor
}

func TestRatioCandidates(t *testing.T) {
	items, err := RatioCandidates(1.5, types.Horizontal, ratio.Original|ratio.Square, nil)
	if err != nil {
		t.Fatalf("RatioCandidates failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(items))
	}
	if items[0].NameH != "original" || items[0].RatioH != 1.5 || math.Abs(items[0].RatioV-0.667) > 1e-3 {
		t.Errorf("Unexpected original item %+v", items[0])
	}
	if items[1].NameH != "1:1" || items[1].RatioH != 1 || items[1].RatioV != 1 {
		t.Errorf("Unexpected square item %+v", items[1])
	}

	items, err = RatioCandidates(0.5, types.Vertical, ratio.Original, nil)
	if err != nil {
		t.Fatalf("RatioCandidates failed: %v", err)
	}
	if items[0].Value(types.Vertical) != 0.5 {
		t.Errorf("Expected vertical original 0.5, got %f", items[0].Value(types.Vertical))
	}

	if _, err := RatioCandidates(0, types.Horizontal, ratio.All, nil); err == nil {
		t.Error("Zero aspect should fail")
	}
}

func TestNewEditor(t *testing.T) {
	editor := newEditor(t, 800, 400)

	if editor.Info().Width != 800 || editor.Info().Height != 400 {
		t.Errorf("Unexpected info %+v", editor.Info())
	}
	if editor.Resolver().State() != cropper.Idle {
		t.Errorf("Expected idle state, got %s", editor.Resolver().State())
	}

	candidates, err := editor.Candidates()
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(candidates) != 8 {
		t.Errorf("Expected 8 candidates, got %d", len(candidates))
	}

	if _, err := NewEditor(createTestImage(10, 10), types.Rect{}, cropper.DefaultConfig()); err == nil {
		t.Error("Empty bounds should fail")
	}
}

func TestNewEditorFromReader(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(300, 200)); err != nil {
		t.Fatal(err)
	}
	editor, err := NewEditorFromReader(&buf, bounds, cropper.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEditorFromReader failed: %v", err)
	}
	if editor.Info().Width != 300 {
		t.Errorf("Expected width 300, got %d", editor.Info().Width)
	}
}

func TestExportAfterEdits(t *testing.T) {
	editor := newEditor(t, 800, 400)

	ops := []cropper.Operation{
		cropper.SetFixedRatioOp{Ratio: 1, Zoom: true},
		cropper.RotateBy90Op{Angle: math.Pi / 2},
		cropper.FlipHorizontalOp{},
	}
	for _, op := range ops {
		if _, err := editor.Resolve(op); err != nil {
			t.Fatalf("%T failed: %v", op, err)
		}
	}

	out, err := editor.Export(context.Background())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	// the centered square of an 800x400 image
	if out.Bounds().Dx() != 400 || out.Bounds().Dy() != 400 {
		t.Errorf("Expected 400x400 export, got %v", out.Bounds())
	}

	// the general path renders the same crop
	general, err := processing.NewProcessor().ExportCrop(context.Background(), editor.Image(), editor.CropInfo(), true)
	if err != nil {
		t.Fatalf("ExportCrop failed: %v", err)
	}
	if general.Bounds().Size() != out.Bounds().Size() {
		t.Errorf("Expected %v from ExportCrop, got %v", out.Bounds().Size(), general.Bounds().Size())
	}

	if _, err := editor.Resolve(cropper.StraightenOp{Angle: types.Degrees(10)}); err != nil {
		t.Fatalf("Straighten failed: %v", err)
	}
	straight, err := editor.Export(context.Background())
	if err != nil {
		t.Fatalf("Export after straighten failed: %v", err)
	}
	if d := straight.Bounds().Dx() - straight.Bounds().Dy(); d < -1 || d > 1 {
		t.Errorf("Expected a square export, got %v", straight.Bounds())
	}
}

func TestSave(t *testing.T) {
	editor := newEditor(t, 200, 100)
	path := filepath.Join(t.TempDir(), "out.png")

	if err := editor.Save(context.Background(), path, "png", 90, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	editor2, err := LoadEditor(path, bounds, cropper.DefaultConfig())
	if err != nil {
		t.Fatalf("LoadEditor failed: %v", err)
	}
	if editor2.Info().Width != 200 || editor2.Info().Height != 100 {
		t.Errorf("Unexpected saved size %+v", editor2.Info())
	}
}

func TestApplySmartCrop(t *testing.T) {
	editor := newEditor(t, 400, 300)

	res, err := editor.ApplySmartCrop(context.Background(), 1)
	if err != nil {
		t.Fatalf("ApplySmartCrop failed: %v", err)
	}
	if editor.Resolver().State() != cropper.RatioLocked {
		t.Errorf("Expected locked ratio, got %s", editor.Resolver().State())
	}
	if math.Abs(res.CropBox.AspectRatio()-1) > 1e-6 {
		t.Errorf("Expected square crop box, got %+v", res.CropBox)
	}

	overlay, err := editor.DebugOverlay(types.Rect{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5})
	if err != nil {
		t.Fatalf("DebugOverlay failed: %v", err)
	}
	if overlay.Bounds().Size() != editor.Image().Bounds().Size() {
		t.Errorf("Overlay size %v differs from image", overlay.Bounds())
	}
}

func TestApplySmartCropKeepsEditsOnError(t *testing.T) {
	editor := newEditor(t, 800, 400)
	if _, err := editor.Resolve(cropper.SetFixedRatioOp{Ratio: 1, Zoom: true}); err != nil {
		t.Fatalf("SetFixedRatio failed: %v", err)
	}
	before := editor.Resolver().Transformation()
	box := editor.Resolver().CropBox()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := editor.ApplySmartCrop(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	if editor.Resolver().Transformation() != before {
		t.Errorf("Transformation changed to %+v", editor.Resolver().Transformation())
	}
	if editor.Resolver().CropBox() != box {
		t.Errorf("Crop box changed to %+v", editor.Resolver().CropBox())
	}
	if editor.Resolver().State() != cropper.RatioLocked {
		t.Errorf("Expected locked ratio, got %s", editor.Resolver().State())
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected version %s, got %s", Version, GetVersion())
	}
}
