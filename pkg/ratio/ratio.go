// Package ratio derives the fixed aspect ratios offered for an image.
package ratio

import (
	"fmt"
	"math"

	"github.com/menta2k/image-cropper/pkg/types"
)

// Item is a candidate aspect ratio in both orientations. Names are display-only.
type Item struct {
	NameH  string  `json:"name_h" yaml:"name_h"`
	RatioH float64 `json:"ratio_h" yaml:"ratio_h"`
	NameV  string  `json:"name_v" yaml:"name_v"`
	RatioV float64 `json:"ratio_v" yaml:"ratio_v"`
}

// NewItem builds an Item from a horizontal width:height pair.
func NewItem(width, height int) (Item, error) {
	if width <= 0 || height <= 0 {
		return Item{}, types.Errorf("ratio item", types.ErrInvalidRatio, "%d:%d", width, height)
	}
	return Item{
		NameH:  fmt.Sprintf("%d:%d", width, height),
		RatioH: float64(width) / float64(height),
		NameV:  fmt.Sprintf("%d:%d", height, width),
		RatioV: float64(height) / float64(width),
	}, nil
}

// Value returns the ratio representation natural for t.
func (i Item) Value(t types.RatioType) float64 {
	if t == types.Horizontal {
		return i.RatioH
	}
	return i.RatioV
}

// Name returns the display name natural for t.
func (i Item) Name(t types.RatioType) string {
	if t == types.Horizontal {
		return i.NameH
	}
	return i.NameV
}

// Options is a filter over the built-in ratios.
type Options uint

const (
	Original Options = 1 << iota
	Square
	Ratio3x2
	Ratio5x3
	Ratio4x3
	Ratio5x4
	Ratio7x5
	Ratio16x9

	None Options = 0
	All  Options = Original | Square | Ratio3x2 | Ratio5x3 | Ratio4x3 | Ratio5x4 | Ratio7x5 | Ratio16x9
)

// Contains reports whether every bit of o2 is set in o.
func (o Options) Contains(o2 Options) bool {
	return o&o2 == o2
}

// builtins lists the canonical horizontal pairs in presentation order.
var builtins = []struct {
	option        Options
	width, height int
}{
	{Ratio3x2, 3, 2},
	{Ratio5x3, 5, 3},
	{Ratio4x3, 4, 3},
	{Ratio5x4, 5, 4},
	{Ratio7x5, 7, 5},
	{Ratio16x9, 16, 9},
}

var optionNames = map[string]Options{
	"original": Original,
	"square":   Square,
	"1:1":      Square,
	"3:2":      Ratio3x2,
	"5:3":      Ratio5x3,
	"4:3":      Ratio4x3,
	"5:4":      Ratio5x4,
	"7:5":      Ratio7x5,
	"16:9":     Ratio16x9,
	"all":      All,
	"none":     None,
}

// ParseOptions combines named options ("original", "square", "3:2", ..., "all", "none").
func ParseOptions(names []string) (Options, error) {
	var o Options
	for _, n := range names {
		v, ok := optionNames[n]
		if !ok {
			return None, fmt.Errorf("unknown ratio option %q", n)
		}
		o |= v
	}
	return o, nil
}

// CustomRatio is a user-declared width:height pair in horizontal form.
type CustomRatio struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Horizontal declares a custom ratio by its horizontal width and height.
func Horizontal(width, height int) CustomRatio {
	return CustomRatio{Width: width, Height: height}
}

// Vertical declares a custom ratio by its vertical width and height.
func Vertical(width, height int) CustomRatio {
	return CustomRatio{Width: height, Height: width}
}

// Ratios returns the ordered candidate list: original, square, built-ins, then customs
// in caller order. Customs are not deduplicated against built-ins.
func Ratios(t types.RatioType, originalRatioH float64, options Options, customs []CustomRatio) ([]Item, error) {
	if !(originalRatioH > 0) || math.IsInf(originalRatioH, 0) {
		return nil, types.Errorf("ratios", types.ErrInvalidRatio, "original ratio %v", originalRatioH)
	}

	items := make([]Item, 0, len(builtins)+2+len(customs))
	if options.Contains(Original) {
		items = append(items, Item{
			NameH:  "original",
			RatioH: originalRatioH,
			NameV:  "original",
			RatioV: 1 / originalRatioH,
		})
	}
	if options.Contains(Square) {
		items = append(items, Item{NameH: "1:1", RatioH: 1, NameV: "1:1", RatioV: 1})
	}
	for _, b := range builtins {
		if !options.Contains(b.option) {
			continue
		}
		item, err := NewItem(b.width, b.height)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	for _, c := range customs {
		item, err := NewItem(c.Width, c.Height)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
