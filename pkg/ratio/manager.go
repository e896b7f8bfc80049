package ratio

import "github.com/menta2k/image-cropper/pkg/types"

// ShowType selects how the ratio type is chosen.
type ShowType int

const (
	// ShowAdaptive follows the image orientation, including quarter turns.
	ShowAdaptive ShowType = iota
	ShowHorizontal
	ShowVertical
)

// ResolveRatioType picks the ratio type for the image as currently displayed.
func ResolveRatioType(show ShowType, imageIsHorizontal bool, rotation types.RotationType) types.RatioType {
	switch show {
	case ShowHorizontal:
		return types.Horizontal
	case ShowVertical:
		return types.Vertical
	}
	if imageIsHorizontal != rotation.IsSideways() {
		return types.Horizontal
	}
	return types.Vertical
}

// Manager holds the candidate list derived for one orientation classification.
type Manager struct {
	Type           types.RatioType
	OriginalRatioH float64

	ratios []Item
}

// NewManager derives the candidates with Ratios.
func NewManager(t types.RatioType, originalRatioH float64, options Options, customs []CustomRatio) (*Manager, error) {
	items, err := Ratios(t, originalRatioH, options, customs)
	if err != nil {
		return nil, err
	}
	return &Manager{Type: t, OriginalRatioH: originalRatioH, ratios: items}, nil
}

// Ratios returns a copy of the candidate list.
func (m *Manager) Ratios() []Item {
	out := make([]Item, len(m.ratios))
	copy(out, m.ratios)
	return out
}

// Count returns the number of candidates.
func (m *Manager) Count() int {
	return len(m.ratios)
}

// Single returns the only candidate when there is exactly one.
func (m *Manager) Single() (Item, bool) {
	if len(m.ratios) != 1 {
		return Item{}, false
	}
	return m.ratios[0], true
}

// First returns the first candidate.
func (m *Manager) First() (Item, error) {
	if len(m.ratios) == 0 {
		return Item{}, types.Errorf("ratio candidates", types.ErrEmptyCandidateList, "no ratio enabled")
	}
	return m.ratios[0], nil
}

// Value returns the ratio of item for the manager's type.
func (m *Manager) Value(item Item) float64 {
	return item.Value(m.Type)
}
