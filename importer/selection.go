package importer

// FilterMode selects a view over validation results.
type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterErrors   FilterMode = "errors"
	FilterWarnings FilterMode = "warnings"
	FilterIncluded FilterMode = "included"
)

// Selection is the operator's view over validation results. It adjusts
// inclusion flags and never touches rows blocked by an error.
type Selection struct {
	results []*Result
	anchor  int
}

// NewSelection wraps the validation results for interactive adjustment.
func NewSelection(results []*Result) *Selection {
	return &Selection{
		results: results,
		anchor:  -1,
	}
}

// Results returns the full result list in row order.
func (s *Selection) Results() []*Result {
	return s.results
}

// Anchor returns the row index of the last single toggle, -1 before the
// first one.
func (s *Selection) Anchor() int {
	return s.anchor
}

// ToggleOne flips inclusion of one row and anchors subsequent range
// toggles there. Error rows are left untouched and do not move the
// anchor.
func (s *Selection) ToggleOne(index int) {
	if index < 0 || index >= len(s.results) {
		return
	}
	row := s.results[index]
	if row.HasError() {
		return
	}
	row.Included = !row.Included
	s.anchor = index
}

// ToggleRange applies state to every row between anchor and target
// inclusive, in either direction, skipping error rows.
func (s *Selection) ToggleRange(anchor, target int, state bool) {
	if anchor > target {
		anchor, target = target, anchor
	}
	if anchor < 0 {
		anchor = 0
	}
	if target >= len(s.results) {
		target = len(s.results) - 1
	}

	for i := anchor; i <= target; i++ {
		if s.results[i].HasError() {
			continue
		}
		s.results[i].Included = state
	}
}

// ToggleRangeFromAnchor applies state from the stored anchor to target.
// Without an anchor it behaves like a single-row assignment.
func (s *Selection) ToggleRangeFromAnchor(target int, state bool) {
	anchor := s.anchor
	if anchor < 0 {
		anchor = target
	}
	s.ToggleRange(anchor, target, state)
}

// ToggleAll applies state to every non-error row.
func (s *Selection) ToggleAll(state bool) {
	s.ToggleRange(0, len(s.results)-1, state)
}

// IncludeAllWarnings includes every row carrying at least one warning
// and no error.
func (s *Selection) IncludeAllWarnings() {
	s.setWarnings(true)
}

// ExcludeAllWarnings excludes every row carrying at least one warning
// and no error.
func (s *Selection) ExcludeAllWarnings() {
	s.setWarnings(false)
}

func (s *Selection) setWarnings(state bool) {
	for _, row := range s.results {
		if row.HasError() || !row.HasWarning() {
			continue
		}
		row.Included = state
	}
}

// Filter returns the subset of results matching mode without changing
// anything. The warnings view excludes error rows.
func (s *Selection) Filter(mode FilterMode) []*Result {
	if mode == FilterAll {
		return s.results
	}

	filtered := make([]*Result, 0, len(s.results))
	for _, row := range s.results {
		switch mode {
		case FilterErrors:
			if row.HasError() {
				filtered = append(filtered, row)
			}
		case FilterWarnings:
			if row.HasWarning() && !row.HasError() {
				filtered = append(filtered, row)
			}
		case FilterIncluded:
			if row.Included {
				filtered = append(filtered, row)
			}
		}
	}
	return filtered
}
