// Package selection tracks which elements are selected, in selection order.
package selection

import "slices"

// Selection is an ordered, duplicate-free set of element ids. The zero value
// is an empty selection.
type Selection struct {
	ids []string
}

// Set replaces the selection. Repeated ids keep their first position.
// Calling Set with no ids clears the selection.
func (s *Selection) Set(ids ...string) {
	s.ids = s.ids[:0]
	for _, id := range ids {
		if !slices.Contains(s.ids, id) {
			s.ids = append(s.ids, id)
		}
	}
}

// Clear deselects everything.
func (s *Selection) Clear() {
	s.ids = nil
}

// Toggle adds id when absent and removes it when present. The relative
// order of the other ids is unchanged.
func (s *Selection) Toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

func (s *Selection) IsSelected(id string) bool {
	return slices.Contains(s.ids, id)
}

func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids in order.
func (s *Selection) IDs() []string {
	return slices.Clone(s.ids)
}

// Retain drops every id for which keep returns false.
func (s *Selection) Retain(keep func(id string) bool) {
	s.ids = slices.DeleteFunc(s.ids, func(id string) bool { return !keep(id) })
}
