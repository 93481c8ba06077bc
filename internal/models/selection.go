package models

// Selection is the transient set of appointment ids chosen for a batch action.
// It is pure state: nothing here touches the store.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection builds a selection from the given ids, dropping duplicates and blanks.
func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add marks an id as selected.
func (s *Selection) Add(id string) {
	if id == "" {
		return
	}
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	s.ids[id] = struct{}{}
}

// Remove unmarks an id.
func (s *Selection) Remove(id string) {
	delete(s.ids, id)
}

// Toggle flips the selected state of an id and reports the new state.
func (s *Selection) Toggle(id string) bool {
	if s.Contains(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

// SelectAll replaces the selection with every id in the listing.
func (s *Selection) SelectAll(ids []string) {
	s.Clear()
	for _, id := range ids {
		s.Add(id)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
}

// Contains reports whether an id is selected.
func (s *Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Empty reports whether nothing is selected. Batch toolbars hide on empty.
func (s *Selection) Empty() bool {
	return len(s.ids) == 0
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in unspecified order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}
