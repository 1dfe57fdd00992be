package thread

// CollapseState tracks which comments have their replies hidden. It is view
// state only: it is keyed by comment id, survives a forest rebuild, and
// toggling it never changes the forest.
type CollapseState map[uint]bool

// Toggle flips the collapsed flag of id and returns the new value.
func (s CollapseState) Toggle(id uint) bool {
	if s[id] {
		delete(s, id)
		return false
	}
	s[id] = true
	return true
}

// IsCollapsed reports whether the replies of id are hidden.
func (s CollapseState) IsCollapsed(id uint) bool {
	return s[id]
}

// Visible returns the ids shown for forest in display order. A collapsed
// comment is itself visible; its replies are not.
func (s CollapseState) Visible(forest []*Node) []uint {
	ids := make([]uint, 0)
	Walk(forest, func(n *Node, _ int) bool {
		ids = append(ids, n.ID)
		return !s.IsCollapsed(n.ID)
	})
	return ids
}
