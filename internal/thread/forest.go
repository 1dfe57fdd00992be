// Package thread turns the flat comment rows of one post into a forest of
// nested replies.
//
// The forest is rebuilt from scratch on every load. Nothing here touches the
// store: callers fetch the rows (ordered by created_at) and hand them over.
package thread

import (
	"threadline/internal/models"
)

// Node is a comment together with its direct replies, in input order.
// Children is never nil so it serializes as [] for leaves.
type Node struct {
	models.Comment
	// ContentHTML is the rendered body, filled in by the caller when needed.
	ContentHTML string  `json:"content_html,omitempty"`
	Children    []*Node `json:"children"`
}

// ReplyCount returns the number of direct replies.
func (n *Node) ReplyCount() int {
	return len(n.Children)
}

// BuildForest nests records by ParentID and returns the top-level comments.
//
// Order is preserved, not imposed: roots and siblings keep their relative
// input order. A record whose parent is missing from records, or belongs to
// another post, is an orphan and is left out together with its replies.
// When an id appears twice the first row wins.
func BuildForest(records []models.Comment) []*Node {
	index := make(map[uint]*Node, len(records))
	for _, rec := range records {
		if _, dup := index[rec.ID]; dup {
			continue
		}
		// copy so the forest never shares memory with the caller's slice
		c := rec
		if rec.ParentID != nil {
			pid := *rec.ParentID
			c.ParentID = &pid
		}
		index[rec.ID] = &Node{Comment: c, Children: make([]*Node, 0)}
	}

	roots := make([]*Node, 0)
	placed := make(map[uint]bool, len(records))
	for i := range records {
		rec := &records[i]
		if placed[rec.ID] {
			continue
		}
		placed[rec.ID] = true
		node := index[rec.ID]

		if rec.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := index[*rec.ParentID]
		if !ok || parent.PostID != rec.PostID || parent == node {
			// orphan
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots
}

// Walk visits the forest depth-first, parents before children, passing the
// nesting depth (0 for roots). Returning false from fn skips that node's replies.
//
// Only nodes reachable from a root are visited, so rows caught in a parent
// cycle never show up.
func Walk(forest []*Node, fn func(n *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{forest[i], 0})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.node, top.depth) {
			continue
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{top.node.Children[i], top.depth + 1})
		}
	}
}

// Count returns the number of nodes in the forest.
func Count(forest []*Node) int {
	n := 0
	Walk(forest, func(*Node, int) bool {
		n++
		return true
	})
	return n
}

// Find returns the node with the given comment id, or nil.
func Find(forest []*Node, id uint) *Node {
	var found *Node
	Walk(forest, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}
