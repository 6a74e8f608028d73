package compose

import (
	"strings"

	"go.uber.org/zap"

	"github.com/merchware/unisearch/internal/search/types"
)

// CategoryNode is one node of the in-memory category forest.
type CategoryNode struct {
	ID        string
	Name      string
	ParentID  string
	ItemCount int64
	Children  []*CategoryNode
}

// CategoryTree is a hierarchical multi-select filter over the category
// graph. Selection is a flat id set independent of tree depth;
// expand/collapse state belongs to the caller.
type CategoryTree struct {
	roots    []*CategoryNode
	byID     map[string]*CategoryNode
	selected map[string]struct{}
}

// NewCategoryTree builds the forest from a flat category list in two
// passes: index every node by id, then attach children to parents.
// A node whose parent id is absent from the input is promoted to a
// root rather than dropped; each promotion is logged.
func NewCategoryTree(categories []types.Category, log *zap.Logger) *CategoryTree {
	t := &CategoryTree{
		byID:     make(map[string]*CategoryNode, len(categories)),
		selected: make(map[string]struct{}),
	}
	for _, c := range categories {
		t.byID[c.ID] = &CategoryNode{
			ID:        c.ID,
			Name:      c.Name,
			ParentID:  c.ParentID,
			ItemCount: c.ItemCount,
		}
	}
	for _, c := range categories {
		node := t.byID[c.ID]
		if c.ParentID == "" {
			t.roots = append(t.roots, node)
			continue
		}
		parent, ok := t.byID[c.ParentID]
		if !ok {
			if log != nil {
				log.Debug("category parent missing, promoting to root",
					zap.String("category_id", c.ID),
					zap.String("parent_id", c.ParentID))
			}
			t.roots = append(t.roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return t
}

// Roots returns the top-level nodes, orphan promotions included.
func (t *CategoryTree) Roots() []*CategoryNode {
	return t.roots
}

// Node looks a node up by id.
func (t *CategoryTree) Node(id string) *CategoryNode {
	return t.byID[id]
}

// Select adds a single id to the selection. Unknown ids are ignored.
func (t *CategoryTree) Select(id string) {
	if _, ok := t.byID[id]; ok {
		t.selected[id] = struct{}{}
	}
}

// Deselect removes a single id from the selection.
func (t *CategoryTree) Deselect(id string) {
	delete(t.selected, id)
}

// IsSelected reports whether the id is in the selection set.
func (t *CategoryTree) IsSelected(id string) bool {
	_, ok := t.selected[id]
	return ok
}

// SelectAllChildren unions the node and every descendant into the
// selection via a pre-order traversal. Returns the ids visited.
func (t *CategoryTree) SelectAllChildren(id string) []string {
	node, ok := t.byID[id]
	if !ok {
		return nil
	}
	var ids []string
	var walk func(n *CategoryNode)
	walk = func(n *CategoryNode) {
		ids = append(ids, n.ID)
		t.selected[n.ID] = struct{}{}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(node)
	return ids
}

// DeselectAllChildren removes the node and every descendant from the
// selection.
func (t *CategoryTree) DeselectAllChildren(id string) {
	node, ok := t.byID[id]
	if !ok {
		return
	}
	var walk func(n *CategoryNode)
	walk = func(n *CategoryNode) {
		delete(t.selected, n.ID)
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(node)
}

// Selected returns the selected ids. Order is unspecified.
func (t *CategoryTree) Selected() []string {
	out := make([]string, 0, len(t.selected))
	for id := range t.selected {
		out = append(out, id)
	}
	return out
}

// Search filters the forest by name, case-insensitively. A node is
// kept when its own name matches or any descendant matches, so a
// matching leaf always keeps its ancestor chain visible. The returned
// nodes are copies; the underlying tree is untouched.
func (t *CategoryTree) Search(query string) []*CategoryNode {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return t.roots
	}
	var out []*CategoryNode
	for _, root := range t.roots {
		if kept := filterNode(root, needle); kept != nil {
			out = append(out, kept)
		}
	}
	return out
}

func filterNode(n *CategoryNode, needle string) *CategoryNode {
	var kids []*CategoryNode
	for _, child := range n.Children {
		if kept := filterNode(child, needle); kept != nil {
			kids = append(kids, kept)
		}
	}
	if len(kids) == 0 && !strings.Contains(strings.ToLower(n.Name), needle) {
		return nil
	}
	copied := *n
	if strings.Contains(strings.ToLower(n.Name), needle) && len(kids) == 0 {
		// Own-name match keeps the full subtree visible.
		copied.Children = n.Children
	} else {
		copied.Children = kids
	}
	return &copied
}

// Patch derives the inventory filter patch for the current selection.
func (t *CategoryTree) Patch() types.FilterPatch {
	return types.FilterPatch{
		Inventory: &types.InventoryFilter{CategoryIDs: append([]string{}, t.Selected()...)},
	}
}
