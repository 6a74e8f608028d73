package types

// Category is one node of the flat category list delivered by the
// catalog service. ParentID is empty for roots.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ParentID  string `json:"parent_id,omitempty"`
	ItemCount int64  `json:"item_count,omitempty"`
}
