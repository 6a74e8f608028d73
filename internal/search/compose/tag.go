package compose

import (
	"strings"

	"github.com/merchware/unisearch/internal/search/types"
)

const maxTagSuggestions = 10

// TagComposer is an incremental multi-value tag editor. It keeps the
// selection in insertion order and re-derives a filter patch after
// every change; there is no separate commit step.
type TagComposer struct {
	available       []string
	selected        []string
	allowCustomTags bool
	maxTags         int
}

// TagComposerOptions configures admission policy.
type TagComposerOptions struct {
	AllowCustomTags bool
	MaxTags         int // zero means unlimited
}

// NewTagComposer creates a composer over the given vocabulary with an
// initial selection. The initial selection is deduplicated but admitted
// unconditionally (it came from a persisted filter state).
func NewTagComposer(available, selected []string, opts TagComposerOptions) *TagComposer {
	c := &TagComposer{
		available:       append([]string(nil), available...),
		allowCustomTags: opts.AllowCustomTags,
		maxTags:         opts.MaxTags,
	}
	for _, t := range selected {
		if !c.isSelected(t) {
			c.selected = append(c.selected, t)
		}
	}
	return c
}

// Suggest returns up to ten unselected vocabulary tags matching the
// prefix, case-insensitively. Prefix matches rank before contains
// matches. Every call recomputes from scratch; no state is carried
// between keystrokes.
func (c *TagComposer) Suggest(prefix string) []string {
	needle := strings.ToLower(strings.TrimSpace(prefix))
	if needle == "" {
		return nil
	}
	var prefixed, contained []string
	for _, tag := range c.available {
		if c.isSelected(tag) {
			continue
		}
		lower := strings.ToLower(tag)
		switch {
		case strings.HasPrefix(lower, needle):
			prefixed = append(prefixed, tag)
		case strings.Contains(lower, needle):
			contained = append(contained, tag)
		}
	}
	out := append(prefixed, contained...)
	if len(out) > maxTagSuggestions {
		out = out[:maxTagSuggestions]
	}
	return out
}

// Add appends a tag to the selection. It is a no-op when the tag is
// already selected, the selection is at capacity, or the tag is not in
// the vocabulary and custom tags are disallowed. Returns whether the
// selection changed.
func (c *TagComposer) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || c.isSelected(tag) {
		return false
	}
	if c.maxTags > 0 && len(c.selected) >= c.maxTags {
		return false
	}
	if !c.allowCustomTags && !c.inVocabulary(tag) {
		return false
	}
	c.selected = append(c.selected, tag)
	return true
}

// Remove drops a tag from the selection by value, matching with the
// same case folding Add uses.
func (c *TagComposer) Remove(tag string) bool {
	for i, t := range c.selected {
		if strings.EqualFold(t, tag) {
			c.selected = append(c.selected[:i], c.selected[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveLast drops the most recently added tag. It backs the
// backspace-on-empty-input convenience.
func (c *TagComposer) RemoveLast() bool {
	if len(c.selected) == 0 {
		return false
	}
	c.selected = c.selected[:len(c.selected)-1]
	return true
}

// Selected returns the current selection in insertion order.
func (c *TagComposer) Selected() []string {
	return append([]string(nil), c.selected...)
}

// Patch derives the inventory filter patch for the current selection.
func (c *TagComposer) Patch() types.FilterPatch {
	tags := c.selected
	if tags == nil {
		tags = []string{}
	}
	return types.FilterPatch{
		Inventory: &types.InventoryFilter{Tags: append([]string{}, tags...)},
	}
}

func (c *TagComposer) isSelected(tag string) bool {
	for _, t := range c.selected {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func (c *TagComposer) inVocabulary(tag string) bool {
	for _, t := range c.available {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
