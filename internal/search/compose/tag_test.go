package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var vocabulary = []string{"steel", "stainless", "brass", "m8", "m10", "galvanized", "metric", "imperial"}

func TestTagSuggestPrefixBeforeContains(t *testing.T) {
	c := NewTagComposer(vocabulary, nil, TagComposerOptions{})

	out := c.Suggest("m")
	assert.Equal(t, []string{"m8", "m10", "metric", "imperial"}, out)
}

func TestTagSuggestExcludesSelected(t *testing.T) {
	c := NewTagComposer(vocabulary, []string{"m8"}, TagComposerOptions{})

	out := c.Suggest("m8")
	assert.Empty(t, out)
}

func TestTagSuggestCap(t *testing.T) {
	many := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9", "a10", "a11", "a12"}
	c := NewTagComposer(many, nil, TagComposerOptions{})

	assert.Len(t, c.Suggest("a"), 10)
}

func TestTagSuggestEmptyPrefix(t *testing.T) {
	c := NewTagComposer(vocabulary, nil, TagComposerOptions{})
	assert.Empty(t, c.Suggest("  "))
}

func TestTagAddDuplicateIsNoop(t *testing.T) {
	c := NewTagComposer(vocabulary, nil, TagComposerOptions{})

	assert.True(t, c.Add("steel"))
	assert.False(t, c.Add("steel"))
	assert.Equal(t, []string{"steel"}, c.Selected())
}

func TestTagAddCaseVariantIsNoop(t *testing.T) {
	c := NewTagComposer(vocabulary, []string{"steel"}, TagComposerOptions{})

	assert.False(t, c.Add("Steel"))
	assert.False(t, c.Add("STEEL"))
	assert.Equal(t, []string{"steel"}, c.Selected())

	assert.True(t, c.Remove("Steel"))
	assert.Empty(t, c.Selected())
}

func TestTagAddAtCapacityIsNoop(t *testing.T) {
	c := NewTagComposer(vocabulary, nil, TagComposerOptions{MaxTags: 2})

	assert.True(t, c.Add("steel"))
	assert.True(t, c.Add("brass"))
	assert.False(t, c.Add("m8"))
	assert.Equal(t, []string{"steel", "brass"}, c.Selected())
}

func TestTagAddOutsideVocabulary(t *testing.T) {
	c := NewTagComposer(vocabulary, nil, TagComposerOptions{})
	assert.False(t, c.Add("unlisted"))

	c = NewTagComposer(vocabulary, nil, TagComposerOptions{AllowCustomTags: true})
	assert.True(t, c.Add("unlisted"))
	assert.Equal(t, []string{"unlisted"}, c.Selected())
}

func TestTagRemove(t *testing.T) {
	c := NewTagComposer(vocabulary, []string{"steel", "brass"}, TagComposerOptions{})

	assert.True(t, c.Remove("steel"))
	assert.False(t, c.Remove("steel"))
	assert.Equal(t, []string{"brass"}, c.Selected())
}

func TestTagRemoveLast(t *testing.T) {
	c := NewTagComposer(vocabulary, []string{"steel", "brass"}, TagComposerOptions{})

	assert.True(t, c.RemoveLast())
	assert.Equal(t, []string{"steel"}, c.Selected())
	assert.True(t, c.RemoveLast())
	assert.False(t, c.RemoveLast())
}

func TestTagPatch(t *testing.T) {
	c := NewTagComposer(vocabulary, []string{"steel"}, TagComposerOptions{})

	patch := c.Patch()
	assert.NotNil(t, patch.Inventory)
	assert.Equal(t, []string{"steel"}, patch.Inventory.Tags)

	// An empty selection emits an explicit clear, not an absent field.
	c.RemoveLast()
	patch = c.Patch()
	assert.NotNil(t, patch.Inventory)
	assert.NotNil(t, patch.Inventory.Tags)
	assert.Empty(t, patch.Inventory.Tags)
}
