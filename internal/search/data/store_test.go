package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/merchware/unisearch/internal/search/types"
)

func TestRelevanceOrdering(t *testing.T) {
	exact := relevance("bolt", "bolt")
	prefix := relevance("bolt", "bolt m8 zinc")
	word := relevance("bolt", "hex bolt")
	substring := relevance("bolt", "carriagebolt kit")
	secondary := relevance("bolt", "fastener kit", "assorted bolts and nuts")
	miss := relevance("bolt", "wrench", "steel")

	assert.Equal(t, 1.0, exact)
	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, word)
	assert.Greater(t, word, substring)
	assert.Greater(t, substring, secondary)
	assert.Greater(t, secondary, miss)
}

func TestRelevanceEmptyQuery(t *testing.T) {
	assert.Equal(t, 0.5, relevance("", "anything"))
}

func TestSortItemsByRelevanceDefault(t *testing.T) {
	items := []types.SearchResultItem{
		{ID: "low", RelevanceScore: 0.2},
		{ID: "high", RelevanceScore: 0.9},
		{ID: "mid", RelevanceScore: 0.7},
	}
	sortItems(items, "", "desc")
	assert.Equal(t, "high", items[0].ID)
	assert.Equal(t, "mid", items[1].ID)
	assert.Equal(t, "low", items[2].ID)
}

func TestSortItemsByCreatedAt(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []types.SearchResultItem{
		{ID: "b", CreatedAt: base.Add(time.Hour)},
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
	}
	sortItems(items, "created_at", "asc")
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})

	sortItems(items, "created_at", "desc")
	assert.Equal(t, []string{"c", "b", "a"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestSortItemsStableTiebreak(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []types.SearchResultItem{
		{ID: "z", CreatedAt: ts},
		{ID: "a", CreatedAt: ts},
	}
	sortItems(items, "created_at", "asc")
	assert.Equal(t, "a", items[0].ID, "equal timestamps fall back to id order")
}

func TestHighlight(t *testing.T) {
	out := highlight("bolt", map[string]string{
		"title":       "Hex Bolt M8",
		"description": "Zinc plated",
	})
	assert.Equal(t, map[string]string{"title": "Hex <em>Bolt</em> M8"}, out)

	assert.Nil(t, highlight("", map[string]string{"title": "Hex Bolt"}))
	assert.Nil(t, highlight("washer", map[string]string{"title": "Hex Bolt"}))
}

func TestStringValuesSkipsNils(t *testing.T) {
	out := stringValues([]interface{}{"a", nil, 3, nil})
	assert.Equal(t, []string{"a", "3"}, out)
}

func TestDedupeCap(t *testing.T) {
	out := dedupeCap([]string{"a", "b", "a", "c", "b", "d"}, 3)
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestBuildFacetAppendsZeroCountSelections(t *testing.T) {
	counts := []valueCount{
		{Value: "paid", Count: 12},
		{Value: "overdue", Count: 3},
	}
	facet := buildFacet("status", "Status", types.FacetCheckbox, counts, nil, []string{"overdue", "draft"})

	assert.Len(t, facet.Options, 3)
	assert.Equal(t, "paid", facet.Options[0].Value)
	assert.False(t, facet.Options[0].Selected)
	assert.True(t, facet.Options[1].Selected)

	// A selected value with zero hits under the current filters stays
	// visible so the user can still untick it.
	last := facet.Options[2]
	assert.Equal(t, "draft", last.Value)
	assert.Equal(t, int64(0), last.Count)
	assert.True(t, last.Selected)
}

func TestBuildFacetLabels(t *testing.T) {
	counts := []valueCount{{Value: "cat-1", Count: 5}}
	labels := map[string]string{"cat-1": "Fasteners"}
	facet := buildFacet("category", "Category", types.FacetMultiSelect, counts, labels, nil)

	assert.Equal(t, "Fasteners", facet.Options[0].Label)
}
