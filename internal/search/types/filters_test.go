package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string       { return &s }
func intPtr(i int) *int             { return &i }
func floatPtr(f float64) *float64   { return &f }
func boolPtr(b bool) *bool          { return &b }
func timePtr(t time.Time) *time.Time { return &t }

func TestMergePatchesOnlySetFields(t *testing.T) {
	base := SearchFilters{
		Text:        "bolts",
		EntityTypes: []EntityType{EntityInventory},
		Inventory: &InventoryFilter{
			CategoryIDs: []string{"cat-1"},
			Tags:        []string{"steel"},
		},
		Page:    3,
		PerPage: 20,
	}

	out := Merge(base, FilterPatch{
		Inventory: &InventoryFilter{Tags: []string{"steel", "m8"}},
	})

	// Tags replaced, category ids untouched.
	assert.Equal(t, []string{"steel", "m8"}, out.Inventory.Tags)
	assert.Equal(t, []string{"cat-1"}, out.Inventory.CategoryIDs)
	assert.Equal(t, "bolts", out.Text)

	// Base was not mutated.
	assert.Equal(t, []string{"steel"}, base.Inventory.Tags)
}

func TestMergeDoesNotLeakAcrossEntities(t *testing.T) {
	base := SearchFilters{
		Inventory: &InventoryFilter{Tags: []string{"steel"}},
		Invoices:  &InvoiceFilter{Statuses: []string{"overdue"}},
	}

	out := Merge(base, FilterPatch{
		Invoices: &InvoiceFilter{Statuses: []string{"paid"}},
	})

	assert.Equal(t, []string{"paid"}, out.Invoices.Statuses)
	assert.Equal(t, []string{"steel"}, out.Inventory.Tags)
	assert.Nil(t, out.Customers)
	assert.Nil(t, out.Accounting)
}

func TestMergeEmptySliceClearsConstraint(t *testing.T) {
	base := SearchFilters{
		Inventory: &InventoryFilter{Tags: []string{"steel"}},
	}

	out := Merge(base, FilterPatch{
		Inventory: &InventoryFilter{Tags: []string{}},
	})

	// The sub-filter collapsed to nil once its last constraint cleared.
	assert.Nil(t, out.Inventory)
}

func TestMergeConstraintChangeResetsPage(t *testing.T) {
	base := SearchFilters{Text: "bolts", Page: 5, PerPage: 20}

	out := Merge(base, FilterPatch{Text: strPtr("nuts")})
	assert.Equal(t, DefaultPage, out.Page)

	// Sort and page-size changes keep the page.
	out = Merge(base, FilterPatch{SortBy: strPtr("created_at")})
	assert.Equal(t, 5, out.Page)

	out = Merge(base, FilterPatch{PerPage: intPtr(50)})
	assert.Equal(t, 5, out.Page)
	assert.Equal(t, 50, out.PerPage)
}

func TestMergeEmptyDateRangeClears(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	base := SearchFilters{DateRange: &DateRange{From: timePtr(from)}}

	out := Merge(base, FilterPatch{DateRange: &DateRange{}})
	assert.Nil(t, out.DateRange)
}

func TestHasActiveFilters(t *testing.T) {
	f := SearchFilters{Text: "bolts", Page: 2, PerPage: 50, SortBy: "created_at"}
	assert.False(t, f.HasActiveFilters(), "text, sort and pagination alone are not active filters")

	f.EntityTypes = []EntityType{EntityInventory}
	assert.True(t, f.HasActiveFilters())

	f = SearchFilters{Inventory: &InventoryFilter{Tags: []string{"steel"}}}
	assert.True(t, f.HasActiveFilters())

	f = SearchFilters{Inventory: &InventoryFilter{}}
	assert.False(t, f.HasActiveFilters(), "an empty sub-filter counts as absent")

	f = SearchFilters{DateRange: &DateRange{}}
	assert.False(t, f.HasActiveFilters(), "a date range with both sides open counts as absent")
}

func TestSearchable(t *testing.T) {
	f := SearchFilters{}
	assert.False(t, f.Searchable())

	f = SearchFilters{EntityTypes: []EntityType{EntityInventory}}
	assert.False(t, f.Searchable(), "an entity selection alone does not justify a fetch")

	f = SearchFilters{Text: "bolts"}
	assert.True(t, f.Searchable())

	f = SearchFilters{Customers: &CustomerFilter{Blacklisted: boolPtr(true)}}
	assert.True(t, f.Searchable())
}

func TestClearFiltersKeepsText(t *testing.T) {
	f := SearchFilters{
		Text:        "bolts",
		EntityTypes: []EntityType{EntityInventory},
		Inventory:   &InventoryFilter{Tags: []string{"steel"}},
		SortBy:      "created_at",
		SortOrder:   "asc",
		Page:        4,
		PerPage:     50,
	}

	out := f.ClearFilters()
	assert.Equal(t, "bolts", out.Text)
	assert.Empty(t, out.EntityTypes)
	assert.Nil(t, out.Inventory)
	assert.Equal(t, DefaultPage, out.Page)
	assert.Equal(t, DefaultPerPage, out.PerPage)
	assert.Equal(t, DefaultSortOrder, out.SortOrder)
}

func TestClearSearchResetsEverything(t *testing.T) {
	out := ClearSearch()
	assert.Empty(t, out.Text)
	assert.False(t, out.HasActiveFilters())
	assert.False(t, out.Searchable())
	assert.Equal(t, DefaultPage, out.Page)
}

func TestCloneIsDeep(t *testing.T) {
	f := SearchFilters{
		EntityTypes: []EntityType{EntityInventory},
		Inventory: &InventoryFilter{
			Tags: []string{"steel"},
			CustomAttributes: map[string]AttributeCondition{
				"brand": {Operator: OpEquals, Value: "acme"},
			},
			PriceRange: &AmountRange{Min: floatPtr(10)},
		},
	}

	c := f.Clone()
	c.EntityTypes[0] = EntityInvoices
	c.Inventory.Tags[0] = "brass"
	c.Inventory.CustomAttributes["brand"] = AttributeCondition{Operator: OpEquals, Value: "other"}
	*c.Inventory.PriceRange.Min = 99

	assert.Equal(t, EntityType("inventory"), f.EntityTypes[0])
	assert.Equal(t, "steel", f.Inventory.Tags[0])
	assert.Equal(t, "acme", f.Inventory.CustomAttributes["brand"].Value)
	assert.Equal(t, float64(10), *f.Inventory.PriceRange.Min)
}

func TestNormalize(t *testing.T) {
	f := SearchFilters{Page: 0, PerPage: 0, SortOrder: "sideways"}
	f.Normalize(100)
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultPerPage, f.PerPage)
	assert.Equal(t, DefaultSortOrder, f.SortOrder)

	f = SearchFilters{Page: 2, PerPage: 500, SortOrder: "asc"}
	f.Normalize(100)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 100, f.PerPage)
	assert.Equal(t, "asc", f.SortOrder)
}

func TestValidate(t *testing.T) {
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		filters SearchFilters
		wantErr bool
	}{
		{"empty", SearchFilters{}, false},
		{"unknown entity", SearchFilters{EntityTypes: []EntityType{"payroll"}}, true},
		{"inverted date range", SearchFilters{DateRange: &DateRange{From: timePtr(from), To: timePtr(to)}}, true},
		{"open date range", SearchFilters{DateRange: &DateRange{From: timePtr(from)}}, false},
		{"inverted price range", SearchFilters{Inventory: &InventoryFilter{PriceRange: &AmountRange{Min: floatPtr(100), Max: floatPtr(10)}}}, true},
		{"bad sort order", SearchFilters{SortOrder: "sideways"}, true},
		{"negative page", SearchFilters{Page: -1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filters.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseEntityTypes(t *testing.T) {
	out := ParseEntityTypes([]string{"inventory", "payroll", "customers"})
	assert.Equal(t, []EntityType{EntityInventory, EntityCustomers}, out)

	assert.Nil(t, ParseEntityTypes(nil))
}
