package types

import "fmt"

// Validate rejects malformed filters before they reach the backing
// store: inverted ranges, unknown entity types, bad sort order and
// out-of-bounds pagination.
func (f *SearchFilters) Validate() error {
	for _, et := range f.EntityTypes {
		if !et.Valid() {
			return fmt.Errorf("unknown entity type %q", et)
		}
	}
	if f.DateRange != nil && f.DateRange.From != nil && f.DateRange.To != nil {
		if f.DateRange.From.After(*f.DateRange.To) {
			return fmt.Errorf("date range: from is after to")
		}
	}
	if err := validRange("inventory.price_range", rangeOf(f.Inventory)); err != nil {
		return err
	}
	if f.Invoices != nil {
		if err := validRange("invoices.amount_range", f.Invoices.AmountRange); err != nil {
			return err
		}
	}
	if f.Customers != nil {
		if err := validRange("customers.debt_range", f.Customers.DebtRange); err != nil {
			return err
		}
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		return fmt.Errorf("sort order must be asc or desc, got %q", f.SortOrder)
	}
	if f.Page < 0 {
		return fmt.Errorf("page must be >= 1")
	}
	if f.PerPage < 0 {
		return fmt.Errorf("per_page must be positive")
	}
	return nil
}

func rangeOf(inv *InventoryFilter) *AmountRange {
	if inv == nil {
		return nil
	}
	return inv.PriceRange
}

func validRange(name string, r *AmountRange) error {
	if r == nil || r.Min == nil || r.Max == nil {
		return nil
	}
	if *r.Min > *r.Max {
		return fmt.Errorf("%s: min %v is greater than max %v", name, *r.Min, *r.Max)
	}
	return nil
}
