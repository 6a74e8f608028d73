package types

// FilterPatch is a partial update to SearchFilters. Nil fields are
// untouched; a non-nil field replaces the corresponding slot. Inside an
// entity sub-filter the same rule applies one level down, so patching
// inventory tags never erases inventory category ids. Setting a slice
// or map to a non-nil empty value clears that constraint (empty is
// normalized back to absent after the merge).
type FilterPatch struct {
	Text        *string
	EntityTypes []EntityType
	DateRange   *DateRange
	Inventory   *InventoryFilter
	Invoices    *InvoiceFilter
	Customers   *CustomerFilter
	Accounting  *AccountingFilter
	SortBy      *string
	SortOrder   *string
	PerPage     *int
}

// Merge applies patch to base and returns the result. Base is never
// mutated. Any constraint change resets page to 1; sort and page-size
// changes do not.
func Merge(base SearchFilters, patch FilterPatch) SearchFilters {
	out := base.Clone()
	constraintChanged := false

	if patch.Text != nil {
		out.Text = *patch.Text
		constraintChanged = true
	}
	if patch.EntityTypes != nil {
		out.EntityTypes = append([]EntityType(nil), patch.EntityTypes...)
		constraintChanged = true
	}
	if patch.DateRange != nil {
		if patch.DateRange.From == nil && patch.DateRange.To == nil {
			out.DateRange = nil
		} else {
			dr := *patch.DateRange
			out.DateRange = &dr
		}
		constraintChanged = true
	}
	if patch.Inventory != nil {
		out.Inventory = mergeInventory(out.Inventory, patch.Inventory)
		constraintChanged = true
	}
	if patch.Invoices != nil {
		out.Invoices = mergeInvoices(out.Invoices, patch.Invoices)
		constraintChanged = true
	}
	if patch.Customers != nil {
		out.Customers = mergeCustomers(out.Customers, patch.Customers)
		constraintChanged = true
	}
	if patch.Accounting != nil {
		out.Accounting = mergeAccounting(out.Accounting, patch.Accounting)
		constraintChanged = true
	}

	if patch.SortBy != nil {
		out.SortBy = *patch.SortBy
	}
	if patch.SortOrder != nil {
		out.SortOrder = *patch.SortOrder
	}
	if patch.PerPage != nil {
		out.PerPage = *patch.PerPage
	}

	if constraintChanged {
		out.Page = DefaultPage
	}
	return out
}

func mergeInventory(base, patch *InventoryFilter) *InventoryFilter {
	out := InventoryFilter{}
	if base != nil {
		out = *base
	}
	if patch.CategoryIDs != nil {
		out.CategoryIDs = append([]string(nil), patch.CategoryIDs...)
	}
	if patch.Tags != nil {
		out.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.CustomAttributes != nil {
		out.CustomAttributes = make(map[string]AttributeCondition, len(patch.CustomAttributes))
		for k, v := range patch.CustomAttributes {
			out.CustomAttributes[k] = v
		}
	}
	if patch.PriceRange != nil {
		out.PriceRange = patch.PriceRange
	}
	if patch.Active != nil {
		out.Active = patch.Active
	}
	if len(out.CategoryIDs) == 0 {
		out.CategoryIDs = nil
	}
	if len(out.Tags) == 0 {
		out.Tags = nil
	}
	if len(out.CustomAttributes) == 0 {
		out.CustomAttributes = nil
	}
	if out.PriceRange != nil && out.PriceRange.Min == nil && out.PriceRange.Max == nil {
		out.PriceRange = nil
	}
	if isEmptyInventory(&out) {
		return nil
	}
	return &out
}

func mergeInvoices(base, patch *InvoiceFilter) *InvoiceFilter {
	out := InvoiceFilter{}
	if base != nil {
		out = *base
	}
	if patch.Statuses != nil {
		out.Statuses = append([]string(nil), patch.Statuses...)
	}
	if patch.PaymentStatuses != nil {
		out.PaymentStatuses = append([]string(nil), patch.PaymentStatuses...)
	}
	if patch.CustomerIDs != nil {
		out.CustomerIDs = append([]string(nil), patch.CustomerIDs...)
	}
	if patch.AmountRange != nil {
		out.AmountRange = patch.AmountRange
	}
	if len(out.Statuses) == 0 {
		out.Statuses = nil
	}
	if len(out.PaymentStatuses) == 0 {
		out.PaymentStatuses = nil
	}
	if len(out.CustomerIDs) == 0 {
		out.CustomerIDs = nil
	}
	if out.AmountRange != nil && out.AmountRange.Min == nil && out.AmountRange.Max == nil {
		out.AmountRange = nil
	}
	if isEmptyInvoices(&out) {
		return nil
	}
	return &out
}

func mergeCustomers(base, patch *CustomerFilter) *CustomerFilter {
	out := CustomerFilter{}
	if base != nil {
		out = *base
	}
	if patch.DebtRange != nil {
		out.DebtRange = patch.DebtRange
	}
	if patch.Active != nil {
		out.Active = patch.Active
	}
	if patch.Blacklisted != nil {
		out.Blacklisted = patch.Blacklisted
	}
	if out.DebtRange != nil && out.DebtRange.Min == nil && out.DebtRange.Max == nil {
		out.DebtRange = nil
	}
	if isEmptyCustomers(&out) {
		return nil
	}
	return &out
}

func mergeAccounting(base, patch *AccountingFilter) *AccountingFilter {
	out := AccountingFilter{}
	if base != nil {
		out = *base
	}
	if patch.EntryTypes != nil {
		out.EntryTypes = append([]string(nil), patch.EntryTypes...)
	}
	if patch.AccountTypes != nil {
		out.AccountTypes = append([]string(nil), patch.AccountTypes...)
	}
	if patch.FiscalYear != nil {
		out.FiscalYear = patch.FiscalYear
	}
	if len(out.EntryTypes) == 0 {
		out.EntryTypes = nil
	}
	if len(out.AccountTypes) == 0 {
		out.AccountTypes = nil
	}
	if isEmptyAccounting(&out) {
		return nil
	}
	return &out
}

func isEmptyInventory(f *InventoryFilter) bool {
	return f == nil || (len(f.CategoryIDs) == 0 && len(f.Tags) == 0 &&
		len(f.CustomAttributes) == 0 && f.PriceRange == nil && f.Active == nil)
}

func isEmptyInvoices(f *InvoiceFilter) bool {
	return f == nil || (len(f.Statuses) == 0 && len(f.PaymentStatuses) == 0 &&
		len(f.CustomerIDs) == 0 && f.AmountRange == nil)
}

func isEmptyCustomers(f *CustomerFilter) bool {
	return f == nil || (f.DebtRange == nil && f.Active == nil && f.Blacklisted == nil)
}

func isEmptyAccounting(f *AccountingFilter) bool {
	return f == nil || (len(f.EntryTypes) == 0 && len(f.AccountTypes) == 0 && f.FiscalYear == nil)
}

// HasActiveFilters reports whether any constraint beyond free text,
// sort and pagination is set. Empty slices and empty sub-filters count
// as absent.
func (f *SearchFilters) HasActiveFilters() bool {
	if len(f.EntityTypes) > 0 {
		return true
	}
	if f.DateRange != nil && (f.DateRange.From != nil || f.DateRange.To != nil) {
		return true
	}
	return !isEmptyInventory(f.Inventory) || !isEmptyInvoices(f.Invoices) ||
		!isEmptyCustomers(f.Customers) || !isEmptyAccounting(f.Accounting)
}

// Searchable reports whether the query carries enough to justify a
// fetch: non-empty free text, or at least one structured constraint
// beyond the entity-type selection and pagination. An empty query
// against an empty filter set is a no-op, not "fetch everything".
func (f *SearchFilters) Searchable() bool {
	if f.Text != "" {
		return true
	}
	if f.DateRange != nil && (f.DateRange.From != nil || f.DateRange.To != nil) {
		return true
	}
	return !isEmptyInventory(f.Inventory) || !isEmptyInvoices(f.Invoices) ||
		!isEmptyCustomers(f.Customers) || !isEmptyAccounting(f.Accounting)
}

// ClearFilters removes every constraint except the free text: entity
// selection, date range and all entity sub-filters are dropped, sort
// and pagination return to defaults.
func (f SearchFilters) ClearFilters() SearchFilters {
	return SearchFilters{
		Text:      f.Text,
		SortOrder: DefaultSortOrder,
		Page:      DefaultPage,
		PerPage:   DefaultPerPage,
	}
}

// ClearSearch resets the whole query, free text included.
func ClearSearch() SearchFilters {
	return SearchFilters{
		SortOrder: DefaultSortOrder,
		Page:      DefaultPage,
		PerPage:   DefaultPerPage,
	}
}
