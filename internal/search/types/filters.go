package types

import (
	"time"
)

// Default pagination values applied when a request leaves them unset.
const (
	DefaultPage      = 1
	DefaultPerPage   = 20
	DefaultSortOrder = "desc"
)

// DateRange bounds results by creation date across all selected entity
// types. Either side may be open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// AmountRange is a numeric range filter. Either side may be open.
type AmountRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// AttributeCondition is one custom-attribute predicate emitted by the
// attribute filter composer.
type AttributeCondition struct {
	Operator string        `json:"operator"`
	Value    interface{}   `json:"value,omitempty"`
	Values   []interface{} `json:"values,omitempty"`
}

// InventoryFilter holds structured constraints for stock items.
type InventoryFilter struct {
	CategoryIDs      []string                      `json:"category_ids,omitempty"`
	Tags             []string                      `json:"tags,omitempty"`
	CustomAttributes map[string]AttributeCondition `json:"custom_attributes,omitempty"`
	PriceRange       *AmountRange                  `json:"price_range,omitempty"`
	Active           *bool                         `json:"active,omitempty"`
}

// InvoiceFilter holds structured constraints for invoices.
type InvoiceFilter struct {
	Statuses        []string     `json:"statuses,omitempty"`
	PaymentStatuses []string     `json:"payment_statuses,omitempty"`
	AmountRange     *AmountRange `json:"amount_range,omitempty"`
	CustomerIDs     []string     `json:"customer_ids,omitempty"`
}

// CustomerFilter holds structured constraints for customers.
type CustomerFilter struct {
	DebtRange   *AmountRange `json:"debt_range,omitempty"`
	Active      *bool        `json:"active,omitempty"`
	Blacklisted *bool        `json:"blacklisted,omitempty"`
}

// AccountingFilter holds structured constraints for ledger entries.
type AccountingFilter struct {
	EntryTypes   []string `json:"entry_types,omitempty"`
	AccountTypes []string `json:"account_types,omitempty"`
	FiscalYear   *int     `json:"fiscal_year,omitempty"`
}

// SearchFilters is the canonical, serializable representation of a
// search query: free text, entity-type selection, the per-entity
// structured sub-filters, sort and pagination. An absent sub-filter (or
// an empty one) means "no constraint" for that entity, never "exclude
// this entity".
type SearchFilters struct {
	Text        string       `json:"text,omitempty"`
	EntityTypes []EntityType `json:"entity_types,omitempty"`
	DateRange   *DateRange   `json:"date_range,omitempty"`

	Inventory  *InventoryFilter  `json:"inventory,omitempty"`
	Invoices   *InvoiceFilter    `json:"invoices,omitempty"`
	Customers  *CustomerFilter   `json:"customers,omitempty"`
	Accounting *AccountingFilter `json:"accounting,omitempty"`

	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`

	Page    int `json:"page,omitempty"`
	PerPage int `json:"per_page,omitempty"`
}

// Normalize fills pagination and sort defaults in place. maxPerPage
// caps the page size; zero means no cap.
func (f *SearchFilters) Normalize(maxPerPage int) {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PerPage <= 0 {
		f.PerPage = DefaultPerPage
	}
	if maxPerPage > 0 && f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	if f.SortOrder != "asc" && f.SortOrder != "desc" {
		f.SortOrder = DefaultSortOrder
	}
}

// HasEntity reports whether the given entity type is selected. An empty
// selection selects nothing.
func (f *SearchFilters) HasEntity(e EntityType) bool {
	for _, et := range f.EntityTypes {
		if et == e {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Callers hand clones to concurrent fetches
// so a later edit can never alias an in-flight snapshot.
func (f SearchFilters) Clone() SearchFilters {
	out := f
	out.EntityTypes = append([]EntityType(nil), f.EntityTypes...)
	if f.DateRange != nil {
		dr := *f.DateRange
		out.DateRange = &dr
	}
	if f.Inventory != nil {
		inv := *f.Inventory
		inv.CategoryIDs = append([]string(nil), f.Inventory.CategoryIDs...)
		inv.Tags = append([]string(nil), f.Inventory.Tags...)
		if f.Inventory.CustomAttributes != nil {
			inv.CustomAttributes = make(map[string]AttributeCondition, len(f.Inventory.CustomAttributes))
			for k, v := range f.Inventory.CustomAttributes {
				v.Values = append([]interface{}(nil), v.Values...)
				inv.CustomAttributes[k] = v
			}
		}
		if f.Inventory.PriceRange != nil {
			pr := *f.Inventory.PriceRange
			inv.PriceRange = &pr
		}
		if f.Inventory.Active != nil {
			a := *f.Inventory.Active
			inv.Active = &a
		}
		out.Inventory = &inv
	}
	if f.Invoices != nil {
		in := *f.Invoices
		in.Statuses = append([]string(nil), f.Invoices.Statuses...)
		in.PaymentStatuses = append([]string(nil), f.Invoices.PaymentStatuses...)
		in.CustomerIDs = append([]string(nil), f.Invoices.CustomerIDs...)
		if f.Invoices.AmountRange != nil {
			ar := *f.Invoices.AmountRange
			in.AmountRange = &ar
		}
		out.Invoices = &in
	}
	if f.Customers != nil {
		cu := *f.Customers
		if f.Customers.DebtRange != nil {
			dr := *f.Customers.DebtRange
			cu.DebtRange = &dr
		}
		if f.Customers.Active != nil {
			a := *f.Customers.Active
			cu.Active = &a
		}
		if f.Customers.Blacklisted != nil {
			b := *f.Customers.Blacklisted
			cu.Blacklisted = &b
		}
		out.Customers = &cu
	}
	if f.Accounting != nil {
		ac := *f.Accounting
		ac.EntryTypes = append([]string(nil), f.Accounting.EntryTypes...)
		ac.AccountTypes = append([]string(nil), f.Accounting.AccountTypes...)
		if f.Accounting.FiscalYear != nil {
			fy := *f.Accounting.FiscalYear
			ac.FiscalYear = &fy
		}
		out.Accounting = &ac
	}
	return out
}
