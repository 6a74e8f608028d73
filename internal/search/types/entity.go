package types

// EntityType identifies one of the independently filterable record
// collections reachable through the unified search surface.
type EntityType string

const (
	EntityInventory  EntityType = "inventory"
	EntityInvoices   EntityType = "invoices"
	EntityCustomers  EntityType = "customers"
	EntityAccounting EntityType = "accounting"
)

// AllEntityTypes returns every known entity type in display order.
func AllEntityTypes() []EntityType {
	return []EntityType{EntityInventory, EntityInvoices, EntityCustomers, EntityAccounting}
}

// Valid reports whether e is a known entity type.
func (e EntityType) Valid() bool {
	switch e {
	case EntityInventory, EntityInvoices, EntityCustomers, EntityAccounting:
		return true
	}
	return false
}

// ParseEntityTypes converts raw strings into entity types, dropping
// anything unknown. A nil result means "no restriction".
func ParseEntityTypes(raw []string) []EntityType {
	var out []EntityType
	for _, s := range raw {
		et := EntityType(s)
		if et.Valid() {
			out = append(out, et)
		}
	}
	return out
}
