package data

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/merchware/unisearch/internal/search/types"
)

type valueCount struct {
	Value string
	Count int64
}

// Facets computes the facet set for the current filters. Per contract,
// an option's count reflects the result set before that facet's own
// selected values are applied, and selected values absent from the
// counts are still emitted with a zero count so the user can deselect
// them.
func (s *SearchStore) Facets(ctx context.Context, filters types.SearchFilters) ([]types.Facet, error) {
	entityTypes := filters.EntityTypes
	if len(entityTypes) == 0 {
		entityTypes = types.AllEntityTypes()
	}

	var facets []types.Facet
	for _, et := range entityTypes {
		var (
			fs  []types.Facet
			err error
		)
		switch et {
		case types.EntityInventory:
			fs, err = s.inventoryFacets(ctx, filters)
		case types.EntityInvoices:
			fs, err = s.invoiceFacets(ctx, filters)
		case types.EntityCustomers:
			fs, err = s.customerFacets(ctx, filters)
		case types.EntityAccounting:
			fs, err = s.accountingFacets(ctx, filters)
		}
		if err != nil {
			return nil, fmt.Errorf("facets %s: %w", et, err)
		}
		facets = append(facets, fs...)
	}
	return facets, nil
}

func (s *SearchStore) inventoryFacets(ctx context.Context, f types.SearchFilters) ([]types.Facet, error) {
	var out []types.Facet

	// Category facet counts ignore the current category selection.
	q := s.inventoryQuery(ctx, f, "category").
		Select("stock_categories.id AS value, COUNT(*) AS count").
		Joins("JOIN stock_categories ON stock_categories.id = stock_items.category_id").
		Group("stock_categories.id")
	q = applyText(q, f.Text, "stock_items.name ILIKE ? OR stock_items.sku ILIKE ? OR stock_items.description ILIKE ?")
	var counts []valueCount
	if err := q.Scan(&counts).Error; err != nil {
		return nil, err
	}
	labels, err := s.categoryLabels(ctx, counts)
	if err != nil {
		return nil, err
	}
	var selected []string
	if f.Inventory != nil {
		selected = f.Inventory.CategoryIDs
	}
	out = append(out, buildFacet("category", "Category", types.FacetMultiSelect, counts, labels, selected))

	// Price bounds for the range slider, other filters applied.
	var bounds struct {
		Min float64
		Max float64
	}
	pq := s.inventoryQuery(ctx, f, "price").
		Select("COALESCE(MIN(price), 0) AS min, COALESCE(MAX(price), 0) AS max")
	pq = applyText(pq, f.Text, "stock_items.name ILIKE ? OR stock_items.sku ILIKE ? OR stock_items.description ILIKE ?")
	if err := pq.Scan(&bounds).Error; err != nil {
		return nil, err
	}
	out = append(out, types.Facet{
		Name:  "price",
		Label: "Price",
		Type:  types.FacetRangeType,
		Range: &types.FacetRange{Min: bounds.Min, Max: bounds.Max},
	})

	return out, nil
}

func (s *SearchStore) invoiceFacets(ctx context.Context, f types.SearchFilters) ([]types.Facet, error) {
	var out []types.Facet

	var statusSel, paySel []string
	if f.Invoices != nil {
		statusSel = f.Invoices.Statuses
		paySel = f.Invoices.PaymentStatuses
	}

	counts, err := s.groupCounts(ctx,
		s.invoiceQuery(ctx, f, "status"), f.Text,
		"number ILIKE ? OR customer_name ILIKE ?", "status")
	if err != nil {
		return nil, err
	}
	out = append(out, buildFacet("status", "Invoice Status", types.FacetCheckbox, counts, nil, statusSel))

	counts, err = s.groupCounts(ctx,
		s.invoiceQuery(ctx, f, "payment_status"), f.Text,
		"number ILIKE ? OR customer_name ILIKE ?", "payment_status")
	if err != nil {
		return nil, err
	}
	out = append(out, buildFacet("payment_status", "Payment Status", types.FacetCheckbox, counts, nil, paySel))

	return out, nil
}

func (s *SearchStore) customerFacets(ctx context.Context, f types.SearchFilters) ([]types.Facet, error) {
	counts, err := s.groupCounts(ctx,
		s.customerQuery(ctx, f, "active"), f.Text,
		"name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", "active")
	if err != nil {
		return nil, err
	}
	var selected []string
	if f.Customers != nil && f.Customers.Active != nil {
		selected = []string{fmt.Sprint(*f.Customers.Active)}
	}
	return []types.Facet{
		buildFacet("customer_active", "Active", types.FacetCheckbox, counts, map[string]string{
			"true": "Active", "false": "Inactive",
		}, selected),
	}, nil
}

func (s *SearchStore) accountingFacets(ctx context.Context, f types.SearchFilters) ([]types.Facet, error) {
	var out []types.Facet

	var entrySel, accountSel []string
	if f.Accounting != nil {
		entrySel = f.Accounting.EntryTypes
		accountSel = f.Accounting.AccountTypes
	}

	counts, err := s.groupCounts(ctx,
		s.ledgerQuery(ctx, f, "entry_type"), f.Text,
		"description ILIKE ? OR account_code ILIKE ?", "entry_type")
	if err != nil {
		return nil, err
	}
	out = append(out, buildFacet("entry_type", "Entry Type", types.FacetCheckbox, counts, nil, entrySel))

	counts, err = s.groupCounts(ctx,
		s.ledgerQuery(ctx, f, "account_type"), f.Text,
		"description ILIKE ? OR account_code ILIKE ?", "account_type")
	if err != nil {
		return nil, err
	}
	out = append(out, buildFacet("account_type", "Account Type", types.FacetCheckbox, counts, nil, accountSel))

	return out, nil
}

func (s *SearchStore) groupCounts(ctx context.Context, q *gorm.DB, text, textClause, column string) ([]valueCount, error) {
	q = q.Select(column + "::text AS value, COUNT(*) AS count").Group(column)
	q = applyText(q, text, textClause)
	var counts []valueCount
	if err := q.Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func applyText(q *gorm.DB, text, clause string) *gorm.DB {
	if text == "" {
		return q
	}
	like := "%" + text + "%"
	n := 0
	for i := 0; i < len(clause); i++ {
		if clause[i] == '?' {
			n++
		}
	}
	args := make([]interface{}, n)
	for i := range args {
		args[i] = like
	}
	return q.Where(clause, args...)
}

func (s *SearchStore) categoryLabels(ctx context.Context, counts []valueCount) (map[string]string, error) {
	if len(counts) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.Value)
	}
	var pos []CategoryPO
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&pos).Error; err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(pos))
	for _, po := range pos {
		labels[po.ID] = po.Name
	}
	return labels, nil
}

// buildFacet assembles options from counts, marks selections, and
// appends zero-count entries for selected values missing from the
// counts. Zero-count options are never hidden.
func buildFacet(name, label string, ft types.FacetType, counts []valueCount, labels map[string]string, selected []string) types.Facet {
	isSelected := func(v string) bool {
		for _, s := range selected {
			if s == v {
				return true
			}
		}
		return false
	}

	seen := make(map[string]struct{}, len(counts))
	options := make([]types.FacetOption, 0, len(counts)+len(selected))
	for _, c := range counts {
		seen[c.Value] = struct{}{}
		options = append(options, types.FacetOption{
			Value:    c.Value,
			Label:    optionLabel(c.Value, labels),
			Count:    c.Count,
			Selected: isSelected(c.Value),
		})
	}
	for _, v := range selected {
		if _, ok := seen[v]; ok {
			continue
		}
		options = append(options, types.FacetOption{
			Value:    v,
			Label:    optionLabel(v, labels),
			Count:    0,
			Selected: true,
		})
	}

	return types.Facet{Name: name, Label: label, Type: ft, Options: options}
}

func optionLabel(value string, labels map[string]string) string {
	if labels != nil {
		if l, ok := labels[value]; ok {
			return l
		}
	}
	return value
}
