package data

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/merchware/unisearch/internal/search/biz"
	"github.com/merchware/unisearch/internal/search/types"
)

// SearchStore is the Postgres-backed implementation of the Searcher
// boundary. Free text matches with ILIKE over the display columns of
// each entity table; structured sub-filters translate to WHERE
// clauses; facet counts come from GROUP BY with the facet's own
// selection excluded. Redis holds the tag vocabulary cache and the
// recent-search list.
type SearchStore struct {
	db  *gorm.DB
	rdb *redis.Client
	log *zap.Logger
}

// NewSearchStore creates the store. The redis client may be nil; tag
// caching and recent searches degrade gracefully without it.
func NewSearchStore(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *SearchStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchStore{db: db, rdb: rdb, log: log}
}

var _ biz.Searcher = (*SearchStore)(nil)

// Search executes the canonical query. It is read-only: no usage
// counters, no recent-search writes happen here.
func (s *SearchStore) Search(ctx context.Context, filters types.SearchFilters) (*types.SearchResults, error) {
	started := time.Now()
	filters.Normalize(0)

	entityTypes := filters.EntityTypes
	if len(entityTypes) == 0 {
		entityTypes = types.AllEntityTypes()
	}

	// Each entity contributes up to a full window of candidates so the
	// requested page can be sliced from the merged set.
	fetchLimit := filters.Page * filters.PerPage

	var items []types.SearchResultItem
	var total int64
	for _, et := range entityTypes {
		var (
			hits  []types.SearchResultItem
			count int64
			err   error
		)
		switch et {
		case types.EntityInventory:
			hits, count, err = s.searchInventory(ctx, filters, fetchLimit)
		case types.EntityInvoices:
			hits, count, err = s.searchInvoices(ctx, filters, fetchLimit)
		case types.EntityCustomers:
			hits, count, err = s.searchCustomers(ctx, filters, fetchLimit)
		case types.EntityAccounting:
			hits, count, err = s.searchAccounting(ctx, filters, fetchLimit)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", et, err)
		}
		items = append(items, hits...)
		total += count
	}

	sortItems(items, filters.SortBy, filters.SortOrder)

	start := (filters.Page - 1) * filters.PerPage
	if start > len(items) {
		start = len(items)
	}
	end := start + filters.PerPage
	if end > len(items) {
		end = len(items)
	}
	page := items[start:end]
	if page == nil {
		page = []types.SearchResultItem{}
	}

	totalPages := int((total + int64(filters.PerPage) - 1) / int64(filters.PerPage))
	results := &types.SearchResults{
		Items:        page,
		Total:        total,
		Page:         filters.Page,
		PerPage:      filters.PerPage,
		TotalPages:   totalPages,
		HasNext:      filters.Page < totalPages,
		HasPrev:      filters.Page > 1,
		SearchTimeMs: time.Since(started).Milliseconds(),
	}

	facets, err := s.Facets(ctx, filters)
	if err != nil {
		// Facets are auxiliary; a failure degrades the envelope, not
		// the result page.
		s.log.Warn("facet computation failed", zap.Error(err))
	} else {
		results.Facets = facets
	}

	if total == 0 && filters.Text != "" {
		results.Suggestions = s.alternateQueries(ctx, filters.Text, entityTypes)
	}
	return results, nil
}

func (s *SearchStore) searchInventory(ctx context.Context, f types.SearchFilters, limit int) ([]types.SearchResultItem, int64, error) {
	q := s.inventoryQuery(ctx, f, "")
	if f.Text != "" {
		like := "%" + f.Text + "%"
		q = q.Where("name ILIKE ? OR sku ILIKE ? OR description ILIKE ?", like, like, like)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var pos []StockItemPO
	if err := q.Order("updated_at DESC").Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	items := make([]types.SearchResultItem, 0, len(pos))
	for i := range pos {
		po := &pos[i]
		item := types.SearchResultItem{
			ID:             po.ID,
			EntityType:     types.EntityInventory,
			Title:          po.Name,
			Subtitle:       po.SKU,
			Description:    po.Description,
			ImageURL:       po.ImageURL,
			RelevanceScore: relevance(f.Text, po.Name, po.SKU, po.Description),
			Metadata: map[string]interface{}{
				"price":  po.Price,
				"active": po.Active,
				"tags":   []string(po.Tags),
			},
			HighlightedFields: highlight(f.Text, map[string]string{
				"name": po.Name, "sku": po.SKU,
			}),
			CreatedAt: po.CreatedAt,
			UpdatedAt: po.UpdatedAt,
		}
		items = append(items, item)
	}
	return items, count, nil
}

func (s *SearchStore) searchInvoices(ctx context.Context, f types.SearchFilters, limit int) ([]types.SearchResultItem, int64, error) {
	q := s.invoiceQuery(ctx, f, "")
	if f.Text != "" {
		like := "%" + f.Text + "%"
		q = q.Where("number ILIKE ? OR customer_name ILIKE ?", like, like)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var pos []InvoicePO
	if err := q.Order("updated_at DESC").Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	items := make([]types.SearchResultItem, 0, len(pos))
	for i := range pos {
		po := &pos[i]
		items = append(items, types.SearchResultItem{
			ID:             po.ID,
			EntityType:     types.EntityInvoices,
			Title:          po.Number,
			Subtitle:       po.CustomerName,
			RelevanceScore: relevance(f.Text, po.Number, po.CustomerName),
			Metadata: map[string]interface{}{
				"status":         po.Status,
				"payment_status": po.PaymentStatus,
				"total_amount":   po.TotalAmount,
				"issued_at":      po.IssuedAt,
			},
			HighlightedFields: highlight(f.Text, map[string]string{
				"number": po.Number, "customer_name": po.CustomerName,
			}),
			CreatedAt: po.CreatedAt,
			UpdatedAt: po.UpdatedAt,
		})
	}
	return items, count, nil
}

func (s *SearchStore) searchCustomers(ctx context.Context, f types.SearchFilters, limit int) ([]types.SearchResultItem, int64, error) {
	q := s.customerQuery(ctx, f, "")
	if f.Text != "" {
		like := "%" + f.Text + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", like, like, like)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var pos []CustomerPO
	if err := q.Order("updated_at DESC").Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	items := make([]types.SearchResultItem, 0, len(pos))
	for i := range pos {
		po := &pos[i]
		items = append(items, types.SearchResultItem{
			ID:             po.ID,
			EntityType:     types.EntityCustomers,
			Title:          po.Name,
			Subtitle:       po.Email,
			RelevanceScore: relevance(f.Text, po.Name, po.Email, po.Phone),
			Metadata: map[string]interface{}{
				"debt":        po.Debt,
				"active":      po.Active,
				"blacklisted": po.Blacklisted,
			},
			HighlightedFields: highlight(f.Text, map[string]string{
				"name": po.Name, "email": po.Email,
			}),
			CreatedAt: po.CreatedAt,
			UpdatedAt: po.UpdatedAt,
		})
	}
	return items, count, nil
}

func (s *SearchStore) searchAccounting(ctx context.Context, f types.SearchFilters, limit int) ([]types.SearchResultItem, int64, error) {
	q := s.ledgerQuery(ctx, f, "")
	if f.Text != "" {
		like := "%" + f.Text + "%"
		q = q.Where("description ILIKE ? OR account_code ILIKE ?", like, like)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var pos []LedgerEntryPO
	if err := q.Order("updated_at DESC").Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	items := make([]types.SearchResultItem, 0, len(pos))
	for i := range pos {
		po := &pos[i]
		items = append(items, types.SearchResultItem{
			ID:             po.ID,
			EntityType:     types.EntityAccounting,
			Title:          po.Description,
			Subtitle:       po.AccountCode,
			RelevanceScore: relevance(f.Text, po.Description, po.AccountCode),
			Metadata: map[string]interface{}{
				"entry_type":   po.EntryType,
				"account_type": po.AccountType,
				"amount":       po.Amount,
				"fiscal_year":  po.FiscalYear,
			},
			HighlightedFields: highlight(f.Text, map[string]string{
				"description": po.Description,
			}),
			CreatedAt: po.CreatedAt,
			UpdatedAt: po.UpdatedAt,
		})
	}
	return items, count, nil
}

// inventoryQuery builds the filtered base query. excludeField names a
// facet dimension whose own selection must be ignored, so facet counts
// show what each option would add.
func (s *SearchStore) inventoryQuery(ctx context.Context, f types.SearchFilters, excludeField string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&StockItemPO{})
	q = applyDateRange(q, f.DateRange)
	inv := f.Inventory
	if inv == nil {
		return q
	}
	if len(inv.CategoryIDs) > 0 && excludeField != "category" {
		q = q.Where("category_id IN ?", inv.CategoryIDs)
	}
	for _, tag := range inv.Tags {
		q = q.Where("tags @> ?", jsonArray(tag))
	}
	if inv.PriceRange != nil && excludeField != "price" {
		if inv.PriceRange.Min != nil {
			q = q.Where("price >= ?", *inv.PriceRange.Min)
		}
		if inv.PriceRange.Max != nil {
			q = q.Where("price <= ?", *inv.PriceRange.Max)
		}
	}
	if inv.Active != nil && excludeField != "active" {
		q = q.Where("active = ?", *inv.Active)
	}
	for name, cond := range inv.CustomAttributes {
		q = applyAttributeCondition(q, name, cond)
	}
	return q
}

func (s *SearchStore) invoiceQuery(ctx context.Context, f types.SearchFilters, excludeField string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&InvoicePO{})
	q = applyDateRange(q, f.DateRange)
	in := f.Invoices
	if in == nil {
		return q
	}
	if len(in.Statuses) > 0 && excludeField != "status" {
		q = q.Where("status IN ?", in.Statuses)
	}
	if len(in.PaymentStatuses) > 0 && excludeField != "payment_status" {
		q = q.Where("payment_status IN ?", in.PaymentStatuses)
	}
	if in.AmountRange != nil {
		if in.AmountRange.Min != nil {
			q = q.Where("total_amount >= ?", *in.AmountRange.Min)
		}
		if in.AmountRange.Max != nil {
			q = q.Where("total_amount <= ?", *in.AmountRange.Max)
		}
	}
	if len(in.CustomerIDs) > 0 {
		q = q.Where("customer_id IN ?", in.CustomerIDs)
	}
	return q
}

func (s *SearchStore) customerQuery(ctx context.Context, f types.SearchFilters, excludeField string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&CustomerPO{})
	q = applyDateRange(q, f.DateRange)
	cu := f.Customers
	if cu == nil {
		return q
	}
	if cu.DebtRange != nil {
		if cu.DebtRange.Min != nil {
			q = q.Where("debt >= ?", *cu.DebtRange.Min)
		}
		if cu.DebtRange.Max != nil {
			q = q.Where("debt <= ?", *cu.DebtRange.Max)
		}
	}
	if cu.Active != nil && excludeField != "active" {
		q = q.Where("active = ?", *cu.Active)
	}
	if cu.Blacklisted != nil && excludeField != "blacklisted" {
		q = q.Where("blacklisted = ?", *cu.Blacklisted)
	}
	return q
}

func (s *SearchStore) ledgerQuery(ctx context.Context, f types.SearchFilters, excludeField string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&LedgerEntryPO{})
	q = applyDateRange(q, f.DateRange)
	ac := f.Accounting
	if ac == nil {
		return q
	}
	if len(ac.EntryTypes) > 0 && excludeField != "entry_type" {
		q = q.Where("entry_type IN ?", ac.EntryTypes)
	}
	if len(ac.AccountTypes) > 0 && excludeField != "account_type" {
		q = q.Where("account_type IN ?", ac.AccountTypes)
	}
	if ac.FiscalYear != nil {
		q = q.Where("fiscal_year = ?", *ac.FiscalYear)
	}
	return q
}

func applyDateRange(q *gorm.DB, dr *types.DateRange) *gorm.DB {
	if dr == nil {
		return q
	}
	if dr.From != nil {
		q = q.Where("created_at >= ?", *dr.From)
	}
	if dr.To != nil {
		q = q.Where("created_at <= ?", *dr.To)
	}
	return q
}

// applyAttributeCondition translates one custom-attribute predicate to
// SQL over the attributes JSONB column.
func applyAttributeCondition(q *gorm.DB, name string, cond types.AttributeCondition) *gorm.DB {
	field := "attributes->>?"
	switch cond.Operator {
	case types.OpEquals:
		return q.Where(field+" = ?", name, fmt.Sprint(cond.Value))
	case types.OpNotEquals:
		return q.Where(field+" <> ?", name, fmt.Sprint(cond.Value))
	case types.OpContains:
		return q.Where(field+" ILIKE ?", name, "%"+fmt.Sprint(cond.Value)+"%")
	case types.OpStartsWith:
		return q.Where(field+" ILIKE ?", name, fmt.Sprint(cond.Value)+"%")
	case types.OpEndsWith:
		return q.Where(field+" ILIKE ?", name, "%"+fmt.Sprint(cond.Value))
	case types.OpGt:
		return q.Where("("+field+")::numeric > ?", name, cond.Value)
	case types.OpGte:
		return q.Where("("+field+")::numeric >= ?", name, cond.Value)
	case types.OpLt:
		return q.Where("("+field+")::numeric < ?", name, cond.Value)
	case types.OpLte:
		return q.Where("("+field+")::numeric <= ?", name, cond.Value)
	case types.OpBefore:
		return q.Where("("+field+")::timestamptz < ?", name, fmt.Sprint(cond.Value))
	case types.OpAfter:
		return q.Where("("+field+")::timestamptz > ?", name, fmt.Sprint(cond.Value))
	case types.OpBetween:
		if len(cond.Values) == 2 {
			if cond.Values[0] != nil {
				q = q.Where("("+field+")::numeric >= ?", name, cond.Values[0])
			}
			if cond.Values[1] != nil {
				q = q.Where("("+field+")::numeric <= ?", name, cond.Values[1])
			}
		}
		return q
	case types.OpIn:
		return q.Where(field+" IN ?", name, stringValues(cond.Values))
	case types.OpNotIn:
		return q.Where(field+" NOT IN ?", name, stringValues(cond.Values))
	}
	return q
}

func stringValues(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// sortItems orders the merged hit list. Relevance is the default;
// created_at, updated_at and title map to item fields.
func sortItems(items []types.SearchResultItem, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	less := func(i, j int) bool {
		a, b := items[i], items[j]
		switch sortBy {
		case "created_at":
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt) == asc
		case "updated_at":
			if a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.ID < b.ID
			}
			return a.UpdatedAt.Before(b.UpdatedAt) == asc
		case "title":
			if a.Title == b.Title {
				return a.ID < b.ID
			}
			return (strings.ToLower(a.Title) < strings.ToLower(b.Title)) == asc
		default: // relevance
			if a.RelevanceScore == b.RelevanceScore {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
			if asc {
				return a.RelevanceScore < b.RelevanceScore
			}
			return a.RelevanceScore > b.RelevanceScore
		}
	}
	sort.SliceStable(items, less)
}

// relevance scores a hit against the query with a cheap positional
// heuristic: exact title match ranks above title prefix, above title
// substring, above matches in secondary fields.
func relevance(query string, title string, secondary ...string) float64 {
	if query == "" {
		return 0.5
	}
	q := strings.ToLower(query)
	t := strings.ToLower(title)
	switch {
	case t == q:
		return 1.0
	case strings.HasPrefix(t, q):
		return 0.9
	case strings.Contains(t, " "+q):
		return 0.8
	case strings.Contains(t, q):
		return 0.7
	}
	for _, s := range secondary {
		if strings.Contains(strings.ToLower(s), q) {
			return 0.4
		}
	}
	return 0.2
}

// highlight wraps the matched substring of each field in <em> marks.
// Fields without a match are omitted.
func highlight(query string, fields map[string]string) map[string]string {
	if query == "" {
		return nil
	}
	out := make(map[string]string)
	lower := strings.ToLower(query)
	for name, value := range fields {
		idx := strings.Index(strings.ToLower(value), lower)
		if idx < 0 {
			continue
		}
		out[name] = value[:idx] + "<em>" + value[idx:idx+len(query)] + "</em>" + value[idx+len(query):]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
