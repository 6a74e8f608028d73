package service

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/merchware/unisearch/internal/conf"
	apperrors "github.com/merchware/unisearch/internal/pkg/errors"
	"github.com/merchware/unisearch/internal/pkg/logger"
	"github.com/merchware/unisearch/internal/pkg/response"
	"github.com/merchware/unisearch/internal/search/biz"
	"github.com/merchware/unisearch/internal/search/data"
	"github.com/merchware/unisearch/internal/search/types"
)

// SearchService exposes the unified search surface over HTTP.
type SearchService struct {
	store      *data.SearchStore
	presets    *biz.PresetUseCase
	exports    biz.ExportDispatcher
	maxPerPage int
	minChars   int
	logger     *logger.Logger
}

// NewSearchService creates the search HTTP service.
func NewSearchService(store *data.SearchStore, presets *biz.PresetUseCase, exports biz.ExportDispatcher, cfg *conf.SearchConfig, log *logger.Logger) *SearchService {
	return &SearchService{
		store:      store,
		presets:    presets,
		exports:    exports,
		maxPerPage: cfg.MaxPerPage,
		minChars:   cfg.SuggestMinChars,
		logger:     log.Named("search"),
	}
}

// RegisterRoutes mounts the search API under the given group.
func (s *SearchService) RegisterRoutes(r *gin.RouterGroup) {
	search := r.Group("/search")
	{
		search.POST("", s.Search)
		search.GET("/suggestions", s.Suggestions)
		search.POST("/facets", s.Facets)
		search.GET("/tags", s.Tags)

		search.GET("/presets", s.ListPresets)
		search.POST("/presets", s.CreatePreset)
		search.PUT("/presets/:id", s.UpdatePreset)
		search.DELETE("/presets/:id", s.DeletePreset)
		search.POST("/presets/:id/apply", s.ApplyPreset)

		search.POST("/export", s.Export)
		search.GET("/export/:id", s.ExportStatus)
		search.GET("/export/:id/download", s.ExportDownload)
	}
}

// Search executes the canonical query. Malformed filters are rejected
// before the store is touched; an empty query against an empty filter
// set returns an empty envelope without hitting the store at all.
func (s *SearchService) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	filters := req.SearchFilters
	filters.Normalize(s.maxPerPage)
	if err := filters.Validate(); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidFilter, err.Error())
		return
	}

	if !filters.Searchable() {
		response.Success(c, &types.SearchResults{
			Items:   []types.SearchResultItem{},
			Page:    filters.Page,
			PerPage: filters.PerPage,
		})
		return
	}

	results, err := s.store.Search(c.Request.Context(), filters)
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("search failed", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrSearchBackend)
		return
	}

	s.store.RecordRecent(c.Request.Context(), filters.Text)
	response.Success(c, results)
}

// Suggestions serves autocomplete. Queries below the configured length
// yield an empty payload rather than an error; the client gates at the
// same threshold.
func (s *SearchService) Suggestions(c *gin.Context) {
	var q SuggestionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if len([]rune(q.Query)) < s.minChars {
		response.Success(c, &types.SuggestionsResponse{
			Suggestions:    []string{},
			Categories:     []string{},
			Tags:           []string{},
			RecentSearches: []string{},
		})
		return
	}

	resp, err := s.store.Suggest(c.Request.Context(), q.Query, types.ParseEntityTypes(q.EntityTypes))
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("suggestion fetch failed", zap.Error(err))
		response.InternalError(c, "failed to fetch suggestions")
		return
	}
	response.Success(c, resp)
}

// Facets recomputes the facet set for the given filters.
func (s *SearchService) Facets(c *gin.Context) {
	var req FacetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := req.SearchFilters.Validate(); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidFilter, err.Error())
		return
	}

	facets, err := s.store.Facets(c.Request.Context(), req.SearchFilters)
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("facet computation failed", zap.Error(err))
		response.InternalError(c, "failed to compute facets")
		return
	}
	response.Success(c, gin.H{"facets": facets})
}

// Tags returns the tag vocabulary for the selected entity types.
func (s *SearchService) Tags(c *gin.Context) {
	var q TagsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tags, err := s.store.ListTags(c.Request.Context(), types.ParseEntityTypes(q.EntityTypes))
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("tag listing failed", zap.Error(err))
		response.InternalError(c, "failed to list tags")
		return
	}
	response.Success(c, gin.H{"tags": tags})
}

// ListPresets returns the caller's presets.
func (s *SearchService) ListPresets(c *gin.Context) {
	var q PresetsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	presets, err := s.presets.List(c.Request.Context(), ownerID(c), types.ParseEntityTypes(q.EntityTypes))
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("preset listing failed", zap.Error(err))
		response.InternalError(c, "failed to list presets")
		return
	}
	response.Success(c, gin.H{"presets": presets})
}

// CreatePreset saves a new named filter snapshot.
func (s *SearchService) CreatePreset(c *gin.Context) {
	var req CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	preset, err := s.presets.Create(
		c.Request.Context(),
		ownerID(c),
		req.Name,
		req.Description,
		req.Filters,
		types.ParseEntityTypes(req.EntityTypes),
		req.IsPublic,
		req.IsDefault,
	)
	if err != nil {
		s.handlePresetError(c, err)
		return
	}
	response.Created(c, preset)
}

// UpdatePreset applies a partial edit.
func (s *SearchService) UpdatePreset(c *gin.Context) {
	var req UpdatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	update := types.PresetUpdate{
		Name:        req.Name,
		Description: req.Description,
		Filters:     req.Filters,
		IsDefault:   req.IsDefault,
		IsPublic:    req.IsPublic,
	}
	if req.EntityTypes != nil {
		update.EntityTypes = types.ParseEntityTypes(req.EntityTypes)
	}

	preset, err := s.presets.Update(c.Request.Context(), c.Param("id"), ownerID(c), update)
	if err != nil {
		s.handlePresetError(c, err)
		return
	}
	response.Success(c, preset)
}

// DeletePreset removes a preset.
func (s *SearchService) DeletePreset(c *gin.Context) {
	if err := s.presets.Delete(c.Request.Context(), c.Param("id"), ownerID(c)); err != nil {
		s.handlePresetError(c, err)
		return
	}
	response.Success(c, nil)
}

// ApplyPreset returns the preset snapshot for the client to install as
// its whole filter state, and records usage in the background. The
// accounting write never delays the response.
func (s *SearchService) ApplyPreset(c *gin.Context) {
	preset, err := s.presets.Get(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		s.handlePresetError(c, err)
		return
	}

	go s.presets.RecordUsage(preset.ID)

	response.Success(c, gin.H{
		"filters":      preset.Filters,
		"entity_types": preset.EntityTypes,
	})
}

// Export forwards an export job descriptor to the dispatcher.
func (s *SearchService) Export(c *gin.Context) {
	var req ExportRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := req.Filters.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	job, err := s.exports.Submit(c.Request.Context(), types.ExportRequest{
		Filters:     req.Filters,
		EntityTypes: types.ParseEntityTypes(req.EntityTypes),
		Format:      req.Format,
		MaxResults:  req.MaxResults,
	}, ownerID(c))
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("export submission failed", zap.Error(err))
		response.InternalError(c, "failed to submit export")
		return
	}
	response.Created(c, job)
}

// ExportStatus proxies the dispatcher's view of a job.
func (s *SearchService) ExportStatus(c *gin.Context) {
	job, err := s.exports.Status(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrExportNotFound)
		return
	}
	response.Success(c, job)
}

// ExportDownload streams a completed export payload.
func (s *SearchService) ExportDownload(c *gin.Context) {
	payload, ctype, err := s.exports.Download(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrExportNotFound)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=export-"+c.Param("id"))
	c.Data(http.StatusOK, ctype, payload)
}

func (s *SearchService) handlePresetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, biz.ErrPresetNotFound):
		response.ErrorWithCode(c, apperrors.ErrPresetNotFound)
	case errors.Is(err, biz.ErrPresetNameTaken):
		response.ErrorWithCode(c, apperrors.ErrPresetNameTaken)
	case errors.Is(err, biz.ErrInvalidFilters):
		response.ErrorWithCode(c, apperrors.ErrPresetInvalidInput, err.Error())
	default:
		s.logger.WithContext(c.Request.Context()).Error("preset operation failed", zap.Error(err))
		response.InternalError(c, "preset operation failed")
	}
}

func ownerID(c *gin.Context) string {
	if id := c.GetString("user_id"); id != "" {
		return id
	}
	return "anonymous"
}
