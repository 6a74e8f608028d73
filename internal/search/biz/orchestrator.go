package biz

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/merchware/unisearch/internal/search/types"
)

// Phase is the orchestrator's request-lifecycle state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDebouncing Phase = "debouncing"
	PhaseFetching   Phase = "fetching"
	PhaseSettled    Phase = "settled"
	PhaseErrored    Phase = "errored"
)

// ViewState is the combined state exposed to the consumer after every
// committed transition. Results holds the last settled page; Previous
// is non-nil only while a refetch is in flight (stale-while-revalidate).
type ViewState struct {
	Phase       Phase
	Filters     types.SearchFilters
	Results     *types.SearchResults
	Previous    *types.SearchResults
	Suggestions *types.SuggestionsResponse
	Facets      []types.Facet
	Err         error
}

// OrchestratorConfig tunes the request lifecycle.
type OrchestratorConfig struct {
	Debounce        time.Duration // free-text debounce window
	DefaultPerPage  int
	MaxPerPage      int
	SuggestMinChars int // minimum query length before suggestions fire
}

// DefaultOrchestratorConfig returns the stock tuning.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Debounce:        300 * time.Millisecond,
		DefaultPerPage:  types.DefaultPerPage,
		MaxPerPage:      100,
		SuggestMinChars: 2,
	}
}

// Orchestrator owns the current filter state and drives fetches with
// debouncing, cancellation and staleness discipline. All state lives
// behind one mutex; fetches run in goroutines and report back guarded
// by a monotonically increasing sequence number, so a superseded
// response is dropped on arrival instead of racing the current one
// (last-request-wins). Closing cancels the root context, which keeps
// any in-flight response from mutating state after teardown.
type Orchestrator struct {
	store   Searcher
	presets *PresetUseCase
	cfg     OrchestratorConfig
	log     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	closed       bool
	phase        Phase
	filters      types.SearchFilters
	results      *types.SearchResults
	previous     *types.SearchResults
	suggestions  *types.SuggestionsResponse
	facets       []types.Facet
	lastErr      error
	seq          uint64
	suggestSeq   uint64
	facetSeq     uint64
	debounceTick *time.Timer
	onChange     func(ViewState)
}

// NewOrchestrator creates an idle orchestrator. The presets use case
// may be nil when preset application is not needed.
func NewOrchestrator(store Searcher, presets *PresetUseCase, cfg OrchestratorConfig, log *zap.Logger) *Orchestrator {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultOrchestratorConfig().Debounce
	}
	if cfg.SuggestMinChars <= 0 {
		cfg.SuggestMinChars = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		store:   store,
		presets: presets,
		cfg:     cfg,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		phase:   PhaseIdle,
		filters: types.ClearSearch(),
	}
}

// OnChange registers a callback invoked with a snapshot after every
// committed transition. The callback runs outside the state lock.
func (o *Orchestrator) OnChange(fn func(ViewState)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// Snapshot returns the current view state.
func (o *Orchestrator) Snapshot() ViewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// SetText records a free-text edit. The results fetch is debounced so
// only the last edit inside the window fires; suggestion fetches are
// issued per edit once the query is long enough, guarded by their own
// sequence counter.
func (o *Orchestrator) SetText(text string) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.filters.Text = text
	o.filters.Page = types.DefaultPage

	if len([]rune(text)) >= o.cfg.SuggestMinChars {
		o.fetchSuggestionsLocked(text)
	} else {
		o.suggestions = nil
	}

	if !o.filters.Searchable() {
		o.stopDebounceLocked()
		o.seq++ // supersede any in-flight fetch
		o.phase = PhaseIdle
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.emit(snap)
		return
	}

	o.phase = PhaseDebouncing
	o.stopDebounceLocked()
	o.debounceTick = time.AfterFunc(o.cfg.Debounce, o.debounceFired)
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

func (o *Orchestrator) debounceFired() {
	o.mu.Lock()
	if o.closed || o.phase != PhaseDebouncing {
		o.mu.Unlock()
		return
	}
	o.startFetchLocked()
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// SetEntityTypes replaces the entity-type selection. Structured edits
// are discrete actions, so the fetch fires immediately.
func (o *Orchestrator) SetEntityTypes(entityTypes []types.EntityType) {
	o.applyPatch(types.FilterPatch{EntityTypes: append([]types.EntityType{}, entityTypes...)})
}

// UpdateFilters merges a partial filter patch and fetches immediately.
func (o *Orchestrator) UpdateFilters(patch types.FilterPatch) {
	o.applyPatch(patch)
}

// SetSort changes ordering and refetches. The page is kept.
func (o *Orchestrator) SetSort(sortBy, sortOrder string) {
	o.applyPatch(types.FilterPatch{SortBy: &sortBy, SortOrder: &sortOrder})
}

// SetPage jumps to the given page and refetches. The page is, by
// definition, not reset here.
func (o *Orchestrator) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.filters.Page = page
	o.stopDebounceLocked()
	o.startFetchLocked()
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// SetPerPage changes the page size and refetches without resetting the
// page.
func (o *Orchestrator) SetPerPage(perPage int) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.filters.PerPage = perPage
	o.filters.Normalize(o.cfg.MaxPerPage)
	o.stopDebounceLocked()
	o.startFetchLocked()
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// ApplyPreset replaces the whole filter state with the preset's
// snapshot (replace, not merge) and fetches immediately. Usage
// accounting runs in the background and never blocks the replacement.
func (o *Orchestrator) ApplyPreset(preset *types.FilterPreset) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.filters = preset.Filters.Clone()
	o.filters.EntityTypes = append([]types.EntityType(nil), preset.EntityTypes...)
	o.filters.Page = types.DefaultPage
	o.filters.Normalize(o.cfg.MaxPerPage)
	o.stopDebounceLocked()
	o.startFetchLocked()
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)

	if o.presets != nil {
		go o.presets.RecordUsage(preset.ID)
	}
}

// ClearFilters drops every structured constraint but keeps the free
// text, then refetches if anything searchable remains.
func (o *Orchestrator) ClearFilters() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.filters = o.filters.ClearFilters()
	o.facets = nil
	o.stopDebounceLocked()
	if o.filters.Searchable() {
		o.startFetchLocked()
	} else {
		o.seq++ // supersede any in-flight fetch
		o.phase = PhaseIdle
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// ClearSearch resets the entire query and discards all buffers. Any
// in-flight fetch is superseded and its response will be dropped.
func (o *Orchestrator) ClearSearch() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.filters = types.ClearSearch()
	o.stopDebounceLocked()
	o.seq++
	o.suggestSeq++
	o.facetSeq++
	o.results = nil
	o.previous = nil
	o.suggestions = nil
	o.facets = nil
	o.lastErr = nil
	o.phase = PhaseIdle
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// Refresh re-issues the fetch for the current filter state. It is the
// manual retry path after a transport error.
func (o *Orchestrator) Refresh() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.stopDebounceLocked()
	if o.filters.Searchable() {
		o.startFetchLocked()
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// Close tears the orchestrator down. In-flight responses can no longer
// mutate state.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.stopDebounceLocked()
	o.mu.Unlock()
	o.cancel()
}

func (o *Orchestrator) applyPatch(patch types.FilterPatch) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.filters = types.Merge(o.filters, patch)
	o.stopDebounceLocked()
	if o.filters.Searchable() {
		o.startFetchLocked()
		o.fetchFacetsLocked()
	} else {
		o.seq++
		o.phase = PhaseIdle
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.emit(snap)
}

// startFetchLocked validates the snapshot and launches the results
// fetch. A validation failure is rejected before dispatch; the store
// never sees a malformed filter.
func (o *Orchestrator) startFetchLocked() {
	o.filters.Normalize(o.cfg.MaxPerPage)
	if err := o.filters.Validate(); err != nil {
		o.lastErr = err
		o.phase = PhaseErrored
		return
	}

	o.seq++
	mySeq := o.seq
	snapshot := o.filters.Clone()
	if o.results != nil {
		o.previous = o.results
	}
	o.phase = PhaseFetching

	go func() {
		res, err := o.store.Search(o.ctx, snapshot)

		o.mu.Lock()
		if o.closed || mySeq != o.seq || o.ctx.Err() != nil {
			// Superseded or torn down; drop silently.
			o.mu.Unlock()
			return
		}
		if err != nil {
			// Previous results stay visible; errors never blank the screen.
			o.lastErr = err
			o.phase = PhaseErrored
			o.previous = nil
		} else {
			o.results = res
			o.previous = nil
			o.lastErr = nil
			o.phase = PhaseSettled
			if len(res.Facets) > 0 {
				o.facets = res.Facets
			}
		}
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.emit(snap)
	}()
}

// fetchSuggestionsLocked launches an independent, lower-priority
// suggestion fetch. It shares nothing with the results sequence, so a
// slow suggestion response can neither block nor reorder results.
func (o *Orchestrator) fetchSuggestionsLocked(query string) {
	o.suggestSeq++
	mySeq := o.suggestSeq
	entityTypes := append([]types.EntityType(nil), o.filters.EntityTypes...)

	go func() {
		resp, err := o.store.Suggest(o.ctx, query, entityTypes)
		o.mu.Lock()
		if o.closed || mySeq != o.suggestSeq || o.ctx.Err() != nil {
			o.mu.Unlock()
			return
		}
		if err != nil {
			// Suggestions are best-effort; keep what we had.
			o.log.Debug("suggestion fetch failed", zap.Error(err))
			o.mu.Unlock()
			return
		}
		o.suggestions = resp
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.emit(snap)
	}()
}

func (o *Orchestrator) fetchFacetsLocked() {
	o.facetSeq++
	mySeq := o.facetSeq
	snapshot := o.filters.Clone()

	go func() {
		facets, err := o.store.Facets(o.ctx, snapshot)
		o.mu.Lock()
		if o.closed || mySeq != o.facetSeq || o.ctx.Err() != nil {
			o.mu.Unlock()
			return
		}
		if err != nil {
			o.log.Debug("facet fetch failed", zap.Error(err))
			o.mu.Unlock()
			return
		}
		o.facets = facets
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.emit(snap)
	}()
}

func (o *Orchestrator) stopDebounceLocked() {
	if o.debounceTick != nil {
		o.debounceTick.Stop()
		o.debounceTick = nil
	}
}

func (o *Orchestrator) snapshotLocked() ViewState {
	state := ViewState{
		Phase:       o.phase,
		Filters:     o.filters.Clone(),
		Results:     o.results,
		Suggestions: o.suggestions,
		Facets:      o.facets,
		Err:         o.lastErr,
	}
	if o.phase == PhaseFetching {
		state.Previous = o.previous
	}
	return state
}

func (o *Orchestrator) emit(snap ViewState) {
	o.mu.Lock()
	fn := o.onChange
	o.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
