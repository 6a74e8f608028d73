package types

// ExportRequest describes an export job over the current filter state.
// The engine validates and forwards it; execution is external.
type ExportRequest struct {
	Filters     SearchFilters `json:"filters"`
	EntityTypes []EntityType  `json:"entity_types"`
	Format      string        `json:"format"`
	MaxResults  int           `json:"max_results,omitempty"`
}

// ExportJob is the dispatcher's view of a submitted export.
type ExportJob struct {
	ExportID    string `json:"export_id"`
	Status      string `json:"status"`
	DownloadURL string `json:"download_url,omitempty"`
}
