package data

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/merchware/unisearch/internal/search/types"
)

const (
	exportKeyPrefix  = "unisearch:export:"
	exportTTL        = 24 * time.Hour
	exportTimeout    = 2 * time.Minute
	exportMaxResults = 10000
	exportWorkers    = 4
)

type exportRecord struct {
	OwnerID     string              `json:"owner_id"`
	Request     types.ExportRequest `json:"request"`
	Status      string              `json:"status"`
	DownloadURL string              `json:"download_url,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// ExportDispatcher registers export jobs in redis and renders them on a
// background worker pool. The job record and the rendered payload share
// the job's TTL.
type ExportDispatcher struct {
	rdb   *redis.Client
	store *SearchStore
	pool  *ants.Pool
	log   *zap.Logger
}

// NewExportDispatcher creates the dispatcher with its worker pool.
func NewExportDispatcher(rdb *redis.Client, store *SearchStore, log *zap.Logger) (*ExportDispatcher, error) {
	pool, err := ants.NewPool(exportWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to create export worker pool: %w", err)
	}
	return &ExportDispatcher{rdb: rdb, store: store, pool: pool, log: log}, nil
}

// Close releases the worker pool. Jobs already running finish; queued
// jobs are dropped.
func (d *ExportDispatcher) Close() {
	d.pool.Release()
}

// Submit registers the job as "pending" and queues it for rendering.
// The caller has already validated the filters.
func (d *ExportDispatcher) Submit(ctx context.Context, req types.ExportRequest, ownerID string) (*types.ExportJob, error) {
	id := uuid.New().String()
	rec := exportRecord{OwnerID: ownerID, Request: req, Status: "pending"}
	if err := d.writeRecord(ctx, id, rec); err != nil {
		return nil, fmt.Errorf("failed to register export job: %w", err)
	}

	if err := d.pool.Submit(func() { d.run(id, rec) }); err != nil {
		d.log.Error("failed to queue export job", zap.String("export_id", id), zap.Error(err))
		rec.Status = "failed"
		rec.Error = "export queue unavailable"
		_ = d.writeRecord(context.Background(), id, rec)
		return nil, fmt.Errorf("failed to queue export job: %w", err)
	}

	return &types.ExportJob{ExportID: id, Status: rec.Status}, nil
}

// Status reads the job record back. Only the submitting owner may see
// it.
func (d *ExportDispatcher) Status(ctx context.Context, exportID, ownerID string) (*types.ExportJob, error) {
	rec, err := d.readRecord(ctx, exportID, ownerID)
	if err != nil {
		return nil, err
	}
	return &types.ExportJob{
		ExportID:    exportID,
		Status:      rec.Status,
		DownloadURL: rec.DownloadURL,
	}, nil
}

// Download returns the rendered payload and its content type. The job
// must be completed and owned by the caller.
func (d *ExportDispatcher) Download(ctx context.Context, exportID, ownerID string) ([]byte, string, error) {
	rec, err := d.readRecord(ctx, exportID, ownerID)
	if err != nil {
		return nil, "", err
	}
	if rec.Status != "completed" {
		return nil, "", fmt.Errorf("export job %s is not completed", exportID)
	}
	payload, err := d.rdb.Get(ctx, exportKeyPrefix+exportID+":payload").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, "", fmt.Errorf("export job %s payload expired", exportID)
		}
		return nil, "", err
	}
	return payload, contentType(rec.Request.Format), nil
}

func (d *ExportDispatcher) run(id string, rec exportRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	rec.Status = "processing"
	if err := d.writeRecord(ctx, id, rec); err != nil {
		d.log.Error("failed to mark export processing", zap.String("export_id", id), zap.Error(err))
	}

	payload, err := d.render(ctx, rec.Request)
	if err != nil {
		d.log.Error("export job failed", zap.String("export_id", id), zap.Error(err))
		rec.Status = "failed"
		rec.Error = err.Error()
		_ = d.writeRecord(ctx, id, rec)
		return
	}

	if err := d.rdb.Set(ctx, exportKeyPrefix+id+":payload", payload, exportTTL).Err(); err != nil {
		rec.Status = "failed"
		rec.Error = "failed to store export payload"
		_ = d.writeRecord(ctx, id, rec)
		return
	}

	rec.Status = "completed"
	rec.DownloadURL = "/api/v1/search/export/" + id + "/download"
	if err := d.writeRecord(ctx, id, rec); err != nil {
		d.log.Error("failed to mark export completed", zap.String("export_id", id), zap.Error(err))
	}
}

func (d *ExportDispatcher) render(ctx context.Context, req types.ExportRequest) ([]byte, error) {
	filters := req.Filters.Clone()
	if len(req.EntityTypes) > 0 {
		filters.EntityTypes = req.EntityTypes
	}
	filters.Page = 1
	filters.PerPage = exportMaxResults
	if req.MaxResults > 0 && req.MaxResults < exportMaxResults {
		filters.PerPage = req.MaxResults
	}
	filters.Normalize(exportMaxResults)

	results, err := d.store.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("export query failed: %w", err)
	}

	switch req.Format {
	case "csv":
		return renderCSV(results.Items)
	default:
		return json.MarshalIndent(results.Items, "", "  ")
	}
}

func renderCSV(items []types.SearchResultItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "entity_type", "title", "subtitle", "created_at", "relevance"}); err != nil {
		return nil, err
	}
	for _, item := range items {
		row := []string{
			item.ID,
			string(item.EntityType),
			item.Title,
			item.Subtitle,
			item.CreatedAt.Format(time.RFC3339),
			strconv.FormatFloat(item.RelevanceScore, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func contentType(format string) string {
	if format == "csv" {
		return "text/csv"
	}
	return "application/json"
}

func (d *ExportDispatcher) writeRecord(ctx context.Context, id string, rec exportRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return d.rdb.Set(ctx, exportKeyPrefix+id, payload, exportTTL).Err()
}

func (d *ExportDispatcher) readRecord(ctx context.Context, exportID, ownerID string) (*exportRecord, error) {
	payload, err := d.rdb.Get(ctx, exportKeyPrefix+exportID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("export job %s not found", exportID)
		}
		return nil, err
	}
	var rec exportRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	// Hide other owners' jobs the same way as missing ones.
	if rec.OwnerID != ownerID {
		return nil, fmt.Errorf("export job %s not found", exportID)
	}
	return &rec, nil
}
