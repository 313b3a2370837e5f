package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/exposure_sheet_service/internal/domain"
)

const processingRunKind = "ProcessingRun"

// DatastoreClient wraps the cloud datastore client
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient connects to Datastore for the given project.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// WrapDatastoreClient wraps an existing datastore client
func WrapDatastoreClient(client *datastore.Client) *DatastoreClient {
	if client == nil {
		return nil
	}
	return &DatastoreClient{client: client}
}

// SaveProcessingRun writes one audit record for a workbook run.
func (dc *DatastoreClient) SaveProcessingRun(ctx context.Context, run *domain.ProcessingRun) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}

	if run.ID == "" {
		run.ID = fmt.Sprintf("%s-%d", run.Workbook, run.StartedAt.UnixNano())
	}
	key := datastore.NameKey(processingRunKind, run.ID, nil)

	_, err := dc.client.Put(ctx, key, run)
	return err
}

// ListProcessingRuns returns the most recent runs, newest first.
func (dc *DatastoreClient) ListProcessingRuns(ctx context.Context, limit int) ([]domain.ProcessingRun, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	q := datastore.NewQuery(processingRunKind).
		Order("-StartedAt").
		Limit(limit)

	var runs []domain.ProcessingRun
	keys, err := dc.client.GetAll(ctx, q, &runs)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing runs: %w", err)
	}
	for i, k := range keys {
		runs[i].ID = k.Name
	}
	return runs, nil
}

// ListRunsSince returns runs started at or after the given time.
func (dc *DatastoreClient) ListRunsSince(ctx context.Context, since time.Time) ([]domain.ProcessingRun, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	q := datastore.NewQuery(processingRunKind).
		FilterField("StartedAt", ">=", since).
		Order("-StartedAt")

	var runs []domain.ProcessingRun
	keys, err := dc.client.GetAll(ctx, q, &runs)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing runs: %w", err)
	}
	for i, k := range keys {
		runs[i].ID = k.Name
	}
	return runs, nil
}

// Close releases the underlying client.
func (dc *DatastoreClient) Close() error {
	if dc == nil || dc.client == nil {
		return nil
	}
	return dc.client.Close()
}
