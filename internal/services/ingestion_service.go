package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/models"
)

// ReportCreator persists validated drafts. *ReportStore implements it.
type ReportCreator interface {
	Create(ctx context.Context, draft ReportDraft) (*models.Report, error)
}

// RecordFetcher retrieves raw records from a remote source. *FeedClient
// implements it.
type RecordFetcher interface {
	Fetch(ctx context.Context, endpoint, credential string) ([]SourceRow, error)
}

// BatchResult is the outcome of a batch or external ingestion run. Failures
// are ordered by row.
type BatchResult struct {
	Created    int
	CreatedIDs []uint
	Failures   []RowFailure
}

// IngestionService funnels every channel through ValidateRecord and
// ReportCreator.Create.
type IngestionService struct {
	store   ReportCreator
	feed    RecordFetcher
	metrics *Metrics
	logger  *slog.Logger
}

func NewIngestionService(store ReportCreator, feed RecordFetcher, metrics *Metrics, logger *slog.Logger) *IngestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionService{
		store:   store,
		feed:    feed,
		metrics: metrics,
		logger:  logger.With("component", "ingestion"),
	}
}

// Submit ingests one record from the single-report channel.
func (s *IngestionService) Submit(ctx context.Context, raw RawRecord) (*models.Report, error) {
	report, err := s.ingest(ctx, ChannelSingle, raw)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "report submitted",
		"channel", ChannelSingle, "report_id", report.ID, "domain", report.DomainName, "risk_score", report.RiskScore)
	return report, nil
}

// ImportCSV parses the whole file first; a malformed file stores nothing.
// Afterwards each row succeeds or fails on its own.
func (s *IngestionService) ImportCSV(ctx context.Context, r io.Reader) (*BatchResult, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		s.metrics.recordRun(ChannelBatch, "malformed")
		s.logger.WarnContext(ctx, "batch import rejected", "channel", ChannelBatch, "error", err)
		return nil, err
	}
	return s.ImportRows(ctx, ChannelBatch, rows), nil
}

// FetchExternal pulls records from endpoint and ingests them like a batch.
// A failed fetch stores nothing and returns ErrExternalFetchFailed.
func (s *IngestionService) FetchExternal(ctx context.Context, endpoint, credential string) (*BatchResult, error) {
	if s.feed == nil {
		return nil, fmt.Errorf("%w: no feed client configured", ErrExternalFetchFailed)
	}

	fetchID := uuid.NewString()
	rows, err := s.feed.Fetch(ctx, endpoint, credential)
	if err != nil {
		s.metrics.recordRun(ChannelExternal, "fetch_failed")
		s.logger.ErrorContext(ctx, "external fetch failed",
			"channel", ChannelExternal, "fetch_id", fetchID, "endpoint", endpoint, "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "external fetch completed",
		"channel", ChannelExternal, "fetch_id", fetchID, "endpoint", endpoint, "records", len(rows))

	return s.ImportRows(ctx, ChannelExternal, rows), nil
}

// ImportRows ingests rows in order. A failing row never stops the run.
func (s *IngestionService) ImportRows(ctx context.Context, ch Channel, rows []SourceRow) *BatchResult {
	result := &BatchResult{
		CreatedIDs: make([]uint, 0, len(rows)),
		Failures:   make([]RowFailure, 0),
	}

	for _, row := range rows {
		err := row.Err
		if err == nil {
			var report *models.Report
			report, err = s.ingest(ctx, ch, row.Record)
			if err == nil {
				result.Created++
				result.CreatedIDs = append(result.CreatedIDs, report.ID)
				continue
			}
		} else {
			s.metrics.recordRejected(ch)
		}

		failure := RowFailure{
			Row:        row.Row,
			DomainName: stringValue(row.Record[FieldDomainName]),
			Err:        err,
		}
		result.Failures = append(result.Failures, failure)
		s.logger.DebugContext(ctx, "row rejected",
			"channel", ch, "row", failure.Row, "domain", failure.DomainName, "error", err)
	}

	s.metrics.recordRun(ch, "completed")
	s.logger.InfoContext(ctx, "ingestion run completed",
		"channel", ch, "rows", len(rows), "created", result.Created, "failed", len(result.Failures))
	return result
}

func (s *IngestionService) ingest(ctx context.Context, ch Channel, raw RawRecord) (*models.Report, error) {
	draft, err := ValidateRecord(raw)
	if err != nil {
		s.metrics.recordRejected(ch)
		return nil, err
	}

	report, err := s.store.Create(ctx, draft)
	if err != nil {
		s.metrics.recordRejected(ch)
		return nil, err
	}

	s.metrics.recordCreated(ch, report.RiskScore == models.RiskHigh)
	return report, nil
}
