package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/risk"
	"gorm.io/gorm"
)

// ReportStore owns the reports table. Ids come from the database sequence so
// concurrent creates never collide.
type ReportStore struct {
	db      *gorm.DB
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

type StoreOption func(*ReportStore)

// WithClock replaces the time source used for last_updated.
func WithClock(now func() time.Time) StoreOption {
	return func(s *ReportStore) { s.now = now }
}

func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *ReportStore) { s.logger = logger }
}

func WithStoreMetrics(m *Metrics) StoreOption {
	return func(s *ReportStore) { s.metrics = m }
}

func NewReportStore(db *gorm.DB, opts ...StoreOption) *ReportStore {
	s := &ReportStore{
		db:     db,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "report_store")
	return s
}

// Create stamps the risk score, the New status and the timestamp, then
// persists the draft.
func (s *ReportStore) Create(ctx context.Context, draft ReportDraft) (*models.Report, error) {
	if err := checkDraft(draft); err != nil {
		return nil, err
	}

	report := models.Report{
		DomainName:      draft.DomainName,
		AbuseType:       draft.AbuseType,
		ReportSource:    draft.ReportSource,
		ConfidenceScore: draft.ConfidenceScore,
		RiskScore: risk.Classify(risk.Input{
			AbuseType:       draft.AbuseType,
			ConfidenceScore: draft.ConfidenceScore,
			DomainName:      draft.DomainName,
		}),
		Status:      models.StatusNew,
		LastUpdated: s.now(),
	}

	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.DebugContext(ctx, "report created",
		"report_id", report.ID, "domain", report.DomainName, "risk_score", report.RiskScore)
	return &report, nil
}

// ListAll returns every report in insertion order.
func (s *ReportStore) ListAll(ctx context.Context) ([]models.Report, error) {
	reports := make([]models.Report, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// FindByDomain returns the history of one domain in insertion order. The
// match is exact and case-sensitive; no match yields an empty slice.
func (s *ReportStore) FindByDomain(ctx context.Context, domainName string) ([]models.Report, error) {
	reports := make([]models.Report, 0)
	err := s.db.WithContext(ctx).
		Where("domain_name = ?", domainName).
		Order("id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find reports for domain: %w", err)
	}
	return reports, nil
}

func (s *ReportStore) FindByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

// Update moves a report to status on behalf of reviewerID. last_updated is
// refreshed even when the status does not change, and never moves backwards.
func (s *ReportStore) Update(ctx context.Context, id uint, status, reviewerID string) (*models.Report, error) {
	var report models.Report

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		change, err := PlanTransition(report.Status, status, reviewerID)
		if err != nil {
			return err
		}

		now := s.now()
		if now.Before(report.LastUpdated) {
			now = report.LastUpdated
		}

		result := tx.Model(&models.Report{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":       string(change.Status),
				"reviewer_id":  change.ReviewerID,
				"last_updated": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		report.Status = change.Status
		report.ReviewerID = &change.ReviewerID
		report.LastUpdated = now
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrMissingReviewer) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update report %d: %w", id, err)
	}

	s.metrics.recordUpdate(string(report.Status))
	s.logger.DebugContext(ctx, "report updated",
		"report_id", report.ID, "status", report.Status, "reviewer_id", *report.ReviewerID)
	return &report, nil
}

// checkDraft guards the store against drafts that skipped ValidateRecord.
func checkDraft(d ReportDraft) error {
	var verr ValidationError
	if d.DomainName == "" {
		verr.add(FieldDomainName, ErrMissingField, "cannot be blank")
	}
	if d.AbuseType == "" {
		verr.add(FieldAbuseType, ErrMissingField, "cannot be blank")
	}
	if d.ReportSource == "" {
		verr.add(FieldReportSource, ErrMissingField, "cannot be blank")
	}
	if d.ConfidenceScore < 0 || d.ConfidenceScore > 100 {
		verr.add(FieldConfidenceScore, ErrOutOfRange, "must be between 0 and 100")
	}
	if len(verr.Fields) > 0 {
		return &verr
	}
	return nil
}
