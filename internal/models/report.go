package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ReportStatus is the triage label of a Report.
type ReportStatus string

const (
	StatusNew       ReportStatus = "New"
	StatusReviewed  ReportStatus = "Reviewed"
	StatusEscalated ReportStatus = "Escalated"
	StatusSuspended ReportStatus = "Suspended"
)

func (s ReportStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *ReportStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = ReportStatus(v)
	case []byte:
		*s = ReportStatus(v)
	case nil:
		*s = ""
	default:
		return fmt.Errorf("cannot scan %T into ReportStatus", src)
	}
	return nil
}

// Risk scores stamped by the classifier.
const (
	RiskStandard = 50
	RiskHigh     = 100
)

// Report is one abuse allegation against a domain.
type Report struct {
	ID              uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	DomainName      string       `gorm:"type:text;not null;index:idx_reports_domain_name" json:"domain_name"`
	AbuseType       string       `gorm:"type:text;not null" json:"abuse_type"`
	ReportSource    string       `gorm:"type:text;not null" json:"report_source"`
	ConfidenceScore int          `gorm:"not null" json:"confidence_score"`
	RiskScore       int          `gorm:"not null" json:"risk_score"`
	Status          ReportStatus `gorm:"size:20;not null;default:'New'" json:"status"`
	ReviewerID      *string      `gorm:"size:255" json:"reviewer_id"`
	LastUpdated     time.Time    `gorm:"not null" json:"last_updated"`
}
