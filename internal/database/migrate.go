package database

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Migrations lists every schema migration. Append new ones at the end.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		v1(), // reports table with domain_name index
		v2(), // system_logs table
		v3(), // unbounded text for report text columns
	}
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, &gormigrate.Options{
		TableName:      "migrations",
		IDColumnName:   "id",
		IDColumnSize:   190,
		UseTransaction: false,
	}, Migrations())
	return m.Migrate()
}

func v1() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "1",
		Migrate: func(db *gorm.DB) error {
			return db.AutoMigrate(&v1Report{})
		},
		Rollback: func(db *gorm.DB) error {
			return db.Migrator().DropTable("reports")
		},
	}
}

type v1Report struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	DomainName      string    `gorm:"size:255;not null;index:idx_reports_domain_name"`
	AbuseType       string    `gorm:"size:100;not null"`
	ReportSource    string    `gorm:"size:255;not null"`
	ConfidenceScore int       `gorm:"not null"`
	RiskScore       int       `gorm:"not null"`
	Status          string    `gorm:"size:20;not null;default:'New'"`
	ReviewerID      *string   `gorm:"size:255"`
	LastUpdated     time.Time `gorm:"not null"`
}

func (v1Report) TableName() string {
	return "reports"
}

func v2() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "2",
		Migrate: func(db *gorm.DB) error {
			return db.AutoMigrate(&v2SystemLog{})
		},
		Rollback: func(db *gorm.DB) error {
			return db.Migrator().DropTable("system_logs")
		},
	}
}

type v2SystemLog struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	Timestamp time.Time      `gorm:"not null;index"`
	Level     string         `gorm:"size:10;not null;index"`
	Message   string         `gorm:"type:text"`
	RequestID string         `gorm:"size:64;index"`
	Channel   string         `gorm:"size:20;index"`
	ReportID  *uint
	Domain    string         `gorm:"size:255"`
	Error     string         `gorm:"type:text"`
	LatencyMs int
	Extra     datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (v2SystemLog) TableName() string {
	return "system_logs"
}

// v3 widens the free-text report columns. Incoming values carry no length
// limit, so a long abuse type must not fail the insert on postgres.
func v3() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "3",
		Migrate: func(db *gorm.DB) error {
			// sqlite never enforces declared varchar lengths
			if db.Dialector.Name() != "postgres" {
				return nil
			}
			if err := db.Exec(`ALTER TABLE reports
				ALTER COLUMN domain_name TYPE text,
				ALTER COLUMN abuse_type TYPE text,
				ALTER COLUMN report_source TYPE text`).Error; err != nil {
				return err
			}
			return db.Exec(`ALTER TABLE system_logs ALTER COLUMN domain TYPE text`).Error
		},
		Rollback: func(db *gorm.DB) error {
			if db.Dialector.Name() != "postgres" {
				return nil
			}
			if err := db.Exec(`ALTER TABLE reports
				ALTER COLUMN domain_name TYPE varchar(255),
				ALTER COLUMN abuse_type TYPE varchar(100),
				ALTER COLUMN report_source TYPE varchar(255)`).Error; err != nil {
				return err
			}
			return db.Exec(`ALTER TABLE system_logs ALTER COLUMN domain TYPE varchar(255)`).Error
		},
	}
}
