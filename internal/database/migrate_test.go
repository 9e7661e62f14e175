package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/testutil"
)

func TestMigrate(t *testing.T) {
	db := testutil.NewDB(t)

	t.Run("tables created", func(t *testing.T) {
		assert := assert.New(t)
		assert.True(db.Migrator().HasTable("reports"))
		assert.True(db.Migrator().HasTable("system_logs"))
		assert.True(db.Migrator().HasIndex("reports", "idx_reports_domain_name"))
	})

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, database.Migrate(db))

		var count int64
		require.NoError(t, db.Table("migrations").Count(&count).Error)
		assert.EqualValues(t, len(database.Migrations()), count)
	})

	t.Run("text column migration applied", func(t *testing.T) {
		var ids []string
		require.NoError(t, db.Table("migrations").Order("id").Pluck("id", &ids).Error)
		assert.Contains(t, ids, "3")
	})

	t.Run("long text values round-trip", func(t *testing.T) {
		tests := []struct {
			name   string
			domain string
			abuse  string
			source string
		}{
			{"long abuse type", "long-abuse.com", strings.Repeat("a", 300), "analyst"},
			{"long domain", strings.Repeat("d", 290) + ".com", "Spam", "analyst"},
			{"long source", "long-source.com", "Spam", strings.Repeat("s", 1000)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := models.Report{
					DomainName:      tt.domain,
					AbuseType:       tt.abuse,
					ReportSource:    tt.source,
					ConfidenceScore: 10,
					RiskScore:       models.RiskStandard,
					Status:          models.StatusNew,
					LastUpdated:     time.Now(),
				}
				require.NoError(t, db.Create(&r).Error)

				var got models.Report
				require.NoError(t, db.First(&got, r.ID).Error)
				assert.Equal(t, tt.domain, got.DomainName)
				assert.Equal(t, tt.abuse, got.AbuseType)
				assert.Equal(t, tt.source, got.ReportSource)
			})
		}
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, database.Ping(db))
	})
}
