package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/testutil"
)

func testEnv(t *testing.T) (*env, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return &env{
		cfg: config.Load(),
		openDB: func(*config.Config) (*gorm.DB, func(), error) {
			return db, func() {}, nil
		},
	}, db
}

func run(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand(e)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportCommand(t *testing.T) {
	e, db := testEnv(t)
	path := writeCSV(t, "domain_name,abuse_type,report_source,confidence_score\n"+
		"good.com,Spam,csv_import,40\n"+
		"bad.com,Spam,csv_import,abc\n")

	out, err := run(t, e, "import", path)

	require.NoError(t, err)
	assert.Contains(t, out, "created 1, failed 1")
	assert.Contains(t, out, "row 2 (bad.com): InvalidFormat")
	var n int64
	require.NoError(t, db.Model(&models.Report{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestImportCommand_MissingFile(t *testing.T) {
	e, _ := testEnv(t)

	_, err := run(t, e, "import", filepath.Join(t.TempDir(), "nope.csv"))

	assert.Error(t, err)
}

func TestListHistoryUpdate(t *testing.T) {
	e, _ := testEnv(t)
	path := writeCSV(t, "domain_name,abuse_type,report_source,confidence_score\n"+
		"x.com,Spam,csv_import,40\n"+
		"y.com,Phishing,csv_import,90\n"+
		"x.com,Malware,csv_import,10\n")
	_, err := run(t, e, "import", path)
	require.NoError(t, err)

	out, err := run(t, e, "list")
	require.NoError(t, err)
	var all []models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Len(t, all, 3)

	out, err = run(t, e, "history", "x.com")
	require.NoError(t, err)
	var history []models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history, 2)
	assert.Equal(t, 100, history[1].RiskScore)

	out, err = run(t, e, "update", "1", "--status", "Suspended", "--reviewer", "r1")
	require.NoError(t, err)
	var updated models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, models.StatusSuspended, updated.Status)

	_, err = run(t, e, "update", "1", "--status", "Reviewed")
	assert.Error(t, err)

	_, err = run(t, e, "update", "abc", "--status", "Reviewed", "--reviewer", "r1")
	assert.Error(t, err)
}

func TestHistoryCommand_Domain(t *testing.T) {
	e, _ := testEnv(t)
	path := writeCSV(t, "domain_name,abuse_type,report_source,confidence_score\n"+
		"x.com,Spam,csv_import,40\n"+
		"y.com,Phishing,csv_import,90\n"+
		"x.com,Malware,csv_import,10\n")
	_, err := run(t, e, "import", path)
	require.NoError(t, err)

	tests := []struct {
		name    string
		arg     string
		want    int
		wantErr bool
	}{
		{"exact", "x.com", 2, false},
		{"padded", "  x.com ", 2, false},
		{"tab padded", "\ty.com\n", 1, false},
		{"unknown", "z.com", 0, false},
		{"blank", "   ", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, e, "history", tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var history []models.Report
			require.NoError(t, json.Unmarshal([]byte(out), &history))
			assert.Len(t, history, tt.want)
		})
	}
}

func TestFetchCommand(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"reports": [{"domain_name": "bank-alerts.io", "abuse_type": "Other", "report_source": "External", "confidence_score": 5}]}`))
	}))
	defer feed.Close()
	e, _ := testEnv(t)

	out, err := run(t, e, "fetch", "--endpoint", feed.URL, "--api-key", "k")

	require.NoError(t, err)
	assert.Contains(t, out, "created 1, failed 0")
}

func TestMigrateCommand(t *testing.T) {
	e, _ := testEnv(t)

	out, err := run(t, e, "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "migration completed")
}
