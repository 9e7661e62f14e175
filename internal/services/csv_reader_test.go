package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		in := "domain_name,abuse_type,report_source,confidence_score\n" +
			"phishing.com,Phishing,csv_import,95\n" +
			"malware.net,Malware,csv_import,100\n"

		rows, err := ReadCSV(strings.NewReader(in))

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 1, rows[0].Row)
		assert.Equal(t, 2, rows[1].Row)
		assert.Equal(t, RawRecord{
			FieldDomainName:      "phishing.com",
			FieldAbuseType:       "Phishing",
			FieldReportSource:    "csv_import",
			FieldConfidenceScore: "95",
		}, rows[0].Record)
		assert.NoError(t, rows[1].Err)
	})

	t.Run("column order and case in header do not matter", func(t *testing.T) {
		in := "\xEF\xBB\xBFConfidence_Score, domain_name,report_source,abuse_type,notes\n" +
			"40,x.com,feed,Spam,extra\n"

		rows, err := ReadCSV(strings.NewReader(in))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "x.com", rows[0].Record[FieldDomainName])
		assert.Equal(t, "40", rows[0].Record[FieldConfidenceScore])
		assert.Equal(t, "extra", rows[0].Record["notes"])
	})

	t.Run("header only", func(t *testing.T) {
		rows, err := ReadCSV(strings.NewReader("domain_name,abuse_type,report_source,confidence_score\n"))

		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("row width mismatch is a row error", func(t *testing.T) {
		in := "domain_name,abuse_type,report_source,confidence_score\n" +
			"short.com,Spam\n" +
			"long.com,Spam,feed,10,surplus\n" +
			"ok.com,Spam,feed,10\n"

		rows, err := ReadCSV(strings.NewReader(in))

		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.ErrorIs(t, rows[0].Err, ErrInvalidFormat)
		assert.Equal(t, "short.com", rows[0].Record[FieldDomainName])
		assert.ErrorIs(t, rows[1].Err, ErrInvalidFormat)
		assert.NoError(t, rows[2].Err)
	})

	malformed := []struct {
		name string
		in   string
	}{
		{"empty file", ""},
		{"missing columns in header", "domain,abuse_type\nx.com,Spam\n"},
		{"data row as header", "x.com,Spam,feed,10\n"},
		{"duplicate header column", "domain_name,domain_name,abuse_type,report_source,confidence_score\n"},
		{"invalid utf-8", "domain_name,abuse_type,report_source,confidence_score\n\xff\xfe,Spam,feed,10\n"},
		{"broken quoting", "domain_name,abuse_type,report_source,confidence_score\n\"x.com,Spam,feed,10\n"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadCSV(strings.NewReader(tt.in))

			assert.ErrorIs(t, err, ErrMalformedInput)
			assert.Nil(t, rows)
		})
	}
}
