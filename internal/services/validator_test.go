package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() RawRecord {
	return RawRecord{
		FieldDomainName:      "example.com",
		FieldAbuseType:       "Spam",
		FieldReportSource:    "analyst",
		FieldConfidenceScore: "65",
	}
}

func TestValidateRecord_Success(t *testing.T) {
	t.Run("trims and parses", func(t *testing.T) {
		raw := RawRecord{
			FieldDomainName:      "  example.com ",
			FieldAbuseType:       " Phishing",
			FieldReportSource:    "feed ",
			FieldConfidenceScore: " 100 ",
			"comment":            "ignored",
			"risk_score":         7,
			"status":             "Suspended",
		}

		draft, err := ValidateRecord(raw)

		require.NoError(t, err)
		assert.Equal(t, ReportDraft{
			DomainName:      "example.com",
			AbuseType:       "Phishing",
			ReportSource:    "feed",
			ConfidenceScore: 100,
		}, draft)
	})

	scores := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 0, 0},
		{"int64", int64(42), 42},
		{"whole float from json", float64(80), 80},
		{"json number", json.Number("55"), 55},
		{"string", "12", 12},
	}
	for _, tt := range scores {
		t.Run("score as "+tt.name, func(t *testing.T) {
			raw := validRaw()
			raw[FieldConfidenceScore] = tt.value

			draft, err := ValidateRecord(raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, draft.ConfidenceScore)
		})
	}

	t.Run("unknown abuse type accepted", func(t *testing.T) {
		raw := validRaw()
		raw[FieldAbuseType] = "Typosquatting"

		draft, err := ValidateRecord(raw)

		require.NoError(t, err)
		assert.Equal(t, "Typosquatting", draft.AbuseType)
	})
}

func TestValidateRecord_Failures(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		drop  bool
		kind  error
	}{
		{"domain missing", FieldDomainName, nil, true, ErrMissingField},
		{"domain blank", FieldDomainName, "   ", false, ErrMissingField},
		{"abuse type missing", FieldAbuseType, nil, true, ErrMissingField},
		{"abuse type empty", FieldAbuseType, "", false, ErrMissingField},
		{"source missing", FieldReportSource, nil, true, ErrMissingField},
		{"source null", FieldReportSource, nil, false, ErrMissingField},
		{"domain object", FieldDomainName, map[string]any{"a": "b"}, false, ErrInvalidFormat},
		{"domain array", FieldDomainName, []any{"x.com"}, false, ErrInvalidFormat},
		{"domain number", FieldDomainName, float64(42), false, ErrInvalidFormat},
		{"abuse type bool", FieldAbuseType, true, false, ErrInvalidFormat},
		{"abuse type array", FieldAbuseType, []any{}, false, ErrInvalidFormat},
		{"source object", FieldReportSource, map[string]any{}, false, ErrInvalidFormat},
		{"source bool", FieldReportSource, false, false, ErrInvalidFormat},
		{"score missing", FieldConfidenceScore, nil, true, ErrMissingField},
		{"score null", FieldConfidenceScore, nil, false, ErrMissingField},
		{"score blank", FieldConfidenceScore, " ", false, ErrMissingField},
		{"score not numeric", FieldConfidenceScore, "abc", false, ErrInvalidFormat},
		{"score fractional", FieldConfidenceScore, 12.5, false, ErrInvalidFormat},
		{"score bool", FieldConfidenceScore, true, false, ErrInvalidFormat},
		{"score 101", FieldConfidenceScore, 101, false, ErrOutOfRange},
		{"score -1", FieldConfidenceScore, "-1", false, ErrOutOfRange},
		{"score overflow", FieldConfidenceScore, "99999999999999999999", false, ErrOutOfRange},
		{"score huge float", FieldConfidenceScore, 1e12, false, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			if tt.drop {
				delete(raw, tt.field)
			} else {
				raw[tt.field] = tt.value
			}

			draft, err := ValidateRecord(raw)

			require.Error(t, err)
			assert.Equal(t, ReportDraft{}, draft)
			assert.ErrorIs(t, err, tt.kind)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestValidateRecord_ReportsEveryBadField(t *testing.T) {
	_, err := ValidateRecord(RawRecord{FieldConfidenceScore: "x"})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{FieldDomainName, FieldAbuseType, FieldReportSource, FieldConfidenceScore}, fields)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Equal(t, "MissingField", ErrorCode(err))
	assert.Contains(t, err.Error(), "domain_name: cannot be blank")
}

func TestValidateRecord_NonStringTextFields(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"object", map[string]any{"a": "b"}, "must be a string, got object"},
		{"array", []any{"x.com"}, "must be a string, got array"},
		{"boolean", true, "must be a string, got boolean"},
		{"number", float64(7), "must be a string, got number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw[FieldDomainName] = tt.value

			_, err := ValidateRecord(raw)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.want, verr.Fields[0].Message)
			assert.Equal(t, "InvalidFormat", ErrorCode(err))
		})
	}
}
