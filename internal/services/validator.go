package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	vd "github.com/go-ozzo/ozzo-validation/v4"
)

// Input field names shared by the JSON body, the CSV header and the external feed.
const (
	FieldDomainName      = "domain_name"
	FieldAbuseType       = "abuse_type"
	FieldReportSource    = "report_source"
	FieldConfidenceScore = "confidence_score"
)

// RequiredFields is the column contract of a batch import header.
var RequiredFields = []string{FieldDomainName, FieldAbuseType, FieldReportSource, FieldConfidenceScore}

var (
	presenceRule = []vd.Rule{vd.Required}
	scoreRule    = []vd.Rule{vd.Min(0), vd.Max(100)}
)

// RawRecord is one loosely typed report as received from a channel.
type RawRecord map[string]any

// ReportDraft is a validated, normalized report that has not been stored yet.
type ReportDraft struct {
	DomainName      string
	AbuseType       string
	ReportSource    string
	ConfidenceScore int
}

// ValidateRecord normalizes raw into a draft. Unknown keys are ignored. On
// failure the returned error is a *ValidationError listing every bad field.
func ValidateRecord(raw RawRecord) (ReportDraft, error) {
	var (
		draft ReportDraft
		verr  ValidationError
	)

	draft.DomainName = requireString(raw, FieldDomainName, &verr)
	draft.AbuseType = requireString(raw, FieldAbuseType, &verr)
	draft.ReportSource = requireString(raw, FieldReportSource, &verr)

	if score, ok := requireScore(raw, &verr); ok {
		draft.ConfidenceScore = score
	}

	if len(verr.Fields) > 0 {
		return ReportDraft{}, &verr
	}
	return draft, nil
}

func requireString(raw RawRecord, field string, verr *ValidationError) string {
	v := raw[field]
	if _, ok := v.(string); !ok && v != nil {
		verr.add(field, ErrInvalidFormat, fmt.Sprintf("must be a string, got %s", jsonKind(v)))
		return ""
	}
	s := stringValue(v)
	if err := vd.Validate(s, presenceRule...); err != nil {
		verr.add(field, ErrMissingField, err.Error())
		return ""
	}
	return s
}

func requireScore(raw RawRecord, verr *ValidationError) (int, bool) {
	v, present := raw[FieldConfidenceScore]
	if !present || v == nil {
		verr.add(FieldConfidenceScore, ErrMissingField, "cannot be blank")
		return 0, false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		verr.add(FieldConfidenceScore, ErrMissingField, "cannot be blank")
		return 0, false
	}

	score, err := intValue(v)
	if err != nil {
		verr.add(FieldConfidenceScore, ErrInvalidFormat, err.Error())
		return 0, false
	}
	if err := vd.Validate(score, scoreRule...); err != nil {
		verr.add(FieldConfidenceScore, ErrOutOfRange, err.Error())
		return 0, false
	}
	return score, true
}

// stringValue returns v trimmed when it is a string and "" otherwise.
func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func jsonKind(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case nil:
		return "null"
	default:
		return "number"
	}
}

type int64er interface {
	Int64() (int64, error)
}

func intValue(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return clampInt64(t), nil
	case float64:
		return floatToInt(t)
	case float32:
		return floatToInt(float64(t))
	case int64er:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer, got %v", v)
		}
		return clampInt64(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return outOfRangeSentinel(t), nil
			}
			return 0, fmt.Errorf("must be an integer, got %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("must be an integer, got %T", v)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("must be an integer, got %v", f)
	}
	if f > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	if f < math.MinInt32 {
		return math.MinInt32, nil
	}
	return int(f), nil
}

// clampInt64 keeps huge values out of range instead of wrapping them into it.
func clampInt64(n int64) int {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int(n)
}

func outOfRangeSentinel(s string) int {
	if strings.HasPrefix(strings.TrimSpace(s), "-") {
		return math.MinInt32
	}
	return math.MaxInt32
}
