// Package risk scores abuse reports.
package risk

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/models"
)

// HighConfidenceThreshold is exclusive: a score must exceed it.
const HighConfidenceThreshold = 80

// HighRiskAbuseTypes match case-sensitively.
var HighRiskAbuseTypes = []string{"Phishing", "Malware"}

// SuspiciousKeywords match case-insensitively anywhere in the domain name.
var SuspiciousKeywords = []string{"paypal", "login", "bank"}

// Input is the subset of report attributes the classifier reads.
type Input struct {
	AbuseType       string
	ConfidenceScore int
	DomainName      string
}

// Classify returns RiskHigh or RiskStandard. Rules are checked in order and
// the first match wins.
func Classify(in Input) int {
	if in.ConfidenceScore > HighConfidenceThreshold {
		return models.RiskHigh
	}

	for _, t := range HighRiskAbuseTypes {
		if in.AbuseType == t {
			return models.RiskHigh
		}
	}

	domain := strings.ToLower(in.DomainName)
	for _, kw := range SuspiciousKeywords {
		if strings.Contains(domain, kw) {
			return models.RiskHigh
		}
	}

	return models.RiskStandard
}

// IsHighRisk reports whether Classify would return RiskHigh.
func IsHighRisk(in Input) bool {
	return Classify(in) == models.RiskHigh
}
