package dto

import (
	"strings"

	vd "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// CreateReportRequest is decoded as a loose object so that type problems in
// individual fields are reported per field instead of failing the whole body.
type CreateReportRequest map[string]any

type UpdateReportRequest struct {
	Status     string `json:"status"`
	ReviewerID string `json:"reviewer_id"`
}

type FetchExternalRequest struct {
	APIEndpoint string `json:"apiEndpoint"`
	APIKey      string `json:"apiKey"`
}

// Normalize trims surrounding whitespace from both fields.
func (r *FetchExternalRequest) Normalize() {
	r.APIEndpoint = strings.TrimSpace(r.APIEndpoint)
	r.APIKey = strings.TrimSpace(r.APIKey)
}

func (r FetchExternalRequest) Validate() error {
	return vd.ValidateStruct(&r,
		vd.Field(&r.APIEndpoint, vd.Required, is.URL),
		vd.Field(&r.APIKey, vd.Required),
	)
}

// RowErrorResponse is one failed row of a batch or external import.
type RowErrorResponse struct {
	Row        int    `json:"row"`
	DomainName string `json:"domain_name"`
	Code       string `json:"code"`
	Reason     string `json:"reason"`
}

type BatchResultResponse struct {
	Message      string             `json:"message"`
	CreatedCount int                `json:"created_count"`
	Errors       []RowErrorResponse `json:"errors"`
}
