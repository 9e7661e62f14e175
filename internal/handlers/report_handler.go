package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/services"
)

type ReportHandler struct {
	ingestion *services.IngestionService
	store     *services.ReportStore
}

func NewReportHandler(ingestion *services.IngestionService, store *services.ReportStore) *ReportHandler {
	return &ReportHandler{ingestion: ingestion, store: store}
}

// Create POST /api/reports
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.ingestion.Submit(c.UserContext(), services.RawRecord(req))
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// List GET /api/reports
func (h *ReportHandler) List(c *fiber.Ctx) error {
	reports, err := h.store.ListAll(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(reports)
}

// History GET /api/reports/domain/:domain
func (h *ReportHandler) History(c *fiber.Ctx) error {
	domain, err := url.PathUnescape(c.Params("domain"))
	domain = strings.TrimSpace(domain)
	if err != nil || domain == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Domain name is required",
		})
	}

	reports, err := h.store.FindByDomain(c.UserContext(), domain)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(reports)
}

// Update PUT /api/reports/:id
func (h *ReportHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.store.Update(c.UserContext(), uint(id), req.Status, req.ReviewerID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// BatchImport POST /api/reports/batch-import
func (h *ReportHandler) BatchImport(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "No file part in the request",
		})
	}
	if fh.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "No selected file",
		})
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid file type. Please upload a CSV file.",
		})
	}

	f, err := fh.Open()
	if err != nil {
		return h.fail(c, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	result, err := h.ingestion.ImportCSV(c.UserContext(), f)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(batchResponse(fmt.Sprintf("Successfully imported %d reports.", result.Created), result))
}

// FetchExternal POST /api/reports/fetch-external
func (h *ReportHandler) FetchExternal(c *fiber.Ctx) error {
	var req dto.FetchExternalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing API endpoint or key in request: " + err.Error(),
		})
	}

	result, err := h.ingestion.FetchExternal(c.UserContext(), req.APIEndpoint, req.APIKey)
	if err != nil {
		return h.fail(c, err)
	}

	msg := fmt.Sprintf("Successfully fetched and imported %d reports from external API.", result.Created)
	return c.JSON(batchResponse(msg, result))
}

func batchResponse(message string, result *services.BatchResult) dto.BatchResultResponse {
	return dto.BatchResultResponse{
		Message:      message,
		CreatedCount: result.Created,
		Errors: lo.Map(result.Failures, func(f services.RowFailure, _ int) dto.RowErrorResponse {
			return dto.RowErrorResponse{
				Row:        f.Row,
				DomainName: f.DomainName,
				Code:       f.Code(),
				Reason:     f.Reason(),
			}
		}),
	}
}

// fail maps a service error onto its HTTP status. Unexpected errors are
// reported to sentry and their details are never sent to the client.
func (h *ReportHandler) fail(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Error:   true,
			Message: "Missing required fields or invalid values",
			Fields: lo.Map(verr.Fields, func(f services.FieldError, _ int) dto.FieldErrorResponse {
				return dto.FieldErrorResponse{Field: f.Field, Code: services.ErrorCode(f.Kind), Message: f.Message}
			}),
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Report not found",
		})
	case errors.Is(err, services.ErrMalformedInput),
		errors.Is(err, services.ErrMissingReviewer),
		errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrExternalFetchFailed):
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to connect to external API: " + err.Error(),
		})
	}

	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	slog.ErrorContext(c.UserContext(), "request failed",
		"method", c.Method(), "path", c.Path(), "request_id", requestID(c), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
