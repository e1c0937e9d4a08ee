package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"join-finance-api/internal/adapters/persistence/models"
	"join-finance-api/internal/config"
	"join-finance-api/internal/core/domain"
	"join-finance-api/internal/core/services"
	"join-finance-api/internal/pkg/pagination"
	"join-finance-api/internal/pkg/response"
	"join-finance-api/internal/pkg/spreadsheet"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DisbursementHandler handles disbursement upload and retrieval endpoints
type DisbursementHandler struct {
	disbService *services.DisbursementService
	cfg         *config.Config
}

// NewDisbursementHandler creates a new disbursement handler
func NewDisbursementHandler(disbService *services.DisbursementService, cfg *config.Config) *DisbursementHandler {
	return &DisbursementHandler{
		disbService: disbService,
		cfg:         cfg,
	}
}

var allowedExtensions = map[string]bool{
	".xls":  true,
	".xlsx": true,
}

// Upload handles an Excel upload
// @Summary Upload disbursement spreadsheet
// @Description Parse an Excel file and persist its rows as a disbursement batch
// @Tags Disbursement
// @Accept mpfd
// @Produce json
// @Param excel formData file true "Excel file (.xls/.xlsx, max 10MB)"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /disbursement/upload [post]
func (h *DisbursementHandler) Upload(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Access token is required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}

	files := form.File["excel"]
	if len(files) == 0 {
		return response.BadRequest(c, "No file uploaded")
	}
	if len(files) > 1 {
		return response.BadRequest(c, "Too many files. Only one file allowed")
	}

	file := files[0]

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return response.BadRequest(c, "Only Excel files (.xls, .xlsx) are allowed")
	}

	if file.Size > h.cfg.Upload.MaxBytes() {
		return response.BadRequest(c, fmt.Sprintf("File too large. Maximum size is %dMB", h.cfg.Upload.MaxSizeMB))
	}

	// Spool to the upload dir, then always remove the temp file,
	// whether processing succeeds or fails.
	if err := os.MkdirAll(h.cfg.Upload.Dir, 0o755); err != nil {
		return response.InternalServerError(c, "Error processing file")
	}

	base := strings.TrimSuffix(filepath.Base(file.Filename), ext)
	tmpName := fmt.Sprintf("%s_%d-%s%s", base, time.Now().UnixMilli(), uuid.New().String()[:8], ext)
	tmpPath := filepath.Join(h.cfg.Upload.Dir, tmpName)

	if err := c.SaveFile(file, tmpPath); err != nil {
		return response.InternalServerError(c, "Error processing file")
	}
	defer os.Remove(tmpPath)

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return response.InternalServerError(c, "Error processing file")
	}

	result, err := h.disbService.IngestFile(c.Context(), file.Filename, data, userID)
	if err != nil {
		var missingErr *domain.MissingColumnsError
		switch {
		case errors.Is(err, spreadsheet.ErrEmptyFile):
			return response.BadRequest(c, "Excel file is empty")
		case errors.Is(err, spreadsheet.ErrParseFailed):
			return response.BadRequest(c, "Failed to parse Excel file")
		case errors.As(err, &missingErr):
			return response.BadRequest(c, "Missing required columns: "+strings.Join(missingErr.Columns, ", "))
		default:
			if h.cfg.IsDev() {
				return response.ErrorWithDetail(c, fiber.StatusInternalServerError, "Error processing file", err.Error())
			}
			return response.InternalServerError(c, "Error processing file")
		}
	}

	return response.Success(c, "File uploaded and processed successfully", fiber.Map{
		"disbursement_id": result.DisbursementID,
		"batch_number":    result.BatchNumber,
		"filename":        result.Filename,
		"total_records":   result.TotalRecords,
		"status":          result.Status,
		"records":         result.Records,
	})
}

// List returns disbursement batches visible to the caller
// @Summary List disbursement batches
// @Description Admins see all batches, other users only their own
// @Tags Disbursement
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 50)"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /disbursement [get]
func (h *DisbursementHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Access token is required")
	}
	role, _ := c.Locals("role").(string)

	params := pagination.GetParams(c)

	disbursements, total, err := h.disbService.List(c.Context(), userID, role == models.RoleAdmin, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Error retrieving disbursements")
	}

	return response.SuccessWithMeta(c, "Disbursements retrieved successfully", disbursements, pagination.GetMeta(params, total))
}

// Details returns one batch with all its records
// @Summary Get disbursement batch detail
// @Description Batch header plus every persisted record, in source row order
// @Tags Disbursement
// @Produce json
// @Param batchNumber path string true "Batch number"
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /disbursement/details/{batchNumber} [get]
func (h *DisbursementHandler) Details(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Access token is required")
	}
	role, _ := c.Locals("role").(string)

	batchNumber := c.Params("batchNumber")

	disbursement, records, err := h.disbService.GetBatchDetail(c.Context(), batchNumber, userID, role == models.RoleAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown batch and foreign batch answer identically
			return response.NotFound(c, "Disbursement not found")
		}
		return response.InternalServerError(c, "Error retrieving disbursement details")
	}

	return response.Success(c, "Disbursement details retrieved successfully", fiber.Map{
		"disbursement": disbursement,
		"records":      records,
	})
}
