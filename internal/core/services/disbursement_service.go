package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"join-finance-api/internal/adapters/persistence/models"
	"join-finance-api/internal/adapters/persistence/repositories"
	"join-finance-api/internal/core/domain"
	"join-finance-api/internal/pkg/spreadsheet"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DisbursementService handles the spreadsheet ingestion pipeline and the
// batch ledger
type DisbursementService struct {
	disbRepo repositories.DisbursementRepository
}

// NewDisbursementService creates a new disbursement service
func NewDisbursementService(disbRepo repositories.DisbursementRepository) *DisbursementService {
	return &DisbursementService{disbRepo: disbRepo}
}

// UploadResult represents the outcome of one ingested spreadsheet
type UploadResult struct {
	DisbursementID uint                         `json:"disbursement_id"`
	BatchNumber    string                       `json:"batch_number"`
	Filename       string                       `json:"filename"`
	TotalRecords   int                          `json:"total_records"`
	Status         string                       `json:"status"`
	Records        []*models.DisbursementRecord `json:"records"`
}

// GenerateBatchNumber builds a human-readable batch identifier:
// BATCH-YYYYMMDD-XXXXXXXX with a random hex suffix. Collisions are
// treated as negligible; there is no retry on duplicate.
func GenerateBatchNumber() string {
	date := time.Now().Format("20060102")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "BATCH-" + date + "-" + suffix
}

// IngestFile runs the full pipeline for one uploaded spreadsheet:
// parse -> header check -> per-row resolve+validate -> batch-tracked
// persistence. Rows that fail validation are persisted with status=error
// and kept for audit; the batch always reaches a terminal status once
// the loop finishes, whatever the error ratio.
func (s *DisbursementService) IngestFile(ctx context.Context, filename string, data []byte, uploadedBy uint) (*UploadResult, error) {
	sheet, err := spreadsheet.Parse(data)
	if err != nil {
		return nil, err
	}

	if missing := spreadsheet.MissingRequiredColumns(sheet.Headers); len(missing) > 0 {
		return nil, &domain.MissingColumnsError{Columns: missing}
	}

	disbursement := &models.Disbursement{
		BatchNumber:  GenerateBatchNumber(),
		Filename:     filename,
		TotalRecords: len(sheet.Rows),
		Status:       models.BatchStatusProcessing,
		UploadedBy:   uploadedBy,
	}
	if err := s.disbRepo.Create(ctx, disbursement); err != nil {
		return nil, err
	}

	log.Printf("💾 Disbursement batch created: %s (%d rows)", disbursement.BatchNumber, len(sheet.Rows))

	// Sequential pass in source row order. Inserts are best effort: a
	// failed insert is counted and the loop continues, so earlier rows
	// of the batch stay persisted.
	processed := 0
	errored := 0
	records := make([]*models.DisbursementRecord, 0, len(sheet.Rows))

	for _, row := range sheet.Rows {
		record := buildRecord(row)
		record.DisbursementID = disbursement.ID
		record.BatchNumber = disbursement.BatchNumber

		if err := s.disbRepo.CreateRecord(ctx, record); err != nil {
			log.Printf("⚠️ Failed to insert record for batch %s: %v", disbursement.BatchNumber, err)
			errored++
			continue
		}

		if record.Status == models.RecordStatusError {
			errored++
		} else {
			processed++
		}
		records = append(records, record)
	}

	// Terminal status means "processing finished", not "all rows valid";
	// a batch with 100% error rows still completes.
	if err := s.disbRepo.UpdateStatus(ctx, disbursement.ID, models.BatchStatusProcessed, processed, errored); err != nil {
		return nil, err
	}

	log.Printf("✅ Batch %s processed: %d ok, %d errors", disbursement.BatchNumber, processed, errored)

	return &UploadResult{
		DisbursementID: disbursement.ID,
		BatchNumber:    disbursement.BatchNumber,
		Filename:       filename,
		TotalRecords:   len(sheet.Rows),
		Status:         models.BatchStatusProcessed,
		Records:        records,
	}, nil
}

// buildRecord resolves a parsed row into a candidate record and applies
// the validation chain. The first failing check wins; only one error is
// recorded per row.
func buildRecord(row spreadsheet.Row) *models.DisbursementRecord {
	nama, _ := spreadsheet.Resolve(row, spreadsheet.FieldNama)
	ktp, _ := spreadsheet.Resolve(row, spreadsheet.FieldKTP)
	jenisKelamin, _ := spreadsheet.Resolve(row, spreadsheet.FieldJenisKelamin)
	penghasilanRaw, _ := spreadsheet.Resolve(row, spreadsheet.FieldPenghasilan)
	plafondRaw, _ := spreadsheet.Resolve(row, spreadsheet.FieldPlafond)
	cif, _ := spreadsheet.Resolve(row, spreadsheet.FieldCIF)
	keterangan, _ := spreadsheet.Resolve(row, spreadsheet.FieldKeterangan)

	record := &models.DisbursementRecord{
		Nama:         strings.TrimSpace(nama),
		KTP:          strings.TrimSpace(ktp),
		JenisKelamin: strings.TrimSpace(jenisKelamin),
		CIF:          strings.TrimSpace(cif),
		Keterangan:   strings.TrimSpace(keterangan),
		Status:       models.RecordStatusPending,
	}

	penghasilan, penghasilanErr := parseAmount(penghasilanRaw)
	plafond, plafondErr := parseAmount(plafondRaw)
	record.Penghasilan = penghasilan
	record.Plafond = plafond

	var message string
	switch {
	case record.Nama == "":
		message = "Nama is required"
	case record.KTP == "":
		message = "KTP is required"
	case penghasilanErr != nil:
		message = "Valid penghasilan is required"
	case plafondErr != nil:
		message = "Valid plafond is required"
	}

	if message != "" {
		record.Status = models.RecordStatusError
		record.ErrorMessage = &message
	}

	return record
}

var errInvalidAmount = errors.New("invalid amount")

// parseAmount parses a cell as a finite, non-negative decimal
func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errInvalidAmount
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, errInvalidAmount
	}
	return value, nil
}

// List returns batches visible to the caller, newest first. Admins see
// every batch; other users only the ones they uploaded.
func (s *DisbursementService) List(ctx context.Context, userID uint, isAdmin bool, offset, limit int) ([]*models.DisbursementResponse, int64, error) {
	uploadedBy := userID
	if isAdmin {
		uploadedBy = 0
	}

	disbursements, total, err := s.disbRepo.List(ctx, uploadedBy, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.DisbursementResponse, 0, len(disbursements))
	for _, d := range disbursements {
		responses = append(responses, d.ToResponse())
	}

	return responses, total, nil
}

// GetBatchDetail returns one batch with its records. An unknown batch
// number and a batch owned by someone else both come back as
// domain.ErrNotFound, so existence is never leaked to unauthorized
// callers.
func (s *DisbursementService) GetBatchDetail(ctx context.Context, batchNumber string, userID uint, isAdmin bool) (*models.DisbursementResponse, []*models.DisbursementRecord, error) {
	disbursement, err := s.disbRepo.GetByBatchNumber(ctx, batchNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}

	if !isAdmin && disbursement.UploadedBy != userID {
		return nil, nil, domain.ErrNotFound
	}

	records, err := s.disbRepo.ListRecordsByBatch(ctx, batchNumber)
	if err != nil {
		return nil, nil, err
	}

	return disbursement.ToResponse(), records, nil
}
