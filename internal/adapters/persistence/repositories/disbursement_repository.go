package repositories

import (
	"context"

	"join-finance-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// disbursementRepository implements DisbursementRepository interface
type disbursementRepository struct {
	db *gorm.DB
}

// NewDisbursementRepository creates a new disbursement repository
func NewDisbursementRepository(db *gorm.DB) DisbursementRepository {
	return &disbursementRepository{db: db}
}

// Create creates a new disbursement batch
func (r *disbursementRepository) Create(ctx context.Context, disbursement *models.Disbursement) error {
	return r.db.WithContext(ctx).Create(disbursement).Error
}

// CreateRecord inserts one ingested row
func (r *disbursementRepository) CreateRecord(ctx context.Context, record *models.DisbursementRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// UpdateStatus moves a batch to a terminal status with final counters
func (r *disbursementRepository) UpdateStatus(ctx context.Context, id uint, status string, processed, errored int) error {
	return r.db.WithContext(ctx).
		Model(&models.Disbursement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            status,
			"processed_records": processed,
			"error_records":     errored,
		}).Error
}

// GetByBatchNumber gets a disbursement by its batch number
func (r *disbursementRepository) GetByBatchNumber(ctx context.Context, batchNumber string) (*models.Disbursement, error) {
	var disbursement models.Disbursement
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		Where("batch_number = ?", batchNumber).
		First(&disbursement).Error
	if err != nil {
		return nil, err
	}
	return &disbursement, nil
}

// ListRecordsByBatch lists records of a batch in source row order
func (r *disbursementRepository) ListRecordsByBatch(ctx context.Context, batchNumber string) ([]*models.DisbursementRecord, error) {
	var records []*models.DisbursementRecord
	err := r.db.WithContext(ctx).
		Where("batch_number = ?", batchNumber).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// List lists disbursement batches newest first, optionally filtered by uploader
func (r *disbursementRepository) List(ctx context.Context, uploadedBy uint, offset, limit int) ([]*models.Disbursement, int64, error) {
	var disbursements []*models.Disbursement
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Disbursement{})
	if uploadedBy != 0 {
		query = query.Where("uploaded_by = ?", uploadedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Uploader").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&disbursements).Error
	if err != nil {
		return nil, 0, err
	}

	return disbursements, total, nil
}
