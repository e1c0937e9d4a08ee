package repositories

import (
	"context"

	"join-finance-api/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetActiveWithProfileByUsername returns the user joined with their
	// profile, filtering inactive accounts inside the query. Profile is
	// nil when no profile row exists.
	GetActiveWithProfileByUsername(ctx context.Context, username string) (*models.User, error)
	GetActiveWithProfileByID(ctx context.Context, id uint) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// DisbursementRepository defines the batch ledger interface
type DisbursementRepository interface {
	Create(ctx context.Context, disbursement *models.Disbursement) error
	// CreateRecord inserts one ingested row. Inserts are best effort:
	// a failed insert does not roll back earlier rows of the batch.
	CreateRecord(ctx context.Context, record *models.DisbursementRecord) error
	// UpdateStatus moves a batch to a terminal status and stamps the
	// aggregate counters.
	UpdateStatus(ctx context.Context, id uint, status string, processed, errored int) error
	GetByBatchNumber(ctx context.Context, batchNumber string) (*models.Disbursement, error)
	ListRecordsByBatch(ctx context.Context, batchNumber string) ([]*models.DisbursementRecord, error)
	// List returns batches newest first. uploadedBy filters to one
	// uploader; pass 0 for all uploaders (admin view).
	List(ctx context.Context, uploadedBy uint, offset, limit int) ([]*models.Disbursement, int64, error)
}
