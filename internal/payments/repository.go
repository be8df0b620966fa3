package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
)

// Repository persists payment transactions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *Repository) FindBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// MarkPaid flips the transaction from initiated to paid. The conditional
// update is the idempotency gate: exactly one caller observes applied=true
// per session, no matter how many confirmations race.
func (r *Repository) MarkPaid(ctx context.Context, sessionID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("session_id = ? AND payment_status = ?", sessionID, enums.TransactionStatusInitiated).
		Update("payment_status", enums.TransactionStatusPaid)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
