package repository

import (
	"vendora/internal/domain"
	"vendora/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) GetByReference(ref string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.Where("reference = ?", ref).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// HasOpen reports whether the user already has a PENDING or VALIDATED withdrawal.
func (r *WithdrawalRepository) HasOpen(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status IN ?", userID, []string{domain.WithdrawalPending, domain.WithdrawalValidated}).
		Count(&count).Error
	return count > 0, err
}

func (r *WithdrawalRepository) ListByUserID(userID uint, limit, offset int) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// ListAll returns withdrawals for the staff surface, newest first, optionally
// filtered by status.
func (r *WithdrawalRepository) ListAll(status string, page, limit int) ([]models.Withdrawal, int64, error) {
	q := r.db.Model(&models.Withdrawal{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Withdrawal
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}
