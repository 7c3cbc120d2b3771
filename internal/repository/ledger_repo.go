package repository

import (
	"vendora/internal/domain"
	"vendora/internal/models"

	"gorm.io/gorm"
)

// payoutActiveStatuses are the marketplace/course statuses counted toward the
// balance and eligible for reservation.
var payoutActiveStatuses = []string{domain.LedgerAvailable, domain.LedgerReady}

// commissionExcludedStatuses are affiliate statuses excluded from the balance:
// permanently voided rows plus rows the engine has already reserved or paid.
var commissionExcludedStatuses = []string{
	domain.LedgerCancelled,
	domain.LedgerReversed,
	domain.LedgerWithdrawn,
	domain.LedgerPaid,
}

// LedgerRepository covers the three earning ledgers. Rows are created by sale
// processing; only the withdrawal engine transitions them.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// SumActive returns the active totals of all three ledgers for a user, in cents.
// Affiliate commissions are stored in cents too (same minor unit as balances),
// so the sums combine without scale conversion.
func (r *LedgerRepository) SumActive(tx *gorm.DB, userID uint) (domain.Balances, error) {
	if tx == nil {
		tx = r.db
	}
	var b domain.Balances
	err := tx.Model(&models.SalePayout{}).
		Where("seller_id = ? AND status IN ?", userID, payoutActiveStatuses).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&b.SellerCents).Error
	if err != nil {
		return b, err
	}
	err = tx.Model(&models.CoursePayout{}).
		Where("seller_id = ? AND status IN ?", userID, payoutActiveStatuses).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&b.CommunityCents).Error
	if err != nil {
		return b, err
	}
	err = tx.Model(&models.AffiliateCommission{}).
		Where("referrer_id = ? AND status NOT IN ?", userID, commissionExcludedStatuses).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&b.AffiliationCents).Error
	return b, err
}

// ReserveActive flips every active row of the user to WITHDRAWN and stamps the
// owning withdrawal so restoration can reopen exactly these rows.
func (r *LedgerRepository) ReserveActive(tx *gorm.DB, userID, withdrawalID uint) error {
	updates := map[string]interface{}{"status": domain.LedgerWithdrawn, "withdrawal_id": withdrawalID}
	if err := tx.Model(&models.SalePayout{}).
		Where("seller_id = ? AND status IN ?", userID, payoutActiveStatuses).
		Updates(updates).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.CoursePayout{}).
		Where("seller_id = ? AND status IN ?", userID, payoutActiveStatuses).
		Updates(updates).Error; err != nil {
		return err
	}
	return tx.Model(&models.AffiliateCommission{}).
		Where("referrer_id = ? AND status NOT IN ?", userID, commissionExcludedStatuses).
		Updates(updates).Error
}

// ReopenReserved returns the rows reserved under a withdrawal to READY.
// The withdrawal_id stamp is kept for audit; a later reservation overwrites it.
func (r *LedgerRepository) ReopenReserved(tx *gorm.DB, withdrawalID uint) error {
	return r.updateReserved(tx, withdrawalID, domain.LedgerReady)
}

// MarkReservedPaid stamps the rows reserved under a withdrawal as PAID when the
// withdrawal itself reaches PAID, so the ledger reflects funds leaving the system.
func (r *LedgerRepository) MarkReservedPaid(tx *gorm.DB, withdrawalID uint) error {
	return r.updateReserved(tx, withdrawalID, domain.LedgerPaid)
}

func (r *LedgerRepository) updateReserved(tx *gorm.DB, withdrawalID uint, status string) error {
	if err := tx.Model(&models.SalePayout{}).
		Where("withdrawal_id = ? AND status = ?", withdrawalID, domain.LedgerWithdrawn).
		Update("status", status).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.CoursePayout{}).
		Where("withdrawal_id = ? AND status = ?", withdrawalID, domain.LedgerWithdrawn).
		Update("status", status).Error; err != nil {
		return err
	}
	return tx.Model(&models.AffiliateCommission{}).
		Where("withdrawal_id = ? AND status = ?", withdrawalID, domain.LedgerWithdrawn).
		Update("status", status).Error
}
