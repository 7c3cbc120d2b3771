package service

import (
	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"

	"gorm.io/gorm"
)

// BalanceService repairs the denormalized balance cache on the user row from the
// three earning ledgers. It is the only recompute path; the withdrawal engine is
// the only other writer of the balance fields.
type BalanceService struct {
	db     *gorm.DB
	ledger *repository.LedgerRepository
}

func NewBalanceService(db *gorm.DB, ledger *repository.LedgerRepository) *BalanceService {
	return &BalanceService{db: db, ledger: ledger}
}

// Recompute recalculates and persists the user's three balances, returning the
// fresh values. Repeatable with the same result absent concurrent ledger writes.
func (s *BalanceService) Recompute(userID uint) (domain.Balances, error) {
	return s.RecomputeTx(s.db, userID)
}

// RecomputeTx is the transaction-scoped variant used by the withdrawal engine so
// the repaired read and the reservation commit together. The write is a full
// overwrite (repair), not a delta.
func (s *BalanceService) RecomputeTx(tx *gorm.DB, userID uint) (domain.Balances, error) {
	b, err := s.ledger.SumActive(tx, userID)
	if err != nil {
		return b, err
	}
	err = tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"seller_balance_cents":      b.SellerCents,
		"community_balance_cents":   b.CommunityCents,
		"affiliation_balance_cents": b.AffiliationCents,
	}).Error
	return b, err
}
