package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"vendora/config"
	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidMethod     = errors.New("invalid payout method")
	ErrOpenRequestExists = errors.New("an open withdrawal request already exists")
	ErrInsufficientFunds = errors.New("balance below the minimum withdrawal amount")
	ErrNotFound          = errors.New("withdrawal not found")
	ErrInvalidState      = errors.New("invalid withdrawal state for this action")
	ErrReasonRequired    = errors.New("a reason is required")
	ErrPayoutRefRequired = errors.New("a payout reference is required")
)

// WithdrawalService is the balance-settlement engine: it converts accumulated
// earnings into a single payable withdrawal, holds the funds while staff review
// the request, and releases or restores them on the terminal transitions.
type WithdrawalService struct {
	db       *gorm.DB
	cfg      *config.WithdrawalConfig
	balances *BalanceService
	ledger   *repository.LedgerRepository
	settings *repository.SettingRepository
	audit    *repository.AuditLogRepository
	notifier *NotificationService
}

func NewWithdrawalService(
	db *gorm.DB,
	cfg *config.WithdrawalConfig,
	balances *BalanceService,
	ledger *repository.LedgerRepository,
	settings *repository.SettingRepository,
	audit *repository.AuditLogRepository,
	notifier *NotificationService,
) *WithdrawalService {
	return &WithdrawalService{
		db:       db,
		cfg:      cfg,
		balances: balances,
		ledger:   ledger,
		settings: settings,
		audit:    audit,
		notifier: notifier,
	}
}

// Create converts the user's current balances into a new PENDING withdrawal.
// The balance repair, the open-request check, the snapshot, the balance zeroing
// and the ledger reservation commit as one transaction; the user row is locked
// first so two concurrent creations for the same user serialize.
func (s *WithdrawalService) Create(ctx context.Context, userID uint, method string, details map[string]string) (*models.Withdrawal, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if !domain.ValidPayoutMethod(method) {
		return nil, ErrInvalidMethod
	}
	detailsJSON, err := EncodePaymentDetails(method, details)
	if err != nil {
		return nil, err
	}
	var w *models.Withdrawal
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var open int64
		if err := tx.Model(&models.Withdrawal{}).
			Where("user_id = ? AND status IN ?", userID, []string{domain.WithdrawalPending, domain.WithdrawalValidated}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrOpenRequestExists
		}
		// Repair-on-read: the snapshot must come from a fresh aggregation,
		// never from a possibly stale cache.
		bal, err := s.balances.RecomputeTx(tx, userID)
		if err != nil {
			return err
		}
		total := bal.TotalCents()
		if total < s.minAmountCents() {
			return ErrInsufficientFunds
		}
		commission := domain.CommissionCents(bal.TaxableCents(), s.commissionRate())
		w = &models.Withdrawal{
			UserID:                   userID,
			Reference:                "wd-" + uuid.New().String(),
			AmountGrossCents:         total,
			CommissionCents:          commission,
			AmountNetCents:           total - commission,
			Method:                   method,
			PaymentDetails:           detailsJSON,
			SnapshotSellerCents:      bal.SellerCents,
			SnapshotCommunityCents:   bal.CommunityCents,
			SnapshotAffiliationCents: bal.AffiliationCents,
			Status:                   domain.WithdrawalPending,
		}
		if err := tx.Create(w).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"seller_balance_cents":      0,
			"community_balance_cents":   0,
			"affiliation_balance_cents": 0,
		}).Error; err != nil {
			return err
		}
		return s.ledger.ReserveActive(tx, userID, w.ID)
	})
	if err != nil {
		return nil, err
	}
	s.notify(func() error { return s.notifier.WithdrawalRequested(userID, w) })
	s.recordAudit(userID, "withdrawal.create", w, "")
	return w, nil
}

// Validate moves a PENDING withdrawal to VALIDATED. No fund effect.
func (s *WithdrawalService) Validate(ctx context.Context, id, staffID uint) error {
	w, err := s.transition(ctx, id, domain.ActionValidate, func(tx *gorm.DB, w *models.Withdrawal) error {
		return tx.Model(w).Update("status", domain.WithdrawalValidated).Error
	})
	if err != nil {
		return err
	}
	s.notify(func() error { return s.notifier.WithdrawalValidated(w.UserID, w) })
	s.recordAudit(staffID, "withdrawal.validate", w, "")
	return nil
}

// Reject terminates an open withdrawal and restores the snapshot to the user.
func (s *WithdrawalService) Reject(ctx context.Context, id uint, reason string, staffID uint) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	w, err := s.transition(ctx, id, domain.ActionReject, func(tx *gorm.DB, w *models.Withdrawal) error {
		if err := s.restoreFunds(tx, w); err != nil {
			return err
		}
		return tx.Model(w).Updates(map[string]interface{}{
			"status":           domain.WithdrawalRejected,
			"rejection_reason": reason,
			"processed_at":     time.Now(),
		}).Error
	})
	if err != nil {
		return err
	}
	s.notify(func() error { return s.notifier.WithdrawalRejected(w.UserID, w, reason) })
	s.recordAudit(staffID, "withdrawal.reject", w, reason)
	return nil
}

// MarkPaid records a completed payout. The funds were reserved at creation, so
// there is no balance effect; the reserved ledger rows are stamped PAID.
func (s *WithdrawalService) MarkPaid(ctx context.Context, id uint, payoutRef, proofURL string, staffID uint) error {
	payoutRef = strings.TrimSpace(payoutRef)
	if payoutRef == "" {
		return ErrPayoutRefRequired
	}
	w, err := s.transition(ctx, id, domain.ActionMarkPaid, func(tx *gorm.DB, w *models.Withdrawal) error {
		if err := s.ledger.MarkReservedPaid(tx, w.ID); err != nil {
			return err
		}
		return tx.Model(w).Updates(map[string]interface{}{
			"status":       domain.WithdrawalPaid,
			"payout_ref":   payoutRef,
			"proof_url":    proofURL,
			"processed_at": time.Now(),
		}).Error
	})
	if err != nil {
		return err
	}
	s.notify(func() error { return s.notifier.WithdrawalPaid(w.UserID, w) })
	s.recordAudit(staffID, "withdrawal.mark-paid", w, payoutRef)
	return nil
}

// MarkFailed terminates a VALIDATED withdrawal whose payout could not be
// executed, restoring the snapshot to the user.
func (s *WithdrawalService) MarkFailed(ctx context.Context, id uint, reason string, staffID uint) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	w, err := s.transition(ctx, id, domain.ActionMarkFailed, func(tx *gorm.DB, w *models.Withdrawal) error {
		if err := s.restoreFunds(tx, w); err != nil {
			return err
		}
		return tx.Model(w).Updates(map[string]interface{}{
			"status":         domain.WithdrawalFailed,
			"failure_reason": reason,
			"processed_at":   time.Now(),
		}).Error
	})
	if err != nil {
		return err
	}
	s.notify(func() error { return s.notifier.WithdrawalFailed(w.UserID, w, reason) })
	s.recordAudit(staffID, "withdrawal.mark-failed", w, reason)
	return nil
}

// transition runs one state-machine step: lock the row, check the from-state
// against the transition table, apply. Illegal transitions leave no effect.
func (s *WithdrawalService) transition(ctx context.Context, id uint, action string, apply func(tx *gorm.DB, w *models.Withdrawal) error) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !domain.CanTransition(action, w.Status) {
			return ErrInvalidState
		}
		return apply(tx, &w)
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// restoreFunds credits the creation-time snapshot back onto the user's balances
// (additive: new earnings may have accrued since) and reopens the reserved
// ledger rows. A withdrawal already stamped restored_at is a no-op, so a retried
// or doubly invoked compensation never credits twice.
func (s *WithdrawalService) restoreFunds(tx *gorm.DB, w *models.Withdrawal) error {
	if w.RestoredAt != nil {
		return nil
	}
	if err := tx.Model(&models.User{}).Where("id = ?", w.UserID).Updates(map[string]interface{}{
		"seller_balance_cents":      gorm.Expr("seller_balance_cents + ?", w.SnapshotSellerCents),
		"community_balance_cents":   gorm.Expr("community_balance_cents + ?", w.SnapshotCommunityCents),
		"affiliation_balance_cents": gorm.Expr("affiliation_balance_cents + ?", w.SnapshotAffiliationCents),
	}).Error; err != nil {
		return err
	}
	if err := tx.Model(w).Update("restored_at", time.Now()).Error; err != nil {
		return err
	}
	return s.ledger.ReopenReserved(tx, w.ID)
}

// notify runs a side-channel call best-effort. Failures are logged and never
// reach the financial path.
func (s *WithdrawalService) notify(fn func() error) {
	if s.notifier == nil {
		return
	}
	if err := fn(); err != nil {
		log.Printf("[Withdrawal] notification failed: %v", err)
	}
}

func (s *WithdrawalService) recordAudit(actorID uint, action string, w *models.Withdrawal, metadata string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "withdrawal",
		ResourceID: fmt.Sprintf("%d", w.ID),
		Metadata:   metadata,
	}
	if err := s.audit.Create(entry); err != nil {
		log.Printf("[Withdrawal] audit log failed: %v", err)
	}
}

// minAmountCents resolves the minimum withdrawal amount: system setting first,
// config default as fallback.
func (s *WithdrawalService) minAmountCents() int64 {
	if s.settings != nil {
		if v, err := s.settings.Get(domain.SettingMinWithdrawalCents); err == nil && v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
				return n
			}
		}
	}
	return s.cfg.MinAmountCents
}

func (s *WithdrawalService) commissionRate() float64 {
	if s.settings != nil {
		if v, err := s.settings.Get(domain.SettingCommissionRate); err == nil && v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f < 1 {
				return f
			}
		}
	}
	return s.cfg.CommissionRate
}

// EncodePaymentDetails keeps only the fields accepted for the method and
// returns them as JSON. Unknown fields are dropped, missing ones tolerated.
func EncodePaymentDetails(method string, details map[string]string) (string, error) {
	filtered := make(map[string]string)
	for _, field := range domain.PayoutMethodFields[method] {
		if v, ok := details[field]; ok && v != "" {
			filtered[field] = v
		}
	}
	b, err := json.Marshal(filtered)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
