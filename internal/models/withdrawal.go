package models

import (
	"time"

	"gorm.io/gorm"
)

// Withdrawal is a settlement request over a user's accumulated earnings.
// Rows are never deleted; terminal states keep the full audit trail
// (snapshot, reasons, payout reference, proof).
type Withdrawal struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Reference string `gorm:"size:64;uniqueIndex;not null" json:"reference"`

	AmountGrossCents int64 `gorm:"not null" json:"amount_gross_cents"`
	CommissionCents  int64 `gorm:"not null" json:"commission_cents"`
	AmountNetCents   int64 `gorm:"not null" json:"amount_net_cents"`

	Method         string `gorm:"size:20;not null" json:"method"`
	PaymentDetails string `gorm:"type:text" json:"payment_details"` // JSON, filtered per method

	// Balance snapshot captured at creation. Sole source for restoration,
	// independent of any later ledger drift.
	SnapshotSellerCents      int64 `gorm:"not null" json:"snapshot_seller_cents"`
	SnapshotCommunityCents   int64 `gorm:"not null" json:"snapshot_community_cents"`
	SnapshotAffiliationCents int64 `gorm:"not null" json:"snapshot_affiliation_cents"`

	Status          string     `gorm:"size:20;not null;index" json:"status"` // PENDING, VALIDATED, PAID, REJECTED, FAILED
	RestoredAt      *time.Time `json:"restored_at"`                          // idempotency guard for fund restoration
	ProcessedAt     *time.Time `json:"processed_at"`
	RejectionReason string     `gorm:"size:500" json:"rejection_reason,omitempty"`
	FailureReason   string     `gorm:"size:500" json:"failure_reason,omitempty"`
	PayoutRef       string     `gorm:"size:128" json:"payout_ref,omitempty"`
	ProofURL        string     `gorm:"size:512" json:"proof_url,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Withdrawal) TableName() string { return "withdrawals" }
