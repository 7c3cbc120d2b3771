package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:64;not null;default:''" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Role         string `gorm:"size:20;not null;index" json:"role"` // MEMBER | ADMIN

	// Balance cache over the earning ledgers. Recomputed by the balance service,
	// zeroed/credited only by the withdrawal engine. Sale processing writes ledger
	// rows instead of touching these.
	SellerBalanceCents      int64 `gorm:"not null;default:0" json:"seller_balance_cents"`
	CommunityBalanceCents   int64 `gorm:"not null;default:0" json:"community_balance_cents"`
	AffiliationBalanceCents int64 `gorm:"not null;default:0" json:"affiliation_balance_cents"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
