package models

import (
	"time"

	"gorm.io/gorm"
)

// SalePayout is a marketplace earning row. Created by sale processing in an active
// status; only the withdrawal engine moves it through WITHDRAWN / READY / PAID.
type SalePayout struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SellerID     uint           `gorm:"not null;index" json:"seller_id"`
	OrderRef     string         `gorm:"size:64;index" json:"order_ref"`
	AmountCents  int64          `gorm:"not null" json:"amount_cents"`
	Status       string         `gorm:"size:20;not null;index" json:"status"`
	WithdrawalID *uint          `gorm:"index" json:"withdrawal_id,omitempty"` // set while reserved, kept for audit
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Seller User `gorm:"foreignKey:SellerID" json:"-"`
}

func (SalePayout) TableName() string { return "sale_payouts" }

// CoursePayout is a course-sale earning row with the same lifecycle as SalePayout.
type CoursePayout struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SellerID     uint           `gorm:"not null;index" json:"seller_id"`
	CourseRef    string         `gorm:"size:64;index" json:"course_ref"`
	AmountCents  int64          `gorm:"not null" json:"amount_cents"`
	Status       string         `gorm:"size:20;not null;index" json:"status"`
	WithdrawalID *uint          `gorm:"index" json:"withdrawal_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Seller User `gorm:"foreignKey:SellerID" json:"-"`
}

func (CoursePayout) TableName() string { return "course_payouts" }

// AffiliateCommission is an affiliate earning row. Amounts are stored in cents,
// the same minor unit as the balance cache, so aggregation needs no scale
// conversion. REVERSED is the commission-specific alias of CANCELLED.
type AffiliateCommission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ReferrerID   uint           `gorm:"not null;index" json:"referrer_id"`
	SourceRef    string         `gorm:"size:64;index" json:"source_ref"` // order or signup that earned it
	AmountCents  int64          `gorm:"not null" json:"amount_cents"`
	Status       string         `gorm:"size:20;not null;index" json:"status"`
	WithdrawalID *uint          `gorm:"index" json:"withdrawal_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Referrer User `gorm:"foreignKey:ReferrerID" json:"-"`
}

func (AffiliateCommission) TableName() string { return "affiliate_commissions" }
