package domain

import "math"

// Balances is the denormalized balance cache carried on the user row, in cents.
// It is recomputed from the ledgers by the balance service and only ever mutated
// by the withdrawal engine (zeroed at reservation, incremented at restoration).
type Balances struct {
	SellerCents      int64 `json:"seller_cents"`
	CommunityCents   int64 `json:"community_cents"`
	AffiliationCents int64 `json:"affiliation_cents"`
}

func (b Balances) TotalCents() int64 {
	return b.SellerCents + b.CommunityCents + b.AffiliationCents
}

// TaxableCents is the portion subject to the platform commission.
// Affiliate earnings are never commissioned.
func (b Balances) TaxableCents() int64 {
	return b.SellerCents + b.CommunityCents
}

// CommissionCents computes the platform commission on a taxable amount using
// half-up rounding to whole cents, so gross - commission == net exactly.
func CommissionCents(taxableCents int64, rate float64) int64 {
	return int64(math.Round(float64(taxableCents) * rate))
}
