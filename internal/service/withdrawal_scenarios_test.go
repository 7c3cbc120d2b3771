package service

import (
	"context"
	"os"
	"strings"
	"testing"

	"vendora/config"
	"vendora/internal/database"
	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// End-to-end engine scenarios against a real MySQL. Gated on TEST_MYSQL_DSN so
// the suite stays green without a database, e.g.
//
//	TEST_MYSQL_DSN="vendora:vendora@tcp(localhost:3306)/vendora_test?charset=utf8mb4&parseTime=True&loc=Local" go test ./internal/service/

func scenarioDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newEngine(db *gorm.DB) (*WithdrawalService, *BalanceService) {
	ledger := repository.NewLedgerRepository(db)
	balances := NewBalanceService(db, ledger)
	cfg := &config.WithdrawalConfig{MinAmountCents: 1000, CommissionRate: 0.09}
	return NewWithdrawalService(db, cfg, balances, ledger, nil, nil, nil), balances
}

// seedUser creates a user with one ledger row per earning stream. Zero amounts
// skip the row.
func seedUser(t *testing.T, db *gorm.DB, sellerCents, communityCents, affiliationCents int64) *models.User {
	t.Helper()
	tag := uuid.New().String()[:8]
	u := &models.User{
		Username: "seller-" + tag,
		Email:    "seller-" + tag + "@example.com",
		Role:     domain.RoleMember,
	}
	require.NoError(t, db.Create(u).Error)
	if sellerCents > 0 {
		require.NoError(t, db.Create(&models.SalePayout{
			SellerID: u.ID, OrderRef: "ord-" + tag, AmountCents: sellerCents, Status: domain.LedgerAvailable,
		}).Error)
	}
	if communityCents > 0 {
		require.NoError(t, db.Create(&models.CoursePayout{
			SellerID: u.ID, CourseRef: "crs-" + tag, AmountCents: communityCents, Status: domain.LedgerReady,
		}).Error)
	}
	if affiliationCents > 0 {
		require.NoError(t, db.Create(&models.AffiliateCommission{
			ReferrerID: u.ID, SourceRef: "src-" + tag, AmountCents: affiliationCents, Status: domain.LedgerAvailable,
		}).Error)
	}
	return u
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return &u
}

func reloadWithdrawal(t *testing.T, db *gorm.DB, id uint) *models.Withdrawal {
	t.Helper()
	var w models.Withdrawal
	require.NoError(t, db.First(&w, id).Error)
	return &w
}

func TestCreateSnapshotsAndReservesFunds(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)
	u := seedUser(t, db, 8000, 2000, 500)

	w, err := engine.Create(context.Background(), u.ID, "mpesa", map[string]string{"phone_number": "254700000001"})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(w.Reference, "wd-"))
	require.Equal(t, domain.WithdrawalPending, w.Status)
	require.Equal(t, domain.MethodMpesa, w.Method)
	require.Equal(t, int64(10500), w.AmountGrossCents)
	require.Equal(t, int64(900), w.CommissionCents, "commission applies to the taxable 10000 only, affiliation exempt")
	require.Equal(t, int64(9600), w.AmountNetCents)
	require.Equal(t, int64(8000), w.SnapshotSellerCents)
	require.Equal(t, int64(2000), w.SnapshotCommunityCents)
	require.Equal(t, int64(500), w.SnapshotAffiliationCents)

	fresh := reloadUser(t, db, u.ID)
	require.Zero(t, fresh.SellerBalanceCents)
	require.Zero(t, fresh.CommunityBalanceCents)
	require.Zero(t, fresh.AffiliationBalanceCents)

	var sale models.SalePayout
	require.NoError(t, db.Where("seller_id = ?", u.ID).First(&sale).Error)
	require.Equal(t, domain.LedgerWithdrawn, sale.Status)
	require.NotNil(t, sale.WithdrawalID)
	require.Equal(t, w.ID, *sale.WithdrawalID)
}

func TestRejectRestoresSnapshot(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)
	u := seedUser(t, db, 8000, 2000, 500)

	w, err := engine.Create(context.Background(), u.ID, domain.MethodPaypal, map[string]string{"email": "s@example.com"})
	require.NoError(t, err)
	require.NoError(t, engine.Reject(context.Background(), w.ID, "bank details invalid", 99))

	fresh := reloadUser(t, db, u.ID)
	require.Equal(t, int64(8000), fresh.SellerBalanceCents)
	require.Equal(t, int64(2000), fresh.CommunityBalanceCents)
	require.Equal(t, int64(500), fresh.AffiliationBalanceCents)

	stored := reloadWithdrawal(t, db, w.ID)
	require.Equal(t, domain.WithdrawalRejected, stored.Status)
	require.Equal(t, "bank details invalid", stored.RejectionReason)
	require.NotNil(t, stored.RestoredAt)
	require.NotNil(t, stored.ProcessedAt)

	var commission models.AffiliateCommission
	require.NoError(t, db.Where("referrer_id = ?", u.ID).First(&commission).Error)
	require.Equal(t, domain.LedgerReady, commission.Status)
}

func TestRejectTwiceLeavesBalancesUntouched(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)
	u := seedUser(t, db, 5000, 0, 0)

	w, err := engine.Create(context.Background(), u.ID, domain.MethodMpesa, map[string]string{"phone_number": "254700000002"})
	require.NoError(t, err)
	require.NoError(t, engine.Reject(context.Background(), w.ID, "first reject", 99))

	err = engine.Reject(context.Background(), w.ID, "second reject", 99)
	require.ErrorIs(t, err, ErrInvalidState)

	fresh := reloadUser(t, db, u.ID)
	require.Equal(t, int64(5000), fresh.SellerBalanceCents, "a repeated reject must not credit twice")
	require.Equal(t, "first reject", reloadWithdrawal(t, db, w.ID).RejectionReason)
}

func TestCreateRefusedWhileRequestOpen(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)
	u := seedUser(t, db, 5000, 0, 0)

	_, err := engine.Create(context.Background(), u.ID, domain.MethodMpesa, map[string]string{"phone_number": "254700000003"})
	require.NoError(t, err)

	_, err = engine.Create(context.Background(), u.ID, domain.MethodMpesa, map[string]string{"phone_number": "254700000003"})
	require.ErrorIs(t, err, ErrOpenRequestExists)
}

func TestLookupByReferenceAndOpenFlag(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)
	repo := repository.NewWithdrawalRepository(db)
	u := seedUser(t, db, 5000, 0, 0)

	open, err := repo.HasOpen(u.ID)
	require.NoError(t, err)
	require.False(t, open)

	w, err := engine.Create(context.Background(), u.ID, domain.MethodMpesa, map[string]string{"phone_number": "254700000009"})
	require.NoError(t, err)

	open, err = repo.HasOpen(u.ID)
	require.NoError(t, err)
	require.True(t, open)

	byRef, err := repo.GetByReference(w.Reference)
	require.NoError(t, err)
	require.Equal(t, w.ID, byRef.ID)
	require.Equal(t, u.ID, byRef.UserID)

	require.NoError(t, engine.Reject(context.Background(), w.ID, "details mismatch", 99))
	open, err = repo.HasOpen(u.ID)
	require.NoError(t, err)
	require.False(t, open, "a terminal withdrawal no longer blocks new requests")
}

func TestValidateThenMarkPaid(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)
	u := seedUser(t, db, 8000, 2000, 500)

	w, err := engine.Create(context.Background(), u.ID, domain.MethodBankTransfer, map[string]string{
		"bank_name": "Equity", "account_number": "0123456789",
	})
	require.NoError(t, err)

	require.NoError(t, engine.Validate(context.Background(), w.ID, 99))
	require.Equal(t, domain.WithdrawalValidated, reloadWithdrawal(t, db, w.ID).Status)

	require.NoError(t, engine.MarkPaid(context.Background(), w.ID, "tx-20260830-001", "https://proofs/doc.pdf", 99))

	stored := reloadWithdrawal(t, db, w.ID)
	require.Equal(t, domain.WithdrawalPaid, stored.Status)
	require.Equal(t, "tx-20260830-001", stored.PayoutRef)
	require.Equal(t, "https://proofs/doc.pdf", stored.ProofURL)
	require.Nil(t, stored.RestoredAt, "a paid withdrawal never restores funds")

	fresh := reloadUser(t, db, u.ID)
	require.Zero(t, fresh.SellerBalanceCents+fresh.CommunityBalanceCents+fresh.AffiliationBalanceCents)

	var sale models.SalePayout
	require.NoError(t, db.Where("seller_id = ?", u.ID).First(&sale).Error)
	require.Equal(t, domain.LedgerPaid, sale.Status)
}

func TestMarkFailedRestoresSnapshot(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)
	u := seedUser(t, db, 0, 3000, 0)

	w, err := engine.Create(context.Background(), u.ID, domain.MethodMpesa, map[string]string{"phone_number": "254700000004"})
	require.NoError(t, err)
	require.NoError(t, engine.Validate(context.Background(), w.ID, 99))
	require.NoError(t, engine.MarkFailed(context.Background(), w.ID, "bank bounced the transfer", 99))

	stored := reloadWithdrawal(t, db, w.ID)
	require.Equal(t, domain.WithdrawalFailed, stored.Status)
	require.Equal(t, "bank bounced the transfer", stored.FailureReason)
	require.NotNil(t, stored.RestoredAt)

	fresh := reloadUser(t, db, u.ID)
	require.Equal(t, int64(3000), fresh.CommunityBalanceCents)
}

func TestMarkFailedRequiresValidated(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)
	u := seedUser(t, db, 2000, 0, 0)

	w, err := engine.Create(context.Background(), u.ID, domain.MethodMpesa, map[string]string{"phone_number": "254700000005"})
	require.NoError(t, err)

	err = engine.MarkFailed(context.Background(), w.ID, "still pending", 99)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestMinimumThresholdBoundary(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)

	below := seedUser(t, db, 999, 0, 0)
	_, err := engine.Create(context.Background(), below.ID, domain.MethodMpesa, map[string]string{"phone_number": "254700000006"})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	exact := seedUser(t, db, 999, 0, 1)
	w, err := engine.Create(context.Background(), exact.ID, domain.MethodMpesa, map[string]string{"phone_number": "254700000007"})
	require.NoError(t, err, "a total exactly at the minimum is eligible")
	require.Equal(t, int64(1000), w.AmountGrossCents)
}

func TestRecomputeRepairsTamperedCache(t *testing.T) {
	db := scenarioDB(t)
	_, balances := newEngine(db)
	u := seedUser(t, db, 8000, 2000, 500)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"seller_balance_cents":      123,
		"community_balance_cents":   456,
		"affiliation_balance_cents": 789,
	}).Error)

	bal, err := balances.Recompute(u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(8000), bal.SellerCents)
	require.Equal(t, int64(2000), bal.CommunityCents)
	require.Equal(t, int64(500), bal.AffiliationCents)

	fresh := reloadUser(t, db, u.ID)
	require.Equal(t, int64(8000), fresh.SellerBalanceCents)
}

func TestExcludedCommissionsStayOut(t *testing.T) {
	db := scenarioDB(t)
	engine, _ := newEngine(db)
	u := seedUser(t, db, 5000, 0, 0)
	for _, status := range []string{domain.LedgerCancelled, domain.LedgerReversed, domain.LedgerPaid} {
		require.NoError(t, db.Create(&models.AffiliateCommission{
			ReferrerID: u.ID, SourceRef: "void-" + status, AmountCents: 1000, Status: status,
		}).Error)
	}

	w, err := engine.Create(context.Background(), u.ID, domain.MethodMpesa, map[string]string{"phone_number": "254700000008"})
	require.NoError(t, err)
	require.Equal(t, int64(5000), w.AmountGrossCents)
	require.Zero(t, w.SnapshotAffiliationCents)
}
