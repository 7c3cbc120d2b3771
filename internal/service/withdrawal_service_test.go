package service

import (
	"context"
	"testing"

	"vendora/internal/domain"

	"github.com/stretchr/testify/assert"
)

// Validation short-circuits run before any storage access, so a zero-value
// service is enough to exercise them.

func TestCreateRejectsInvalidMethod(t *testing.T) {
	s := &WithdrawalService{}
	for _, method := range []string{"", "CASH", "bitcoin", "BANK"} {
		_, err := s.Create(context.Background(), 1, method, nil)
		assert.ErrorIs(t, err, ErrInvalidMethod, "method %q", method)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	s := &WithdrawalService{}
	assert.ErrorIs(t, s.Reject(context.Background(), 1, "", 2), ErrReasonRequired)
	assert.ErrorIs(t, s.Reject(context.Background(), 1, "   ", 2), ErrReasonRequired)
}

func TestMarkFailedRequiresReason(t *testing.T) {
	s := &WithdrawalService{}
	assert.ErrorIs(t, s.MarkFailed(context.Background(), 1, "", 2), ErrReasonRequired)
	assert.ErrorIs(t, s.MarkFailed(context.Background(), 1, "\t\n", 2), ErrReasonRequired)
}

func TestMarkPaidRequiresPayoutRef(t *testing.T) {
	s := &WithdrawalService{}
	assert.ErrorIs(t, s.MarkPaid(context.Background(), 1, "", "", 2), ErrPayoutRefRequired)
	assert.ErrorIs(t, s.MarkPaid(context.Background(), 1, "  ", "http://proof", 2), ErrPayoutRefRequired)
}

func TestEncodePaymentDetailsFiltersPerMethod(t *testing.T) {
	got, err := EncodePaymentDetails(domain.MethodMpesa, map[string]string{
		"phone_number": "254700000001",
		"bank_name":    "should be dropped",
		"note":         "should be dropped",
	})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"phone_number":"254700000001"}`, got)
}

func TestEncodePaymentDetailsDropsEmptyValues(t *testing.T) {
	got, err := EncodePaymentDetails(domain.MethodBankTransfer, map[string]string{
		"bank_name":      "Equity",
		"account_name":   "",
		"account_number": "0123456789",
	})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"bank_name":"Equity","account_number":"0123456789"}`, got)
}

func TestEncodePaymentDetailsToleratesMissingFields(t *testing.T) {
	got, err := EncodePaymentDetails(domain.MethodPaypal, nil)
	assert.NoError(t, err)
	assert.JSONEq(t, `{}`, got)
}
