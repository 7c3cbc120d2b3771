package domain

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// Withdrawal statuses. PENDING and VALIDATED are open; the rest are terminal.
const (
	WithdrawalPending   = "PENDING"
	WithdrawalValidated = "VALIDATED"
	WithdrawalPaid      = "PAID"
	WithdrawalRejected  = "REJECTED"
	WithdrawalFailed    = "FAILED"
)

// Ledger row statuses shared by sale payouts, course payouts and affiliate commissions.
// AVAILABLE and READY count toward the balance; WITHDRAWN means reserved inside an
// open withdrawal; PAID means funds left through a prior payout path; CANCELLED and
// REVERSED are excluded permanently.
const (
	LedgerAvailable = "AVAILABLE"
	LedgerReady     = "READY"
	LedgerWithdrawn = "WITHDRAWN"
	LedgerPaid      = "PAID"
	LedgerCancelled = "CANCELLED"
	LedgerReversed  = "REVERSED"
)

// Payout methods
const (
	MethodBankTransfer = "BANK_TRANSFER"
	MethodMpesa        = "MPESA"
	MethodPaypal       = "PAYPAL"
)

// PayoutMethods is the closed set of accepted withdrawal methods.
var PayoutMethods = []string{MethodBankTransfer, MethodMpesa, MethodPaypal}

// PayoutMethodFields lists the accepted payment detail fields per method.
// Fields outside this set are dropped on input, never rejected.
var PayoutMethodFields = map[string][]string{
	MethodBankTransfer: {"bank_name", "account_name", "account_number", "branch"},
	MethodMpesa:        {"phone_number"},
	MethodPaypal:       {"email"},
}

func ValidPayoutMethod(method string) bool {
	for _, m := range PayoutMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Notification types
const (
	NotifWithdrawalRequested = "WITHDRAWAL_REQUESTED"
	NotifWithdrawalValidated = "WITHDRAWAL_VALIDATED"
	NotifWithdrawalRejected  = "WITHDRAWAL_REJECTED"
	NotifWithdrawalPaid      = "WITHDRAWAL_PAID"
	NotifWithdrawalFailed    = "WITHDRAWAL_FAILED"
)

// Setting keys for runtime policy overrides
const (
	SettingMinWithdrawalCents = "withdrawal_min_cents"
	SettingCommissionRate     = "withdrawal_commission_rate"
)
