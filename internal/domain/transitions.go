package domain

// State machine actions on a withdrawal.
const (
	ActionValidate   = "validate"
	ActionReject     = "reject"
	ActionMarkPaid   = "mark-paid"
	ActionMarkFailed = "mark-failed"
)

// withdrawalTransitions maps each action to the statuses it may be applied from.
// validate:    PENDING              -> VALIDATED
// reject:      PENDING | VALIDATED  -> REJECTED  (restores funds)
// mark-paid:   PENDING | VALIDATED  -> PAID
// mark-failed: VALIDATED            -> FAILED    (restores funds)
var withdrawalTransitions = map[string][]string{
	ActionValidate:   {WithdrawalPending},
	ActionReject:     {WithdrawalPending, WithdrawalValidated},
	ActionMarkPaid:   {WithdrawalPending, WithdrawalValidated},
	ActionMarkFailed: {WithdrawalValidated},
}

// CanTransition reports whether the action is allowed from the given status.
func CanTransition(action, from string) bool {
	for _, s := range withdrawalTransitions[action] {
		if s == from {
			return true
		}
	}
	return false
}

// TransitionTarget returns the status an action lands in.
func TransitionTarget(action string) string {
	switch action {
	case ActionValidate:
		return WithdrawalValidated
	case ActionReject:
		return WithdrawalRejected
	case ActionMarkPaid:
		return WithdrawalPaid
	case ActionMarkFailed:
		return WithdrawalFailed
	}
	return ""
}

// IsOpenStatus reports whether a withdrawal still holds reserved funds.
func IsOpenStatus(status string) bool {
	return status == WithdrawalPending || status == WithdrawalValidated
}
