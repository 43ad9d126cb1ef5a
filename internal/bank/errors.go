package bank

import "errors"

// Reason classifies why an action was refused.
type Reason string

const (
	BadCredentials    Reason = "bad_credentials"
	InvalidAmount     Reason = "invalid_amount"
	InsufficientFunds Reason = "insufficient_funds"
	UnknownRecipient  Reason = "unknown_recipient"
	SelfTransfer      Reason = "self_transfer"
	LoanUnqualified   Reason = "loan_unqualified"
	AccountMismatch   Reason = "account_mismatch"
	NotAuthenticated  Reason = "not_authenticated"
)

// ErrValidation matches every ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// Per-reason sentinels for errors.Is.
var (
	ErrBadCredentials    = &ValidationError{Reason: BadCredentials}
	ErrInvalidAmount     = &ValidationError{Reason: InvalidAmount}
	ErrInsufficientFunds = &ValidationError{Reason: InsufficientFunds}
	ErrUnknownRecipient  = &ValidationError{Reason: UnknownRecipient}
	ErrSelfTransfer      = &ValidationError{Reason: SelfTransfer}
	ErrLoanUnqualified   = &ValidationError{Reason: LoanUnqualified}
	ErrAccountMismatch   = &ValidationError{Reason: AccountMismatch}
	ErrNotAuthenticated  = &ValidationError{Reason: NotAuthenticated}
)

// ValidationError reports a refused action. A refused action never changes
// account data.
type ValidationError struct {
	Reason Reason
}

func reject(r Reason) error {
	return &ValidationError{Reason: r}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + string(e.Reason)
}

// Is matches ErrValidation and any ValidationError with the same reason.
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	var other *ValidationError
	if errors.As(target, &other) {
		return other.Reason == e.Reason
	}
	return false
}

// ReasonOf extracts the refusal reason, if err is a validation failure.
func ReasonOf(err error) (Reason, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return "", false
}

// Message is the short text shown to the user.
func (r Reason) Message() string {
	switch r {
	case BadCredentials:
		return "Wrong user or PIN"
	case InvalidAmount:
		return "Enter a valid positive amount"
	case InsufficientFunds:
		return "Insufficient funds"
	case UnknownRecipient:
		return "No account with that user"
	case SelfTransfer:
		return "You cannot transfer to yourself"
	case LoanUnqualified:
		return "Loan not approved: a deposit of at least 10% of the amount is required"
	case AccountMismatch:
		return "User or PIN does not match the current account"
	case NotAuthenticated:
		return "Please log in"
	default:
		return "Request refused"
	}
}
