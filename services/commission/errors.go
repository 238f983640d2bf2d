package commission

import (
	"errors"
	"fmt"
)

// Sentinel causes for a failed release. Callers match with errors.Is, never
// by message text.
var (
	// ErrLedgerEntryMissing means no COMMISSION_HOLD entry exists for the
	// payment being released. The hold written at checkout has gone missing.
	ErrLedgerEntryMissing = errors.New("commission hold ledger entry not found")

	// ErrAlreadyReleased means the guarded payment update matched zero rows,
	// so the payment left PENDING between selection and execution.
	ErrAlreadyReleased = errors.New("payment commission is no longer pending")

	// ErrInvalidLedgerTransition means a ledger entry was asked to release
	// from a state other than COMMISSION_HOLD.
	ErrInvalidLedgerTransition = errors.New("ledger entry is not a commission hold")
)

// FailureKind classifies a per-payment release failure for the RunSummary.
type FailureKind string

const (
	FailureLedgerEntryMissing FailureKind = "LEDGER_ENTRY_MISSING"
	FailureConflict           FailureKind = "TRANSACTION_CONFLICT"
	FailureStorage            FailureKind = "STORAGE_ERROR"
)

// EligibilityQueryError wraps a failure of the eligibility query itself.
// It aborts the whole run, unlike per-payment errors.
type EligibilityQueryError struct {
	Err error
}

func (e *EligibilityQueryError) Error() string {
	return fmt.Sprintf("eligible payment query failed: %v", e.Err)
}

func (e *EligibilityQueryError) Unwrap() error { return e.Err }

// ReleaseError is the failure of one payment's release transaction. The
// transaction it wraps was rolled back in full.
type ReleaseError struct {
	PaymentID     string
	TransactionID string
	Kind          FailureKind
	Err           error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release payment %s (%s): %v", e.PaymentID, e.Kind, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }

func classifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrLedgerEntryMissing), errors.Is(err, ErrInvalidLedgerTransition):
		return FailureLedgerEntryMissing
	case errors.Is(err, ErrAlreadyReleased):
		return FailureConflict
	default:
		return FailureStorage
	}
}
