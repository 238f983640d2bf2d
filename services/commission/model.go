package commission

import (
	"time"

	"github.com/shopspring/decimal"

	"funnelforge/services/affiliate"
)

type CommissionStatus string

const (
	CommissionPending  CommissionStatus = "PENDING"
	CommissionReleased CommissionStatus = "RELEASED"
)

// PaymentStatus is the payment outcome, independent of the commission
// lifecycle. Only captured payments ever release commission.
type PaymentStatus string

const (
	PaymentCaptured PaymentStatus = "captured"
	PaymentRefunded PaymentStatus = "refunded"
)

type EntryType string

const (
	EntryCommissionHold    EntryType = "COMMISSION_HOLD"
	EntryCommissionRelease EntryType = "COMMISSION_RELEASE"
	EntryPayout            EntryType = "PAYOUT"
	EntryAdjustment        EntryType = "ADJUSTMENT"
)

const ReferencePayment = "payment"

// Payment is a captured sale attributed to an affiliate link. The checkout
// flow creates it with a PENDING commission and a hold expiry; the release
// engine transitions it to RELEASED exactly once. Never deleted.
type Payment struct {
	ID                   string           `gorm:"column:id;primaryKey" json:"id"`
	TransactionID        string           `gorm:"column:transaction_id;uniqueIndex;not null" json:"transaction_id"`
	AffiliateLinkID      string           `gorm:"column:affiliate_link_id;index;not null" json:"affiliate_link_id"`
	Amount               decimal.Decimal  `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	CommissionAmount     decimal.Decimal  `gorm:"column:commission_amount;type:decimal(18,2);not null" json:"commission_amount"`
	CommissionStatus     CommissionStatus `gorm:"column:commission_status;index;not null;default:'PENDING'" json:"commission_status"`
	CommissionHeldUntil  time.Time        `gorm:"column:commission_held_until;index" json:"commission_held_until"`
	CommissionReleasedAt *time.Time       `gorm:"column:commission_released_at" json:"commission_released_at,omitempty"`
	AffiliatePaid        bool             `gorm:"column:affiliate_paid;not null;default:false" json:"affiliate_paid"`
	Status               PaymentStatus    `gorm:"column:status;index;not null;default:'captured'" json:"status"`
	CustomerEmail        string           `gorm:"column:customer_email" json:"customer_email,omitempty"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	AffiliateLink *affiliate.AffiliateLink `gorm:"foreignKey:AffiliateLinkID" json:"-"`
}

// BalanceTransaction is one auditable balance-affecting event. A commission
// keeps a single entry across its lifecycle: checkout writes it as
// COMMISSION_HOLD, the release engine transitions that same row to
// COMMISSION_RELEASE. Rows are never deleted.
type BalanceTransaction struct {
	ID            string          `gorm:"column:id;primaryKey" json:"id"`
	AccountID     string          `gorm:"column:account_id;index;not null" json:"account_id"`
	Type          EntryType       `gorm:"column:type;index;not null" json:"type"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"column:balance_before;type:decimal(18,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"column:balance_after;type:decimal(18,2)" json:"balance_after"`
	ReferenceType string          `gorm:"column:reference_type;index" json:"reference_type"`
	ReferenceID   string          `gorm:"column:reference_id;index" json:"reference_id"`
	ReleasedAt    *time.Time      `gorm:"column:released_at" json:"released_at,omitempty"`
	Notes         string          `gorm:"column:notes" json:"notes"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ReleaseHold is the only legal transition on a ledger entry: HELD to
// RELEASED, at most once. Any other starting state is a data fault.
func (bt *BalanceTransaction) ReleaseHold(releasedAt time.Time, balanceAfter decimal.Decimal) error {
	if bt.Type != EntryCommissionHold {
		return ErrInvalidLedgerTransition
	}

	bt.Type = EntryCommissionRelease
	bt.ReleasedAt = &releasedAt
	bt.BalanceAfter = balanceAfter
	bt.Notes = "Commission released: hold period elapsed"
	return nil
}

// ReleasedPayment is the per-item success record inside a RunSummary.
type ReleasedPayment struct {
	PaymentID        string          `json:"payment_id"`
	TransactionID    string          `json:"transaction_id"`
	AccountID        string          `json:"account_id"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	BalanceBefore    decimal.Decimal `json:"balance_before"`
	BalanceAfter     decimal.Decimal `json:"balance_after"`
	ReleasedAt       time.Time       `json:"released_at"`
}

// FailedPayment is the per-item failure record; the payment stays PENDING
// and is retried on the next run.
type FailedPayment struct {
	PaymentID     string      `json:"payment_id"`
	TransactionID string      `json:"transaction_id"`
	Kind          FailureKind `json:"kind"`
	Error         string      `json:"error"`
}

// RunSummary is the transient result of one batch invocation.
type RunSummary struct {
	Success          bool              `json:"success"`
	TotalEligible    int               `json:"total_eligible"`
	TotalReleased    int               `json:"total_released"`
	TotalFailed      int               `json:"total_failed"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	ReleasedPayments []ReleasedPayment `json:"released_payments"`
	FailedPayments   []FailedPayment   `json:"failed_payments"`
	ElapsedMS        int64             `json:"elapsed_ms"`
}
