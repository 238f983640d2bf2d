package notification

import (
	"context"

	"github.com/shopspring/decimal"
)

// CommissionReleased is the consolidated per-affiliate notice sent after a
// release run: one message per affiliate covering every commission released
// for them in that run.
type CommissionReleased struct {
	RecipientEmail      string          `json:"recipient_email"`
	RecipientName       string          `json:"recipient_name"`
	CommissionAmount    decimal.Decimal `json:"commission_amount"`
	NewBalance          decimal.Decimal `json:"new_balance"`
	NumberOfCommissions int             `json:"number_of_commissions"`
	PaymentIDs          []string        `json:"payment_ids"`
}

// Notifier delivers affiliate-facing notices. Delivery is fire-and-forget
// from the caller's perspective: implementations may queue, batch or drop,
// and a returned error must never be treated as a reason to roll anything
// back.
type Notifier interface {
	SendCommissionReleased(ctx context.Context, msg CommissionReleased) error
}
