package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"funnelforge/pkg/config"
	"funnelforge/pkg/errutil"
	"funnelforge/services/affiliate"
	"funnelforge/services/commission"
)

type ServiceParams struct {
	fx.In

	DB     *gorm.DB
	Node   *snowflake.Node
	Config *config.Config
}

// Service records captured orders and the commission hold they open. Every
// capture leaves the database in the shape the release engine expects: one
// PENDING payment, one COMMISSION_HOLD ledger entry, and the affiliate's
// pending balance incremented by the commission, all in one transaction.
type Service struct {
	db         *gorm.DB
	node       *snowflake.Node
	holdPeriod time.Duration
	rate       decimal.Decimal
	now        func() time.Time
}

func NewService(params ServiceParams) *Service {
	return &Service{
		db:         params.DB,
		node:       params.Node,
		holdPeriod: params.Config.Commission.HoldPeriod,
		rate:       decimal.NewFromFloat(params.Config.Commission.Rate),
		now:        time.Now,
	}
}

// CaptureOrder attributes a sale to the given affiliate code and opens the
// commission hold. The commission stays in pending balance until the hold
// expiry passes and the release engine picks it up.
func (s *Service) CaptureOrder(ctx context.Context, code string, amount decimal.Decimal, customerEmail string) (*commission.Payment, error) {
	if !amount.IsPositive() {
		return nil, errutil.BadRequest("order amount must be positive", nil)
	}

	var link affiliate.AffiliateLink
	if err := s.db.WithContext(ctx).
		Preload("Account").
		Where("code = ?", code).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("affiliate link not found", err)
		}
		return nil, errutil.Internal("failed to resolve affiliate link", err)
	}

	now := s.now()
	commissionAmount := amount.Mul(s.rate).Round(2)

	payment := &commission.Payment{
		ID:                  s.node.Generate().String(),
		TransactionID:       uuid.NewString(),
		AffiliateLinkID:     link.ID,
		Amount:              amount,
		CommissionAmount:    commissionAmount,
		CommissionStatus:    commission.CommissionPending,
		CommissionHeldUntil: now.Add(s.holdPeriod),
		Status:              commission.PaymentCaptured,
		CustomerEmail:       customerEmail,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		entry := &commission.BalanceTransaction{
			ID:            s.node.Generate().String(),
			AccountID:     link.AccountID,
			Type:          commission.EntryCommissionHold,
			Amount:        commissionAmount,
			BalanceBefore: link.Account.Balance,
			ReferenceType: commission.ReferencePayment,
			ReferenceID:   payment.ID,
			Notes:         "Commission held pending clearance",
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		return tx.Model(&affiliate.Account{}).
			Where("id = ?", link.AccountID).
			Update("pending_balance", gorm.Expr("pending_balance + ?", commissionAmount)).Error
	})
	if err != nil {
		return nil, errutil.Internal("failed to capture order", err)
	}

	zap.L().Info("order captured",
		zap.String("payment_id", payment.ID),
		zap.String("affiliate_code", code),
		zap.String("amount", amount.String()),
		zap.String("commission", commissionAmount.String()),
	)

	return payment, nil
}

// RefundOrder flips a captured payment to refunded. A refunded payment's
// commission is never released; the hold entry stays as a record of the
// reversed attribution.
func (s *Service) RefundOrder(ctx context.Context, transactionID string) (*commission.Payment, error) {
	res := s.db.WithContext(ctx).Model(&commission.Payment{}).
		Where("transaction_id = ? AND status = ?", transactionID, commission.PaymentCaptured).
		Update("status", commission.PaymentRefunded)
	if res.Error != nil {
		return nil, errutil.Internal("failed to refund order", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errutil.Conflict("no captured payment for transaction", nil)
	}

	var payment commission.Payment
	if err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&payment).Error; err != nil {
		return nil, errutil.Internal("failed to load refunded payment", err)
	}

	zap.L().Info("order refunded",
		zap.String("payment_id", payment.ID),
		zap.String("transaction_id", transactionID),
	)

	return &payment, nil
}

// GetOrder looks a payment up by its external transaction id.
func (s *Service) GetOrder(ctx context.Context, transactionID string) (*commission.Payment, error) {
	var payment commission.Payment
	if err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("payment not found", err)
		}
		return nil, errutil.Internal("failed to load payment", err)
	}
	return &payment, nil
}
