package commission

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"funnelforge/pkg/db/option"
	"funnelforge/pkg/repository"
	"funnelforge/services/affiliate"
	"funnelforge/services/notification"
)

type ServiceParams struct {
	fx.In

	DB       *gorm.DB
	Node     *snowflake.Node
	Notifier notification.Notifier
}

// Service is the commission release engine. A single scheduled runner is
// assumed; two overlapping runs will not corrupt balances thanks to the
// guarded status update, but the loser of each race reports a conflict
// instead of a release.
type Service struct {
	db         *gorm.DB
	node       *snowflake.Node
	notifier   notification.Notifier
	entryStore repository.Repository[BalanceTransaction]
	now        func() time.Time
}

func NewService(params ServiceParams) *Service {
	return &Service{
		db:         params.DB,
		node:       params.Node,
		notifier:   params.Notifier,
		entryStore: repository.ProvideStore[BalanceTransaction](params.DB),
		now:        time.Now,
	}
}

// ListEligiblePayments selects every payment whose commission is ready to
// mature: still PENDING, hold expired, a positive amount, and a payment that
// was captured rather than refunded. Oldest holds first, so partial runs
// drain the backlog in arrival order.
func (s *Service) ListEligiblePayments(ctx context.Context) ([]*Payment, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	var payments []*Payment
	err := s.db.WithContext(ctx).
		Preload("AffiliateLink").
		Preload("AffiliateLink.Account").
		Where("commission_status = ?", CommissionPending).
		Where("commission_held_until < ?", s.now()).
		Where("commission_amount > ?", decimal.Zero).
		Where("status = ?", PaymentCaptured).
		Order("commission_held_until ASC").
		Find(&payments).Error
	if err != nil {
		return nil, &EligibilityQueryError{Err: err}
	}

	return payments, nil
}

// Run executes one batch release. Per-payment failures are isolated: the
// failed payment is rolled back and reported, the rest of the batch
// continues. Only a failing eligibility query aborts the run.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	start := s.now()

	eligible, err := s.ListEligiblePayments(ctx)
	if err != nil {
		zap.L().Error("commission release run aborted", zap.Error(err))
		return nil, err
	}

	summary := &RunSummary{
		TotalEligible: len(eligible),
		TotalAmount:   decimal.Zero,
	}

	if len(eligible) == 0 {
		summary.Success = true
		summary.ElapsedMS = time.Since(start).Milliseconds()
		zap.L().Info("commission release run found no eligible payments")
		return summary, nil
	}

	zap.L().Info("commission release run started",
		zap.Int("eligible", len(eligible)),
	)

	for _, payment := range eligible {
		released, err := s.releasePayment(ctx, payment)
		if err != nil {
			var relErr *ReleaseError
			if !errors.As(err, &relErr) {
				relErr = &ReleaseError{
					PaymentID:     payment.ID,
					TransactionID: payment.TransactionID,
					Kind:          FailureStorage,
					Err:           err,
				}
			}
			summary.FailedPayments = append(summary.FailedPayments, FailedPayment{
				PaymentID:     relErr.PaymentID,
				TransactionID: relErr.TransactionID,
				Kind:          relErr.Kind,
				Error:         relErr.Err.Error(),
			})
			zap.L().Warn("commission release failed for payment",
				zap.String("payment_id", payment.ID),
				zap.String("kind", string(relErr.Kind)),
				zap.Error(relErr.Err),
			)
			continue
		}

		summary.ReleasedPayments = append(summary.ReleasedPayments, *released)
		summary.TotalAmount = summary.TotalAmount.Add(released.CommissionAmount)
	}

	summary.TotalReleased = len(summary.ReleasedPayments)
	summary.TotalFailed = len(summary.FailedPayments)
	summary.Success = summary.TotalFailed == 0

	s.dispatchNotifications(ctx, summary.ReleasedPayments)

	summary.ElapsedMS = time.Since(start).Milliseconds()

	zap.L().Info("commission release run finished",
		zap.Int("released", summary.TotalReleased),
		zap.Int("failed", summary.TotalFailed),
		zap.String("total_amount", summary.TotalAmount.String()),
		zap.Int64("elapsed_ms", summary.ElapsedMS),
	)

	return summary, nil
}

// releasePayment moves one commission from held to spendable inside a single
// transaction. Every statement is relative or guarded, so a stale in-memory
// snapshot can delay a release but never misstate a balance.
func (s *Service) releasePayment(ctx context.Context, payment *Payment) (*ReleasedPayment, error) {
	if payment.AffiliateLink == nil || payment.AffiliateLink.Account == nil {
		return nil, &ReleaseError{
			PaymentID:     payment.ID,
			TransactionID: payment.TransactionID,
			Kind:          FailureStorage,
			Err:           errors.New("payment has no affiliate account attached"),
		}
	}

	accountID := payment.AffiliateLink.Account.ID
	releasedAt := s.now()

	var result *ReleasedPayment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Payment{}).
			Where("id = ? AND commission_status = ?", payment.ID, CommissionPending).
			Updates(map[string]interface{}{
				"commission_status":      CommissionReleased,
				"commission_released_at": releasedAt,
				"affiliate_paid":         true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReleased
		}

		if err := tx.Model(&affiliate.Account{}).
			Where("id = ?", accountID).
			Updates(map[string]interface{}{
				"pending_balance": gorm.Expr("pending_balance - ?", payment.CommissionAmount),
				"balance":         gorm.Expr("balance + ?", payment.CommissionAmount),
			}).Error; err != nil {
			return err
		}

		hold, err := s.entryStore.WithTrx(tx).FindOne(ctx, &BalanceTransaction{
			AccountID:     accountID,
			Type:          EntryCommissionHold,
			ReferenceType: ReferencePayment,
			ReferenceID:   payment.ID,
		}, option.WithLockingUpdate())
		if err != nil {
			return err
		}
		if hold == nil {
			return ErrLedgerEntryMissing
		}

		var account affiliate.Account
		if err := tx.Where("id = ?", accountID).First(&account).Error; err != nil {
			return err
		}

		if err := hold.ReleaseHold(releasedAt, account.Balance); err != nil {
			return err
		}
		if err := s.entryStore.WithTrx(tx).Update(ctx, hold.ID, map[string]interface{}{
			"type":          hold.Type,
			"released_at":   hold.ReleasedAt,
			"balance_after": hold.BalanceAfter,
			"notes":         hold.Notes,
		}); err != nil {
			return err
		}

		result = &ReleasedPayment{
			PaymentID:        payment.ID,
			TransactionID:    payment.TransactionID,
			AccountID:        accountID,
			CommissionAmount: payment.CommissionAmount,
			BalanceBefore:    account.Balance.Sub(payment.CommissionAmount),
			BalanceAfter:     account.Balance,
			ReleasedAt:       releasedAt,
		}
		return nil
	})
	if err != nil {
		var relErr *ReleaseError
		if errors.As(err, &relErr) {
			return nil, relErr
		}
		return nil, &ReleaseError{
			PaymentID:     payment.ID,
			TransactionID: payment.TransactionID,
			Kind:          classifyFailure(err),
			Err:           err,
		}
	}

	return result, nil
}

// dispatchNotifications sends one consolidated notice per affiliate and
// waits for every send before returning. Failures are logged and dropped;
// the releases they describe are already committed.
func (s *Service) dispatchNotifications(ctx context.Context, released []ReleasedPayment) {
	if len(released) == 0 || s.notifier == nil {
		return
	}

	groups := make(map[string][]ReleasedPayment)
	for _, rp := range released {
		groups[rp.AccountID] = append(groups[rp.AccountID], rp)
	}

	var g errgroup.Group
	for accountID, items := range groups {
		accountID, items := accountID, items
		g.Go(func() error {
			if err := s.notifyAccount(ctx, accountID, items); err != nil {
				zap.L().Warn("commission released notification failed",
					zap.String("account_id", accountID),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) notifyAccount(ctx context.Context, accountID string, items []ReleasedPayment) error {
	var account affiliate.Account
	if err := s.db.WithContext(ctx).Where("id = ?", accountID).First(&account).Error; err != nil {
		return err
	}

	total := decimal.Zero
	paymentIDs := make([]string, 0, len(items))
	for _, item := range items {
		total = total.Add(item.CommissionAmount)
		paymentIDs = append(paymentIDs, item.PaymentID)
	}

	return s.notifier.SendCommissionReleased(ctx, notification.CommissionReleased{
		RecipientEmail:      account.Email,
		RecipientName:       account.Name,
		CommissionAmount:    total,
		NewBalance:          account.Balance,
		NumberOfCommissions: len(items),
		PaymentIDs:          paymentIDs,
	})
}
