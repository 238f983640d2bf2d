package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"funnelforge/pkg/errutil"
	"funnelforge/services/affiliate"
	"funnelforge/services/commission"
	"funnelforge/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T, holdPeriod time.Duration) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t,
		&affiliate.Account{},
		&affiliate.AffiliateLink{},
		&commission.Payment{},
		&commission.BalanceTransaction{},
	)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := &Service{
		db:         db,
		node:       node,
		holdPeriod: holdPeriod,
		rate:       decimal.NewFromFloat(0.30),
		now:        time.Now,
	}
	return svc, db
}

func seedAffiliate(t *testing.T, db *gorm.DB, accountID, code string) {
	t.Helper()

	require.NoError(t, db.Create(&affiliate.Account{
		ID:    accountID,
		Name:  "Test Affiliate",
		Email: accountID + "@example.com",
	}).Error)
	require.NoError(t, db.Create(&affiliate.AffiliateLink{
		ID:        accountID + "-link",
		AccountID: accountID,
		FunnelID:  "funnel-1",
		Code:      code,
	}).Error)
}

func TestCaptureOrderOpensHold(t *testing.T) {
	svc, db := newTestService(t, 30*24*time.Hour)
	seedAffiliate(t, db, "acc-1", "AF-TEST01")

	before := time.Now()
	payment, err := svc.CaptureOrder(context.Background(), "AF-TEST01", decimal.NewFromInt(100), "buyer@example.com")
	require.NoError(t, err)

	require.Equal(t, commission.CommissionPending, payment.CommissionStatus)
	require.Equal(t, commission.PaymentCaptured, payment.Status)
	require.True(t, payment.CommissionAmount.Equal(decimal.NewFromInt(30)))
	require.NotEmpty(t, payment.TransactionID)
	require.False(t, payment.AffiliatePaid)

	// hold expiry lands a full hold period out
	require.True(t, payment.CommissionHeldUntil.After(before.Add(30*24*time.Hour-time.Minute)))

	var entry commission.BalanceTransaction
	require.NoError(t, db.
		Where("reference_type = ? AND reference_id = ?", commission.ReferencePayment, payment.ID).
		First(&entry).Error)
	require.Equal(t, commission.EntryCommissionHold, entry.Type)
	require.True(t, entry.Amount.Equal(decimal.NewFromInt(30)))
	require.Equal(t, "acc-1", entry.AccountID)
	require.Nil(t, entry.ReleasedAt)

	var account affiliate.Account
	require.NoError(t, db.Where("id = ?", "acc-1").First(&account).Error)
	require.True(t, account.PendingBalance.Equal(decimal.NewFromInt(30)))
	require.True(t, account.Balance.IsZero())
}

func TestCaptureOrderUnknownCode(t *testing.T) {
	svc, _ := newTestService(t, 30*24*time.Hour)

	payment, err := svc.CaptureOrder(context.Background(), "AF-NOPE", decimal.NewFromInt(100), "")
	require.Nil(t, payment)

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestCaptureOrderRejectsNonPositiveAmount(t *testing.T) {
	svc, db := newTestService(t, 30*24*time.Hour)
	seedAffiliate(t, db, "acc-1", "AF-TEST01")

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		payment, err := svc.CaptureOrder(context.Background(), "AF-TEST01", amount, "")
		require.Nil(t, payment)

		var be errutil.BaseError
		require.True(t, errors.As(err, &be))
		require.Equal(t, errutil.StatusBadRequest, be.Status())
	}
}

func TestRefundOrder(t *testing.T) {
	svc, _ := newTestService(t, 30*24*time.Hour)
	seedAffiliate(t, svc.db, "acc-1", "AF-TEST01")

	captured, err := svc.CaptureOrder(context.Background(), "AF-TEST01", decimal.NewFromInt(100), "")
	require.NoError(t, err)

	refunded, err := svc.RefundOrder(context.Background(), captured.TransactionID)
	require.NoError(t, err)
	require.Equal(t, commission.PaymentRefunded, refunded.Status)
	require.Equal(t, commission.CommissionPending, refunded.CommissionStatus)

	// a second refund finds no captured payment to flip
	_, err = svc.RefundOrder(context.Background(), captured.TransactionID)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusConflict, be.Status())
}

func TestRefundedCommissionNeverReleases(t *testing.T) {
	// negative hold period: the commission matures immediately
	svc, db := newTestService(t, -time.Hour)
	seedAffiliate(t, db, "acc-1", "AF-TEST01")

	captured, err := svc.CaptureOrder(context.Background(), "AF-TEST01", decimal.NewFromInt(100), "")
	require.NoError(t, err)

	_, err = svc.RefundOrder(context.Background(), captured.TransactionID)
	require.NoError(t, err)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	engine := commission.NewService(commission.ServiceParams{DB: db, Node: node})

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.True(t, summary.Success)
	require.Zero(t, summary.TotalEligible)

	var account affiliate.Account
	require.NoError(t, db.Where("id = ?", "acc-1").First(&account).Error)
	require.True(t, account.Balance.IsZero())
}
