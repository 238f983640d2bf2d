package affiliate

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"funnelforge/pkg/errutil"
	"funnelforge/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &Account{}, &AffiliateLink{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node}), db
}

func TestCreateAccount(t *testing.T) {
	svc, _ := newTestService(t)

	account, err := svc.CreateAccount(context.Background(), "Jamie", "jamie@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, account.ID)
	require.True(t, account.Balance.IsZero())
	require.True(t, account.PendingBalance.IsZero())
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateAccount(context.Background(), "Jamie", "jamie@example.com")
	require.NoError(t, err)

	_, err = svc.CreateAccount(context.Background(), "Other", "jamie@example.com")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusConflict, be.Status())
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateAccount(context.Background(), "", "jamie@example.com")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusBadRequest, be.Status())
}

func TestGetAccountNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetAccount(context.Background(), "missing")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestCreateLinkGeneratesCode(t *testing.T) {
	svc, _ := newTestService(t)

	account, err := svc.CreateAccount(context.Background(), "Jamie", "jamie@example.com")
	require.NoError(t, err)

	link, err := svc.CreateLink(context.Background(), account.ID, "funnel-1")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^AF-[0-9A-F]{6}$`), link.Code)
	require.Equal(t, account.ID, link.AccountID)

	resolved, err := svc.ResolveCode(context.Background(), link.Code)
	require.NoError(t, err)
	require.Equal(t, link.ID, resolved.ID)
}

func TestCreateLinkUnknownAccount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateLink(context.Background(), "missing", "funnel-1")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestTrackClick(t *testing.T) {
	svc, db := newTestService(t)

	account, err := svc.CreateAccount(context.Background(), "Jamie", "jamie@example.com")
	require.NoError(t, err)
	link, err := svc.CreateLink(context.Background(), account.ID, "funnel-1")
	require.NoError(t, err)

	require.NoError(t, svc.TrackClick(context.Background(), link.Code))
	require.NoError(t, svc.TrackClick(context.Background(), link.Code))

	var got AffiliateLink
	require.NoError(t, db.Where("id = ?", link.ID).First(&got).Error)
	require.EqualValues(t, 2, got.Clicks)

	err = svc.TrackClick(context.Background(), "AF-NOPE")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}
