package domain

import (
	"context"
	"errors"
	"strings"
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

	db := testutil.NewTestDB(t, &Domain{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{DB: db, Node: node}), db
}

func TestAddDomain(t *testing.T) {
	svc, _ := newTestService(t)

	d, err := svc.AddDomain(context.Background(), "acc-1", "funnel-1", "Shop.Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "shop.example.com", d.Hostname)
	require.Equal(t, Custom, d.Type)
	require.Equal(t, Pending, d.CertificateStatus)
	require.True(t, strings.HasPrefix(d.VerificationCode, "funnelforge-verify="))
	require.False(t, d.Verified)
}

func TestAddDomainDuplicateHostname(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddDomain(context.Background(), "acc-1", "funnel-1", "shop.example.com")
	require.NoError(t, err)

	_, err = svc.AddDomain(context.Background(), "acc-2", "funnel-2", "shop.example.com")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusConflict, be.Status())
}

func TestMarkVerified(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.AddDomain(context.Background(), "acc-1", "funnel-1", "shop.example.com")
	require.NoError(t, err)

	d, err := svc.MarkVerified(context.Background(), "acc-1", "shop.example.com")
	require.NoError(t, err)
	require.Equal(t, "shop.example.com", d.Hostname)

	var got Domain
	require.NoError(t, db.Where("hostname = ?", "shop.example.com").First(&got).Error)
	require.True(t, got.Verified)
	require.NotNil(t, got.VerifiedAt)
	require.Equal(t, Active, got.CertificateStatus)

	// second call is a no-op on an already verified domain
	again, err := svc.MarkVerified(context.Background(), "acc-1", "shop.example.com")
	require.NoError(t, err)
	require.True(t, again.Verified)
}

func TestMarkVerifiedNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.MarkVerified(context.Background(), "acc-1", "missing.example.com")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestRemoveDomain(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddDomain(context.Background(), "acc-1", "funnel-1", "shop.example.com")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveDomain(context.Background(), "acc-1", "shop.example.com"))

	err = svc.RemoveDomain(context.Background(), "acc-1", "shop.example.com")
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Status())
}

func TestListDomains(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddDomain(context.Background(), "acc-1", "funnel-1", "a.example.com")
	require.NoError(t, err)
	_, err = svc.AddDomain(context.Background(), "acc-1", "funnel-1", "b.example.com")
	require.NoError(t, err)
	_, err = svc.AddDomain(context.Background(), "acc-2", "funnel-2", "c.example.com")
	require.NoError(t, err)

	domains, err := svc.ListDomains(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, domains, 2)
}
