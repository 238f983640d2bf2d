package task

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"funnelforge/services/affiliate"
	"funnelforge/services/commission"
	"funnelforge/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestRunReleaseJobRecordsOutcome(t *testing.T) {
	db := testutil.NewTestDB(t,
		&affiliate.Account{},
		&affiliate.AffiliateLink{},
		&commission.Payment{},
		&commission.BalanceTransaction{},
		&Job{},
	)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	engine := commission.NewService(commission.ServiceParams{DB: db, Node: node})
	svc := NewService(Params{DB: db, Node: node, Engine: engine})

	require.NoError(t, svc.RunReleaseJob(context.Background(), ""))

	var job Job
	require.NoError(t, db.Where("name = ?", JobCommissionRelease).First(&job).Error)
	require.Equal(t, "success", job.Status)
	require.NotNil(t, job.StartedAt)
	require.NotNil(t, job.CompletedAt)

	var summary commission.RunSummary
	require.NoError(t, json.Unmarshal(job.Metadata, &summary))
	require.True(t, summary.Success)
	require.Zero(t, summary.TotalEligible)
}

func TestNextRunTime(t *testing.T) {
	loc := time.UTC

	beforeWindow := time.Date(2026, 3, 10, 0, 30, 0, 0, loc)
	next := nextRunTime(beforeWindow, 1, 0)
	require.Equal(t, time.Date(2026, 3, 10, 1, 0, 0, 0, loc), next)

	afterWindow := time.Date(2026, 3, 10, 9, 15, 0, 0, loc)
	next = nextRunTime(afterWindow, 1, 0)
	require.Equal(t, time.Date(2026, 3, 11, 1, 0, 0, 0, loc), next)
}
