package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"funnelforge/pkg/taskname"
	"funnelforge/services/commission"
)

type Service struct {
	db     *gorm.DB
	node   *snowflake.Node
	asynq  *asynq.Client
	engine *commission.Service
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Node   *snowflake.Node
	Asynq  *asynq.Client `optional:"true"`
	Engine *commission.Service
}

func NewService(p Params) *Service {
	return &Service{
		db:     p.DB,
		node:   p.Node,
		asynq:  p.Asynq,
		engine: p.Engine,
	}
}

// EnqueueReleaseRun creates a Job record and hands the run to the worker
// queue. The scheduler calls it once per day; operators can also trigger the
// run directly over HTTP, which bypasses this queue entirely.
func (s *Service) EnqueueReleaseRun(ctx context.Context) error {
	job := Job{
		ID:     s.node.Generate().String(),
		Name:   JobCommissionRelease,
		Status: "pending",
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string]string{
		"job_id": job.ID,
	})
	t := asynq.NewTask(taskname.CommissionReleaseRun, payload)

	if _, err := s.asynq.Enqueue(t, asynq.Queue("critical")); err != nil {
		s.db.Model(&Job{}).Where("id = ?", job.ID).Update("status", "failed")
		return err
	}

	zap.L().Info("enqueued commission release run",
		zap.String("job_id", job.ID),
	)
	return nil
}

// HandleReleaseTask is the asynq worker entrypoint. It decodes the payload
// and delegates to RunReleaseJob.
func (s *Service) HandleReleaseTask(ctx context.Context, t *asynq.Task) error {
	var payload struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		zap.L().Error("invalid release run payload", zap.Error(err))
		return err
	}

	return s.RunReleaseJob(ctx, payload.JobID)
}

// RunReleaseJob executes one release run under the given Job record,
// creating one when the run was not enqueued through EnqueueReleaseRun.
// A fatal engine error marks the job failed and propagates so asynq retries.
func (s *Service) RunReleaseJob(ctx context.Context, jobID string) error {
	now := time.Now()

	if jobID == "" {
		job := Job{
			ID:        s.node.Generate().String(),
			Name:      JobCommissionRelease,
			Status:    "running",
			StartedAt: &now,
		}
		if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
			return err
		}
		jobID = job.ID
	} else {
		if err := s.db.WithContext(ctx).Model(&Job{}).Where("id = ?", jobID).Updates(map[string]interface{}{
			"status":     "running",
			"started_at": now,
		}).Error; err != nil {
			return err
		}
	}

	summary, err := s.engine.Run(ctx)
	if err != nil {
		s.db.Model(&Job{}).Where("id = ?", jobID).Updates(map[string]interface{}{
			"status":       "failed",
			"error_msg":    err.Error(),
			"completed_at": time.Now(),
		})
		return err
	}

	// partial failure still completes the job; the summary in metadata
	// carries the failed items and the next run retries them
	metadata, _ := json.Marshal(summary)
	s.db.Model(&Job{}).Where("id = ?", jobID).Updates(map[string]interface{}{
		"status":       "success",
		"completed_at": time.Now(),
		"metadata":     datatypes.JSON(metadata),
	})

	zap.L().Info("commission release job finished",
		zap.String("job_id", jobID),
		zap.Int("released", summary.TotalReleased),
		zap.Int("failed", summary.TotalFailed),
	)
	return nil
}
