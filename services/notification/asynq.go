package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"funnelforge/pkg/taskname"
)

// QueueNotifier enqueues delivery tasks instead of talking to a mail
// transport directly; the worker drains the queue. The engine stays
// decoupled from delivery latency and outages.
type QueueNotifier struct {
	client *asynq.Client
}

func NewQueueNotifier(client *asynq.Client) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) SendCommissionReleased(ctx context.Context, msg CommissionReleased) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal commission released payload: %w", err)
	}

	task := asynq.NewTask(taskname.NotificationCommissionReleased, payload)
	if _, err := n.client.EnqueueContext(ctx, task, asynq.Queue("low")); err != nil {
		return fmt.Errorf("enqueue commission released notification: %w", err)
	}

	return nil
}

// HandleCommissionReleasedTask is the worker-side consumer. The actual mail
// transport is an external collaborator; here the delivery is recorded in
// the log stream.
func HandleCommissionReleasedTask(ctx context.Context, t *asynq.Task) error {
	var msg CommissionReleased
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}

	zap.L().Info("delivering commission released notification",
		zap.String("recipient", msg.RecipientEmail),
		zap.String("amount", msg.CommissionAmount.String()),
		zap.Int("commissions", msg.NumberOfCommissions),
	)

	return nil
}
