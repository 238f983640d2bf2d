package notification

import (
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(
		fx.Annotate(NewQueueNotifier, fx.As(new(Notifier))),
	),
)
