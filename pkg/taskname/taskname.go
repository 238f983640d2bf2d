package taskname

const (
	// Commission release engine
	CommissionReleaseRun = "commission:release:run"

	// Notification delivery
	NotificationCommissionReleased = "notification:commission:released"
)
