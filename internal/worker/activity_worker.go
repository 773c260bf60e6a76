package worker

import (
	"github.com/spec-kit/support-desk/internal/service"
)

// StartActivityWorker registers the activity log subscribers.
func StartActivityWorker(activityLog *service.ActivityLog) {
	if activityLog == nil {
		return
	}
	activityLog.RegisterHandlers()
}
