package tasks

import (
	"context"
)

// ScheduledTaskFunc is the signature shared by all scheduled tasks. The
// context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks builds the registry of scheduled tasks. The map keys
// match the task names in the scheduler section of the configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks["task_scan"] = newTaskScanTask(deps)
	tasks["birthday_scan"] = newBirthdayScanTask(deps)
	tasks["morning_digest"] = newMorningDigestTask(deps)
	tasks["digest_cleanup"] = newDigestCleanupTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
