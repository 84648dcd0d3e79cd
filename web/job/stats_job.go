package job

import (
	"ragtime/logger"
	"ragtime/web/service"
)

// StatsJob periodically logs notification delivery counters so operators
// can spot a broken mail or webhook setup from the log stream.
type StatsJob struct {
	notificationService service.NotificationService
}

func NewStatsJob() *StatsJob {
	return new(StatsJob)
}

// Here Run is an interface method of the Job interface
func (j *StatsJob) Run() {
	sent, failed := j.notificationService.Stats()
	if failed > 0 {
		logger.Warningf("notifications: %d sent, %d failed", sent, failed)
	} else {
		logger.Debugf("notifications: %d sent", sent)
	}
}
