// Package job contains the periodic maintenance tasks scheduled by the web
// server's cron runner.
package job

import (
	"ragtime/database"
	"ragtime/logger"
)

// CheckpointJob flushes the sqlite write-ahead log back into the main
// database file.
type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

// Here Run is an interface method of the Job interface
func (j *CheckpointJob) Run() {
	if err := database.Checkpoint(); err != nil {
		logger.Warning("checkpoint job err:", err)
	}
}
