package job

import (
	"os"

	"ragtime/logger"
)

// ClearLogsJob rotates the server log: the current file is appended to a
// .prev sibling and truncated.
type ClearLogsJob struct{}

func NewClearLogsJob() *ClearLogsJob {
	return new(ClearLogsJob)
}

// Here Run is an interface method of the Job interface
func (j *ClearLogsJob) Run() {
	logPath := logger.GetLogPath()
	prevPath := logPath + ".prev"

	if err := os.Truncate(prevPath, 0); err != nil && !os.IsNotExist(err) {
		logger.Warning("clear logs job err:", err)
	}

	prev, err := os.OpenFile(prevPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		logger.Warning("clear logs job err:", err)
		return
	}
	defer prev.Close()

	current, err := os.ReadFile(logPath)
	if err != nil {
		logger.Warning("clear logs job err:", err)
		return
	}
	if _, err = prev.Write(current); err != nil {
		logger.Warning("clear logs job err:", err)
	}
	if err = os.Truncate(logPath, 0); err != nil {
		logger.Warning("clear logs job err:", err)
	}
}
