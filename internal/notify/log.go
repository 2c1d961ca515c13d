package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Log writes notices as logrus warnings.
type Log struct {
	logger log.FieldLogger
}

func NewLog(logger log.FieldLogger) *Log {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Log{logger: logger}
}

func (l *Log) Error(ctx context.Context, message string) {
	l.logger.WithField("notice", message).Warn("Cart notice")
}
