package logger

import "github.com/sirupsen/logrus"

// RestyLogger adapts a sublogger to resty's logger interface. Resty's own
// chatter is demoted to debug.
type RestyLogger struct {
	log *logrus.Entry
}

// NewRestyLogger creates a resty logger tagged with tag.
func NewRestyLogger(tag string) *RestyLogger {
	return &RestyLogger{log: NewSublogger(tag)}
}

func (l *RestyLogger) Errorf(format string, v ...interface{}) {
	l.log.Warnf(format, v...)
}

func (l *RestyLogger) Warnf(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

func (l *RestyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}
