package neo4j

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/neointrospect"
)

// driverLogger forwards driver log lines to zap.
type driverLogger struct {
	logger *zap.Logger
}

// newDriverLogger returns a driver logger filtered at level, or nil when
// driver logging is off.
func newDriverLogger(logger *zap.Logger, level string) log.Logger {
	zapLevel, ok := driverLevel(level)
	if !ok {
		return nil
	}

	return &driverLogger{
		logger: logger.Named("neo4j-driver").WithOptions(zap.IncreaseLevel(zapLevel)),
	}
}

// driverLevel maps a configured log level to zap. The empty level and "off"
// disable driver logging.
func driverLevel(level string) (zapcore.Level, bool) {
	switch level {
	case neointrospect.LogLevelDebug:
		return zapcore.DebugLevel, true
	case neointrospect.LogLevelInfo:
		return zapcore.InfoLevel, true
	case neointrospect.LogLevelWarn:
		return zapcore.WarnLevel, true
	case neointrospect.LogLevelError:
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InvalidLevel, false
	}
}

func (l *driverLogger) Error(name, id string, err error) {
	l.logger.Error("driver error", zap.String("component", name), zap.String("id", id), zap.Error(err))
}

func (l *driverLogger) Warnf(name, id, msg string, args ...any) {
	l.logger.Warn(fmt.Sprintf(msg, args...), zap.String("component", name), zap.String("id", id))
}

func (l *driverLogger) Infof(name, id, msg string, args ...any) {
	l.logger.Info(fmt.Sprintf(msg, args...), zap.String("component", name), zap.String("id", id))
}

func (l *driverLogger) Debugf(name, id, msg string, args ...any) {
	l.logger.Debug(fmt.Sprintf(msg, args...), zap.String("component", name), zap.String("id", id))
}

var _ log.Logger = (*driverLogger)(nil)
