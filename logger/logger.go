package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// L returns the global logger, or a no-op logger when Init has not been
// called (library use, tests).
func L() *zap.SugaredLogger {
	if Log == nil {
		return zap.NewNop().Sugar()
	}
	return Log
}
