// Package logging provides the structured event logger shared by every
// engine in the simulator core.
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once   sync.Once
	logger *logrus.Logger
)

// Logger returns the process-wide logrus logger, creating it on first use.
func Logger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stdout)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: false})
		logger.SetLevel(logrus.InfoLevel)
	})
	return logger
}

// SetLevel adjusts the shared logger's verbosity from a config-supplied
// token ("debug", "info", "warn", "error"); unknown tokens are ignored.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	Logger().SetLevel(lvl)
}

// Event is a convenience alias for the logrus.Fields used to attach
// structured context to a log line instead of interpolating it into the
// message string.
type Event = logrus.Fields
