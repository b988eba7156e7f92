package app

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger writes to a rotated file; the terminal belongs to the TUI.
// The returned closer flushes and closes the log file.
func newLogger(file, level string) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	out := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, //days
	}
	log.SetOutput(out)
	return log, out, nil
}
