package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

func newLogger(out io.Writer, level, format string, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else if err != nil {
		log.SetLevel(logrus.WarnLevel)
	} else {
		log.SetLevel(lvl)
	}
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using warn")
	}
	return log
}
