package diag

import (
	"github.com/sirupsen/logrus"
)

// NewStageLogger returns a logrus entry pre-tagged with the pipeline stage
// name and the compile session id, following the field-tagging convention
// go-corset uses for its per-subcommand loggers.
func NewStageLogger(stage, sessionID string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"stage":   stage,
		"session": sessionID,
	})
}

// SetVerbose raises the global logrus level to Debug when cfg.Verbose (or
// the CLI's --verbose flag) is set; otherwise it stays at Info.
func SetVerbose(verbose bool) {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
