package client

import log "github.com/sirupsen/logrus"

// Notifier shows mutation progress to the user. Notifications carry an
// identity so a settled notification replaces its pending one in place
// instead of stacking next to it.
type Notifier interface {
	Loading(id string, message string)
	Success(id string, message string)
	Error(id string, message string)
}

// LogNotifier renders notifications to the log. Used by the CLI.
type LogNotifier struct{}

func (LogNotifier) Loading(id string, message string) {
	log.WithFields(log.Fields{"notification": id}).Info(message)
}

func (LogNotifier) Success(id string, message string) {
	log.WithFields(log.Fields{"notification": id}).Info(message)
}

func (LogNotifier) Error(id string, message string) {
	log.WithFields(log.Fields{"notification": id}).Error(message)
}
