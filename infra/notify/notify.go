// Package notify delivers run-completion notifications to downstream
// consumers such as the organizer dashboard.
package notify

import (
	"context"

	"github.com/symposia/revdist/infra/logger"
)

// LogNotifier writes run completions to the application log. It is the
// default when no broker is configured.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.New("notify")}
}

// RunCompleted logs the completed run.
func (n *LogNotifier) RunCompleted(_ context.Context, eventID, logID string) error {
	n.log.Infof("distribution completed for event %s (log %s)", eventID, logID)
	return nil
}
