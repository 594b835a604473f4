package avatar

import (
	"context"

	"github.com/sirupsen/logrus"
)

// WarningLogger reports resolver warnings to logrus
type WarningLogger struct {
	Log *logrus.Entry
}

// OnWarning satisfies the resolver's warning tracker
func (w WarningLogger) OnWarning(ctx context.Context, issue Issue) {
	if w.Log == nil {
		return
	}
	entry := w.Log.WithFields(logrus.Fields{
		"code":    issue.IssueCode(),
		"context": issue.IssueContext(),
	})
	if issue.IsError() {
		entry.Error(issue.Issue())
		return
	}
	entry.Warn(issue.Issue())
}
