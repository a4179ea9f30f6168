// Package delivery wires the command line to the processing packages. Every
// entry point resolves its paths through properties, logs under a run id
// and reports the outcome to Discord.
package delivery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Aaayue/SAMPLE-EXTRACTOR/internal/notification"
)

// ErrAllFailed is returned when every item of a batch failed.
var ErrAllFailed = errors.New("every item failed")

// maxListed caps the failures quoted in a notification.
const maxListed = 10

type run struct {
	ID      string
	Command string
	Log     *logrus.Entry
}

func newRun(command string) *run {
	id := uuid.NewString()
	return &run{
		ID:      id,
		Command: command,
		Log:     logrus.WithFields(logrus.Fields{"run": id, "command": command}),
	}
}

// fail reports a run that could not start or stopped on a fatal error.
func (r *run) fail(err error) error {
	r.Log.WithError(err).Error("run failed")
	notify(notification.SendDiscordErrorNotification(r.ID, fmt.Sprintf("SAMPLE-EXTRACTOR %s\n\n%s", r.Command, err)))
	return err
}

// finish reports a batch of total items of which failures failed. Some
// failures give a warning, all of them an error.
func (r *run) finish(total int, failures []error, summary string) error {
	for _, f := range failures {
		r.Log.WithError(f).Warn("item failed")
	}
	switch {
	case len(failures) == 0:
		r.Log.Info(summary)
		notify(notification.SendDiscordSuccessNotification(r.ID, fmt.Sprintf("SAMPLE-EXTRACTOR %s\n\n%s", r.Command, summary)))
		return nil
	case len(failures) < total:
		r.warn(summary, fmt.Sprintf("%d of %d items failed", len(failures), total), failures)
		return nil
	default:
		err := fmt.Errorf("%s: %w: %w", r.Command, ErrAllFailed, errors.Join(failures...))
		r.Log.Error(err)
		notify(notification.SendDiscordErrorNotification(r.ID, fmt.Sprintf("SAMPLE-EXTRACTOR %s\n\n%d of %d items failed:\n%s",
			r.Command, len(failures), total, listFailures(failures))))
		return err
	}
}

// warn reports a run that finished with partial failures.
func (r *run) warn(summary, headline string, failures []error) {
	r.Log.Warn(headline)
	notify(notification.SendDiscordWarnNotification(r.ID, fmt.Sprintf("SAMPLE-EXTRACTOR %s\n\n%s\n\n%s:\n%s",
		r.Command, summary, headline, listFailures(failures))))
}

func listFailures(failures []error) string {
	lines := make([]string, 0, min(len(failures), maxListed)+1)
	for i, f := range failures {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("... and %d more", len(failures)-maxListed))
			break
		}
		lines = append(lines, "- "+f.Error())
	}
	return strings.Join(lines, "\n")
}

func notify(err error) {
	if err != nil {
		logrus.WithError(err).Warn("failed to send notification")
	}
}
