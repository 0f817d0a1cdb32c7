// Package notify posts run summaries to chat channels.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/hamed0406/safewarmer/internal/sweep"
)

type Message struct {
	Title string
	Lines []string
}

func (m Message) Text() string { return strings.Join(m.Lines, "\n") }

type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// Multi delivers to every notifier and reports all failures.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Notify(ctx, msg))
	}
	return err
}

// SweepSummary describes a finished sweep against base.
func SweepSummary(base string, s sweep.Summary, runErr error) Message {
	title := "Cache warm-up finished"
	if runErr != nil {
		title = "Cache warm-up aborted"
	}
	lines := []string{
		"target: " + base,
		fmt.Sprintf("safes: %d, requests: %d, failed: %d", s.Safes, s.Requests, s.Failures),
		"elapsed: " + s.Elapsed.Round(time.Millisecond).String(),
	}
	if runErr != nil {
		lines = append(lines, "error: "+runErr.Error())
	}
	return Message{Title: title, Lines: lines}
}
