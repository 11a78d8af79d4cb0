// Package notify delivers watch-mode match notifications.
package notify

import (
	"fmt"
	"io"
)

// Notifier delivers one notification text to a sink.
type Notifier interface {
	Notify(text string) error
}

// Console writes notifications as lines to Out.
type Console struct {
	Out io.Writer
}

func (c Console) Notify(text string) error {
	_, err := fmt.Fprintln(c.Out, text)
	return err
}

// Multi fans a notification out to every sink. Delivery failures do not
// stop the fan-out; the first error is reported.
type Multi []Notifier

func (m Multi) Notify(text string) error {
	var firstErr error
	for _, notifier := range m {
		if err := notifier.Notify(text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
