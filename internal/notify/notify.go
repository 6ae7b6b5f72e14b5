package notify

import (
	"context"
	"errors"

	"github.com/hdnguyen/secondhand-scout/internal/core"
)

// Alert is one new-item notification.
type Alert struct {
	Item  core.Item
	Score core.ScoreResult
}

// Notifier delivers one alert. Callers treat delivery errors as non-fatal:
// an item is durably recorded whether or not its alert went out.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// Multi fans one alert out to every configured transport and joins any
// delivery errors. One transport failing does not stop the others.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, alert Alert) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
