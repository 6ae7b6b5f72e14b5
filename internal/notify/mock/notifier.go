package mock

import (
	"context"

	"github.com/hdnguyen/secondhand-scout/internal/notify"
)

// Notifier records delivered alerts. Err makes every delivery fail.
type Notifier struct {
	Alerts []notify.Alert
	Err    error
}

var _ notify.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(ctx context.Context, alert notify.Alert) error {
	_ = ctx
	n.Alerts = append(n.Alerts, alert)
	return n.Err
}
