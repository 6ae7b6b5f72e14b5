package dedupe

import (
	"context"

	"github.com/hdnguyen/secondhand-scout/internal/core"
)

// Store is the durable backing of the seen-set: an append-only log of every
// item ever recorded. Load rebuilds both the record sequence and the seen
// identifier set from the beginning of the log; a store that does not exist
// yet is empty, not an error. Append durably records exactly one item and
// is called once per fully-processed item, so a crash between items loses
// at most the in-flight one.
//
// Implementations are not safe for concurrent writers; the external
// scheduler runs at most one process at a time.
type Store interface {
	Load(ctx context.Context) (map[string]struct{}, []core.Item, error)
	Append(ctx context.Context, item core.Item) error
	Close() error
}
