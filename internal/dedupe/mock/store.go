package mock

import (
	"context"

	"github.com/hdnguyen/secondhand-scout/internal/core"
	"github.com/hdnguyen/secondhand-scout/internal/dedupe"
)

// Store keeps records in memory. Seed pre-populates the seen set before
// the first Load; LoadErr and AppendErr inject failures.
type Store struct {
	Seed      []core.Item
	Appended  []core.Item
	LoadErr   error
	AppendErr error
	Closed    bool
}

var _ dedupe.Store = (*Store)(nil)

func (s *Store) Load(ctx context.Context) (map[string]struct{}, []core.Item, error) {
	_ = ctx
	if s.LoadErr != nil {
		return nil, nil, s.LoadErr
	}
	seen := make(map[string]struct{}, len(s.Seed)+len(s.Appended))
	items := make([]core.Item, 0, len(s.Seed)+len(s.Appended))
	for _, item := range s.Seed {
		if _, ok := seen[item.URL]; ok {
			continue
		}
		seen[item.URL] = struct{}{}
		items = append(items, item)
	}
	for _, item := range s.Appended {
		if _, ok := seen[item.URL]; ok {
			continue
		}
		seen[item.URL] = struct{}{}
		items = append(items, item)
	}
	return seen, items, nil
}

func (s *Store) Append(ctx context.Context, item core.Item) error {
	_ = ctx
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.Appended = append(s.Appended, item)
	return nil
}

func (s *Store) Close() error {
	s.Closed = true
	return nil
}
