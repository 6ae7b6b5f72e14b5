package mock

import (
	"context"

	"github.com/hdnguyen/secondhand-scout/internal/core"
	"github.com/hdnguyen/secondhand-scout/internal/scorer"
)

// Scorer returns scripted results keyed by item name. Items without an
// entry get Default. Scored records every call in order.
type Scorer struct {
	Results map[string]core.ScoreResult
	Default core.ScoreResult
	Scored  []string
}

var _ scorer.Scorer = (*Scorer)(nil)

func (s *Scorer) Score(ctx context.Context, name, price string) core.ScoreResult {
	_ = ctx
	_ = price
	s.Scored = append(s.Scored, name)
	if result, ok := s.Results[name]; ok {
		return result
	}
	return s.Default
}
