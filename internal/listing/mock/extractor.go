package mock

import (
	"fmt"

	"github.com/hdnguyen/secondhand-scout/internal/listing"
)

// Extractor maps raw page bodies to scripted candidate slices. Pages with
// no entry yield an extraction error, as a real parser would on markup it
// cannot make sense of.
type Extractor struct {
	Candidates map[string][]listing.Candidate
}

var _ listing.Extractor = (*Extractor)(nil)

func (e *Extractor) Extract(raw string) ([]listing.Candidate, error) {
	candidates, ok := e.Candidates[raw]
	if !ok {
		return nil, fmt.Errorf("unexpected page body %q", raw)
	}
	return candidates, nil
}
