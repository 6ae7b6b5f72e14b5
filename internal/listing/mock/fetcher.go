package mock

import (
	"context"

	"github.com/hdnguyen/secondhand-scout/internal/listing"
)

// Fetcher replays scripted pages in call order. Calls past the end of
// Pages return an empty body, which the scanner reads as "listing
// exhausted". Errs injects a failure for a given call index.
type Fetcher struct {
	Pages   []string
	Errs    map[int]error
	Offsets []int
}

var _ listing.Fetcher = (*Fetcher)(nil)

func (f *Fetcher) Fetch(ctx context.Context, offset int) (string, error) {
	_ = ctx
	call := len(f.Offsets)
	f.Offsets = append(f.Offsets, offset)
	if err, ok := f.Errs[call]; ok {
		return "", err
	}
	if call < len(f.Pages) {
		return f.Pages[call], nil
	}
	return "", nil
}
