package listing

import "context"

// Candidate is a raw extracted posting before link normalization and
// filtering. Link may be relative to the site origin.
type Candidate struct {
	Link  string
	Name  string
	Price string
}

// Fetcher retrieves one raw listing page at the given item offset.
// An empty body with a nil error means the listing has no more data;
// errors signal transport or status failures.
type Fetcher interface {
	Fetch(ctx context.Context, offset int) (string, error)
}

// Extractor pulls candidate postings out of a raw listing page, in
// document order.
type Extractor interface {
	Extract(raw string) ([]Candidate, error)
}
