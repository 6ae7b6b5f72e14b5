package scan

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hdnguyen/secondhand-scout/internal/core"
	"github.com/hdnguyen/secondhand-scout/internal/dedupe"
	"github.com/hdnguyen/secondhand-scout/internal/listing"
	"github.com/hdnguyen/secondhand-scout/internal/notify"
	"github.com/hdnguyen/secondhand-scout/internal/pace"
	"github.com/hdnguyen/secondhand-scout/internal/scorer"
)

// Config carries the scan parameters the orchestrator needs. BaseURL is
// the site origin used to resolve relative links.
type Config struct {
	BaseURL    string
	FilterRule string
	Threshold  int
	PageSize   int
	MaxPages   int
}

// Scanner walks the listing page by page, detects postings not present in
// the seen store, scores and notifies them, and appends every new posting
// to the store. One Scanner performs one or more sequential runs; it is
// not safe for concurrent use.
type Scanner struct {
	cfg       Config
	base      *url.URL
	filter    *candidateFilter
	fetcher   listing.Fetcher
	extractor listing.Extractor
	store     dedupe.Store
	scorer    scorer.Scorer
	notifier  notify.Notifier
	pacer     *pace.Pacer
	logger    *slog.Logger
	now       func() time.Time
}

// New validates the wiring and returns a ready scanner. scorer may be nil
// when scoring is disabled; notifier may be nil when no channel is
// configured.
func New(cfg Config, fetcher listing.Fetcher, extractor listing.Extractor, store dedupe.Store, sc scorer.Scorer, notifier notify.Notifier, pacer *pace.Pacer, logger *slog.Logger) (*Scanner, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) URL", cfg.BaseURL)
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive")
	}
	if cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("max pages must be positive")
	}
	if cfg.Threshold < 0 || cfg.Threshold > 10 {
		return nil, fmt.Errorf("threshold %d must be in 0..10", cfg.Threshold)
	}
	rule := cfg.FilterRule
	if rule == "" {
		rule = "true"
	}
	filter, err := newCandidateFilter(rule)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		cfg:       cfg,
		base:      base,
		filter:    filter,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		scorer:    sc,
		notifier:  notifier,
		pacer:     pacer,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Run performs one scan. A fetch or page extraction failure ends the run
// early with OutcomePartial but is not an error; items recorded before the
// failure stay recorded. Only store failures (and context cancellation)
// return an error.
func (s *Scanner) Run(ctx context.Context) (core.ScanSummary, error) {
	tracer := otel.Tracer("secondhand-scout/scan")
	ctx, span := tracer.Start(ctx, "scan.run", trace.WithAttributes(
		attribute.String("listing.base_url", s.cfg.BaseURL),
		attribute.Int("listing.max_pages", s.cfg.MaxPages),
	))
	defer span.End()

	logger := core.LoggerFromContext(ctx).With("component", "scan")
	ctx = core.WithLogger(ctx, logger)

	summary := core.ScanSummary{Outcome: core.OutcomeComplete}

	seen, _, err := s.store.Load(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "load seen store")
		return summary, fmt.Errorf("load seen store: %w", err)
	}
	logger.Info("scan starting", "known_items", len(seen))

	for page := 0; page < s.cfg.MaxPages; page++ {
		offset := page * s.cfg.PageSize

		raw, err := s.fetcher.Fetch(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			logger.Warn("page fetch failed, ending run early", "offset", offset, "error", err)
			summary.Outcome = core.OutcomePartial
			break
		}
		if strings.TrimSpace(raw) == "" {
			logger.Debug("listing exhausted", "offset", offset)
			break
		}

		candidates, err := s.extractor.Extract(raw)
		if err != nil {
			logger.Warn("page extraction failed, ending run early", "offset", offset, "error", err)
			summary.Outcome = core.OutcomePartial
			break
		}
		summary.PagesScanned++
		if len(candidates) == 0 {
			logger.Debug("no candidates on page", "offset", offset)
			break
		}

		done, err := s.processPage(ctx, candidates, seen, &summary)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return summary, err
		}
		if done {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("scan.items_found", summary.ItemsFound),
		attribute.Int("scan.items_notified", summary.ItemsNotified),
		attribute.Int("scan.pages_scanned", summary.PagesScanned),
		attribute.String("scan.outcome", string(summary.Outcome)),
	)
	logger.Info("scan complete",
		"items_found", summary.ItemsFound,
		"items_notified", summary.ItemsNotified,
		"pages_scanned", summary.PagesScanned,
		"outcome", summary.Outcome,
	)
	return summary, nil
}

// processPage handles the candidates of one fetched page. It returns
// done=true when the run should stop without scanning further pages.
func (s *Scanner) processPage(ctx context.Context, candidates []listing.Candidate, seen map[string]struct{}, summary *core.ScanSummary) (bool, error) {
	logger := core.LoggerFromContext(ctx)

	for _, cand := range candidates {
		u, err := s.normalizeLink(cand.Link)
		if err != nil {
			logger.Warn("skipping candidate with bad link", "link", cand.Link, "error", err)
			continue
		}

		matched, err := s.filter.Match(u, cand.Name, cand.Price)
		if err != nil {
			logger.Warn("skipping candidate, filter failed", "link", u.String(), "error", err)
			continue
		}
		if !matched {
			continue
		}

		key := u.String()
		if _, ok := seen[key]; ok {
			continue
		}

		if err := s.pacer.Wait(ctx); err != nil {
			summary.Outcome = core.OutcomePartial
			return true, err
		}

		var result core.ScoreResult
		if s.scorer != nil {
			result = s.scorer.Score(ctx, cand.Name, cand.Price)
		}

		item := core.Item{
			URL:        key,
			Name:       cand.Name,
			Price:      cand.Price,
			ObservedAt: s.now().UTC(),
		}

		notified := false
		if s.notifier != nil && result.Score >= s.cfg.Threshold {
			if err := s.notifier.Notify(ctx, notify.Alert{Item: item, Score: result}); err != nil {
				logger.Warn("notification failed", "item", item.Name, "error", err)
			} else {
				notified = true
			}
		}

		// The append must happen even when notification failed; a posting
		// is alerted at most once, on the run that first observes it.
		if err := s.store.Append(ctx, item); err != nil {
			return true, fmt.Errorf("append item record: %w", err)
		}
		seen[key] = struct{}{}

		summary.ItemsFound++
		if notified {
			summary.ItemsNotified++
		}
		logger.Info("new posting",
			"name", item.Name,
			"price", item.Price,
			"url", item.URL,
			"score", result.Score,
			"notified", notified,
		)
	}
	return false, nil
}

// normalizeLink resolves a possibly-relative link against the site origin
// and strips the fragment so the same posting always yields the same key.
func (s *Scanner) normalizeLink(link string) (*url.URL, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, fmt.Errorf("empty link")
	}
	ref, err := url.Parse(link)
	if err != nil {
		return nil, err
	}
	u := s.base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Fragment = ""
	return u, nil
}
