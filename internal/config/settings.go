package config

import (
	"fmt"
	"net/url"
	"time"
)

// Settings is the fully-resolved, immutable configuration handed to the
// scan pipeline: env values with profile overrides applied and validated.
type Settings struct {
	BaseURL          string
	ListingPath      string
	PageSize         int
	MaxPages         int
	Selectors        Selectors
	PricePlaceholder string
	FilterRule       string

	ScoringEnabled bool
	Threshold      int
	Cooldown       time.Duration
	SystemTemplate string
	PromptTemplate string
}

// DefaultSelectors matches the 2handland listing markup.
var DefaultSelectors = Selectors{
	Item:  "div.product-detail-name",
	Link:  "a",
	Price: "span.product-detail-price",
}

// DefaultFilterRule accepts only links on the site's item path; everything
// else on a listing page (navigation, ads) is a non-item link.
const DefaultFilterRule = `path contains "san-pham"`

// DefaultPricePlaceholder stands in when a posting shows no price element.
const DefaultPricePlaceholder = "Liên hệ"

// Resolve merges the profile over env defaults and validates the result.
func Resolve(env EnvConfig, profile Profile) (Settings, error) {
	s := Settings{
		BaseURL:          env.Listing.BaseURL,
		ListingPath:      env.Listing.Path,
		PageSize:         env.Listing.PageSize,
		MaxPages:         env.Listing.MaxPages,
		Selectors:        DefaultSelectors,
		PricePlaceholder: DefaultPricePlaceholder,
		FilterRule:       DefaultFilterRule,
		Threshold:        env.Score.Threshold,
		Cooldown:         env.Score.Cooldown,
	}

	if profile.Listing.BaseURL != "" {
		s.BaseURL = profile.Listing.BaseURL
	}
	if profile.Listing.Path != "" {
		s.ListingPath = profile.Listing.Path
	}
	if profile.Listing.PageSize > 0 {
		s.PageSize = profile.Listing.PageSize
	}
	if profile.Listing.MaxPages > 0 {
		s.MaxPages = profile.Listing.MaxPages
	}
	if profile.Listing.PricePlaceholder != "" {
		s.PricePlaceholder = profile.Listing.PricePlaceholder
	}
	if profile.Listing.Selectors.Item != "" {
		s.Selectors.Item = profile.Listing.Selectors.Item
	}
	if profile.Listing.Selectors.Link != "" {
		s.Selectors.Link = profile.Listing.Selectors.Link
	}
	if profile.Listing.Selectors.Price != "" {
		s.Selectors.Price = profile.Listing.Selectors.Price
	}
	if profile.Filter.Rule != "" {
		s.FilterRule = profile.Filter.Rule
	}
	if profile.Score.Threshold != nil {
		s.Threshold = *profile.Score.Threshold
	}
	if profile.Score.Cooldown != "" {
		cooldown, err := parseDurationExtended(profile.Score.Cooldown)
		if err != nil {
			return Settings{}, fmt.Errorf("profile score.cooldown: %w", err)
		}
		s.Cooldown = cooldown
	}
	s.SystemTemplate = profile.Score.SystemTemplate
	s.PromptTemplate = profile.Score.PromptTemplate

	if env.Score.Enabled != nil {
		s.ScoringEnabled = *env.Score.Enabled
	} else {
		s.ScoringEnabled = env.OpenAI.APIKey != ""
	}
	if !s.ScoringEnabled {
		// Without a scorer every new item carries the zero score, so the
		// threshold must not suppress notifications.
		s.Threshold = 0
		s.Cooldown = 0
	}

	if err := s.validate(env); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate(env EnvConfig) error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("listing base url %q must be an absolute http(s) URL", s.BaseURL)
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("listing page size must be positive")
	}
	if s.MaxPages <= 0 {
		return fmt.Errorf("listing max pages must be positive")
	}
	if s.Threshold < 0 || s.Threshold > 10 {
		return fmt.Errorf("score threshold %d must be in 0..10", s.Threshold)
	}
	if s.Cooldown < 0 {
		return fmt.Errorf("score cooldown must be >= 0")
	}
	if s.ScoringEnabled && env.OpenAI.APIKey == "" {
		return fmt.Errorf("scoring is enabled but OPENAI_API_KEY is not set")
	}
	switch env.Store.Backend {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("store backend %q must be csv or sqlite", env.Store.Backend)
	}
	if env.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}
