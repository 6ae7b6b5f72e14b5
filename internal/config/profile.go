package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the optional YAML site profile. It describes the shape of the
// listing site (selectors, link filter rule, page geometry) and the scoring
// prompts so a deployment can adjust them without a rebuild. Every field is
// optional; built-in defaults target the 2handland listing.
type Profile struct {
	Listing ListingProfile `yaml:"listing"`
	Filter  FilterProfile  `yaml:"filter"`
	Score   ScoreProfile   `yaml:"score"`
}

type ListingProfile struct {
	BaseURL          string    `yaml:"base_url"`
	Path             string    `yaml:"path"`
	PageSize         int       `yaml:"page_size"`
	MaxPages         int       `yaml:"max_pages"`
	PricePlaceholder string    `yaml:"price_placeholder"`
	Selectors        Selectors `yaml:"selectors"`
}

// Selectors are the CSS selectors used to pull candidates out of a raw
// listing page. Price is looked up on the item container's parent, which
// is where the target site keeps it.
type Selectors struct {
	Item  string `yaml:"item"`
	Link  string `yaml:"link"`
	Price string `yaml:"price"`
}

type FilterProfile struct {
	// Rule is an expr expression over {url, host, path, name, price}.
	// Candidates it rejects are skipped with no side effects.
	Rule string `yaml:"rule"`
}

type ScoreProfile struct {
	Threshold      *int   `yaml:"threshold"`
	Cooldown       string `yaml:"cooldown"`
	SystemTemplate string `yaml:"system_template"`
	PromptTemplate string `yaml:"prompt_template"`
}

// LoadProfile reads a profile from path. An empty path returns an empty
// profile (defaults apply); a named file that is missing is an error.
func LoadProfile(path string) (Profile, error) {
	if path == "" {
		return Profile{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	return profile, nil
}
