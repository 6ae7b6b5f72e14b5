package scan

import (
	"fmt"
	"net/url"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// candidateFilter decides which extracted links are actual postings. The
// rule is an expr expression evaluated against the normalized link and the
// candidate's extracted fields; it must yield a boolean.
type candidateFilter struct {
	program *vm.Program
}

func newCandidateFilter(rule string) (*candidateFilter, error) {
	program, err := expr.Compile(rule, expr.Env(filterEnv("", nil, "", "")), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter rule %q: %w", rule, err)
	}
	return &candidateFilter{program: program}, nil
}

// Match reports whether the candidate passes the rule. u is the normalized
// absolute link.
func (f *candidateFilter) Match(u *url.URL, name, price string) (bool, error) {
	out, err := expr.Run(f.program, filterEnv(u.String(), u, name, price))
	if err != nil {
		return false, fmt.Errorf("evaluate filter rule: %w", err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter rule returned %T, want bool", out)
	}
	return matched, nil
}

func filterEnv(raw string, u *url.URL, name, price string) map[string]any {
	host, path := "", ""
	if u != nil {
		host = u.Host
		path = u.Path
	}
	return map[string]any{
		"url":   raw,
		"host":  host,
		"path":  path,
		"name":  name,
		"price": price,
	}
}
