package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// parseDurationExtended parses Go-style duration strings and additionally
// accepts d (days, 24h) and w (weeks, 7d) units.
//
// Examples: "90s", "36h", "3d", "1w2d", "1.5d".
func parseDurationExtended(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if !strings.ContainsAny(raw, "dw") {
		return time.ParseDuration(raw)
	}
	expanded, err := rewriteDaysWeeks(raw)
	if err != nil {
		return 0, err
	}
	return time.ParseDuration(expanded)
}

// rewriteDaysWeeks rewrites every d/w component into hours and leaves all
// other components for time.ParseDuration to validate.
func rewriteDaysWeeks(raw string) (string, error) {
	s := raw
	var b strings.Builder
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		b.WriteByte(s[0])
		s = s[1:]
	}
	if s == "" {
		return "", fmt.Errorf("invalid duration %q", raw)
	}

	for len(s) > 0 {
		numStr, rest, err := scanNumber(s, raw)
		if err != nil {
			return "", err
		}
		unit, rest, err := scanUnit(rest, raw)
		if err != nil {
			return "", err
		}
		s = rest

		switch unit {
		case "d", "w":
			num, err := strconv.ParseFloat(numStr, 64)
			if err != nil {
				return "", fmt.Errorf("invalid duration %q", raw)
			}
			hours := num * 24
			if unit == "w" {
				hours *= 7
			}
			b.WriteString(strconv.FormatFloat(hours, 'f', -1, 64))
			b.WriteByte('h')
		default:
			b.WriteString(numStr)
			b.WriteString(unit)
		}
	}
	return b.String(), nil
}

func scanNumber(s, raw string) (string, string, error) {
	i := 0
	dotSeen := false
	for i < len(s) {
		c := s[i]
		if c >= '0' && c <= '9' {
			i++
			continue
		}
		if c == '.' && !dotSeen {
			dotSeen = true
			i++
			continue
		}
		break
	}
	if i == 0 {
		return "", "", fmt.Errorf("invalid duration %q", raw)
	}
	return s[:i], s[i:], nil
}

func scanUnit(s, raw string) (string, string, error) {
	j := 0
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if r == utf8.RuneError && size == 1 {
			return "", "", fmt.Errorf("invalid duration %q", raw)
		}
		if r == 'µ' || unicode.IsLetter(r) {
			j += size
			continue
		}
		break
	}
	if j == 0 {
		return "", "", fmt.Errorf("invalid duration %q", raw)
	}
	return s[:j], s[j:], nil
}
