package services

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// moneyRegexp captures one currency number with an optional K/M suffix: "$1,234.56", "$10K"
	moneyRegexp = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)([kKmM]\b)?`)
	// moneyRangeRegexp captures "$28.00 - $56.00" and "$1K-$5K"
	moneyRangeRegexp = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)([kKmM]\b)?\s*[-–]\s*\$?\s*(\d[\d,]*(?:\.\d+)?)([kKmM]\b)?`)
	// foreignCurrencyRegexp flags amounts that are not USD
	foreignCurrencyRegexp = regexp.MustCompile(`(?i)\b(?:TL|TRY|EUR|GBP|INR|JPY|PKR)\b|[€£₺₹¥]`)

	lessThanRegexp   = regexp.MustCompile(`(?i)less\s+than\s+(\d[\d,]*)`)
	countRangeRegexp = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*(?:to|-|–)\s*(\d[\d,]*(?:\.\d+)?)`)
	plusRegexp       = regexp.MustCompile(`(\d[\d,]*)\s*\+`)
	integerRegexp    = regexp.MustCompile(`\d[\d,]*`)

	percentRegexp = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// ParseMoney extracts an amount from a currency string. A "min - max" range
// yields the mean of both ends. ok is false when no number is present; zero
// is a valid amount and must not be confused with a parse failure.
//
//	"$28.00 - $56.00" → 42
//	"$1,200.50"       → 1200.5
//	"$10K+"           → 10000
func ParseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if m := moneyRangeRegexp.FindStringSubmatch(s); m != nil {
		lo, okLo := moneyValue(m[1], m[2])
		hi, okHi := moneyValue(m[3], m[4])
		if okLo && okHi {
			return (lo + hi) / 2, true
		}
	}

	m := moneyRegexp.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return moneyValue(m[1], m[2])
}

// ParseMoneyUSD is ParseMoney for USD-only contexts: strings carrying a
// foreign currency marker are rejected rather than read as dollars.
func ParseMoneyUSD(s string) (float64, bool) {
	if foreignCurrencyRegexp.MatchString(s) {
		return 0, false
	}
	return ParseMoney(s)
}

// IsForeignCurrency reports whether s names a non-USD currency.
func IsForeignCurrency(s string) bool {
	return foreignCurrencyRegexp.MatchString(s)
}

func moneyValue(num, suffix string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(suffix) {
	case "k":
		v *= 1_000
	case "m":
		v *= 1_000_000
	}
	return v, true
}

// ParseCount reads a count out of free text such as a proposals field.
//
//	"Less than 5" → 2.5 (half the bound)
//	"15 to 20"    → 17.5
//	"50+"         → 50
//	"1,234"       → 1234
func ParseCount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if m := lessThanRegexp.FindStringSubmatch(s); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			return n / 2, true
		}
	}
	if m := countRangeRegexp.FindStringSubmatch(s); m != nil {
		lo, okLo := parseNumber(m[1])
		hi, okHi := parseNumber(m[2])
		if okLo && okHi {
			return (lo + hi) / 2, true
		}
	}
	if m := plusRegexp.FindStringSubmatch(s); m != nil {
		return parseNumber(m[1])
	}
	if m := integerRegexp.FindString(s); m != "" {
		return parseNumber(m)
	}
	return 0, false
}

// ParsePercentage reads "85", "85%" or "85.5 %". Values outside [0,100]
// are data errors and are rejected, not clamped.
func ParsePercentage(s string) (float64, bool) {
	m := percentRegexp.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}

// ParseRating validates a 0–5 client rating.
func ParseRating(r *float64) (float64, bool) {
	if r == nil || *r < 0 || *r > 5 {
		return 0, false
	}
	return *r, true
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseSkills normalizes every shape the skills column arrives in: a native
// array, a JSON-encoded array (or category→array object), or a comma
// separated string. The result is trimmed, non-empty and deduplicated
// case-insensitively in first-seen order; it is never nil.
func ParseSkills(raw any) []string {
	var out []string
	collectSkills(raw, &out, true)
	return dedupeSkills(out)
}

func collectSkills(raw any, out *[]string, decode bool) {
	switch v := raw.(type) {
	case nil:
	case []string:
		*out = append(*out, v...)
	case []any:
		for _, item := range v {
			switch s := item.(type) {
			case string:
				*out = append(*out, s)
			case map[string]any:
				if name, ok := s["name"].(string); ok {
					*out = append(*out, name)
				}
			}
		}
	case map[string]any:
		for _, key := range sortedKeys(v) {
			if arr, ok := v[key].([]any); ok {
				collectSkills(arr, out, false)
			}
		}
	case json.RawMessage:
		collectSkills(string(v), out, decode)
	case []byte:
		collectSkills(string(v), out, decode)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return
		}
		if decode && (s[0] == '[' || s[0] == '{' || s[0] == '"') {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				collectSkills(decoded, out, false)
				return
			}
		}
		for _, part := range strings.Split(s, ",") {
			*out = append(*out, part)
		}
	}
}

func dedupeSkills(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.Trim(strings.TrimSpace(s), "\"'[]{}")
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp reads an ISO 8601 creation timestamp. Strings without a
// zone are read in the process's local zone.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
