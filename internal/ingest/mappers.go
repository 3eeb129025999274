package ingest

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// excelEpochOffsetDays is the day count between the Excel serial epoch
// (1899-12-30) and the Unix epoch.
const excelEpochOffsetDays = 25569

var textNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// NormalizeText strips accents, lowercases and collapses separators so
// that "Peso Líquido (kg)" and "peso_liquido" compare equal.
func NormalizeText(s string) string {
	out, _, err := transform.String(textNormalizer, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)

	var b strings.Builder
	lastSpace := true
	for _, r := range out {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// HeaderMapper maps canonical fields onto the sheet's header row. Pattern
// lists are ordered and the first pattern that matches any header wins;
// this is deliberately not a best-match search.
type HeaderMapper struct {
	headers    []string
	normalized []string
}

func NewHeaderMapper(headers []string) *HeaderMapper {
	hm := &HeaderMapper{headers: headers}
	hm.normalized = make([]string, len(headers))
	for i, h := range headers {
		hm.normalized[i] = NormalizeText(h)
	}
	return hm
}

// matchPattern compares a normalized header against a pattern. Short
// patterns only match exactly, so tokens like "cd" do not swallow
// unrelated columns.
func matchPattern(header, pattern string) bool {
	if header == pattern {
		return true
	}
	if len(pattern) >= 4 {
		return strings.Contains(header, pattern)
	}
	return false
}

// Find returns the column index for the first matching pattern. For each
// pattern, exact matches take priority over substring matches.
func (hm *HeaderMapper) Find(patterns ...string) (int, bool) {
	for _, pattern := range patterns {
		for i, h := range hm.normalized {
			if h == pattern {
				return i, true
			}
		}
		for i, h := range hm.normalized {
			if matchPattern(h, pattern) {
				return i, true
			}
		}
	}
	return -1, false
}

// FindAll returns every column matched by the first pattern that matches
// anything, in sheet order. Used for the numbered equipment / operator /
// trailer column groups.
func (hm *HeaderMapper) FindAll(patterns ...string) []int {
	for _, pattern := range patterns {
		var idxs []int
		for i, h := range hm.normalized {
			if matchPattern(h, pattern) {
				idxs = append(idxs, i)
			}
		}
		if len(idxs) > 0 {
			return idxs
		}
	}
	return nil
}

// ParseNumber parses both plain and Brazilian-formatted numbers
// ("1234.56", "1.234,56"). Unparseable cells are 0, never an error.
func ParseNumber(s string) float64 {
	v, ok := parseNumber(s)
	if !ok {
		return 0
	}
	return v
}

// ParseOptionalNumber is ParseNumber with absence preserved.
func ParseOptionalNumber(s string) *float64 {
	v, ok := parseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02/01/06 15:04",
	"02/01/06",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses a date or datetime cell: Excel serials first, then the
// layout list. serialOffset corrects Excel serials for the spreadsheet's
// timezone.
func ParseDate(s string, serialOffset time.Duration) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 60 || serial > 200000 {
			return time.Time{}, false
		}
		return excelSerialToTime(serial, serialOffset), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseClock parses a time-of-day cell: "HH:MM[:SS]" or an Excel day
// fraction. Returns the offset from midnight.
func ParseClock(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if frac, err := strconv.ParseFloat(s, 64); err == nil {
		if frac < 0 || frac >= 1 {
			return 0, false
		}
		return time.Duration(frac * float64(24*time.Hour)), true
	}

	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

func excelSerialToTime(serial float64, offset time.Duration) time.Time {
	seconds := (serial - excelEpochOffsetDays) * 86400
	return time.Unix(int64(seconds), 0).UTC().Add(offset)
}

// CombineDateAndClock attaches a time-of-day to a date's midnight.
func CombineDateAndClock(date time.Time, clock time.Duration) time.Time {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(clock)
}

// IsTruthy implements the fuzzy "analyzed" check used by the analysis
// rate computation.
func IsTruthy(s string) bool {
	switch NormalizeText(s) {
	case "true", "sim", "s", "1", "analisado", "verdadeiro":
		return true
	}
	return false
}

// IsSentinel reports placeholder codes that must not enter code lists.
func IsSentinel(code string) bool {
	code = strings.TrimSpace(code)
	return code == "" || code == "0" || strings.Contains(strings.ToUpper(code), "TOTAL")
}
