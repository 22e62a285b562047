package calc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/report/fields"
)

var leadingNumber = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)

// ParseAmount keeps only digits, '.' and '-' and parses the longest number
// at the start of what is left, so "₹ 1,50,000/-" reads as 150000.
func ParseAmount(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	num := leadingNumber.FindString(cleaned)
	if num == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Percentage returns round(base*pct/100), or 0 when base does not parse.
func Percentage(base string, pct float64) int64 {
	n, ok := ParseAmount(base)
	if !ok {
		return 0
	}
	return int64(jsRound(n * pct / 100))
}

// RoundToNearest1000 rounds an amount to the nearest thousand. Empty input
// renders as NA and unparsable input is returned unchanged.
func RoundToNearest1000(v string) string {
	if strings.TrimSpace(v) == "" {
		return fields.NA
	}
	n, ok := ParseAmount(v)
	if !ok {
		return v
	}
	return strconv.FormatFloat(jsRound(n/1000)*1000, 'f', -1, 64)
}

// FormatIndian groups digits the en-IN way: 12,34,567.5. At most three
// fraction digits are kept.
func FormatIndian(v float64) string {
	neg := v < 0
	v = math.Abs(v)
	s := strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var grouped string
	if len(intPart) <= 3 {
		grouped = intPart
	} else {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		grouped = strings.Join(append(groups, tail), ",")
	}

	if hasFrac {
		grouped += "." + frac
	}
	if neg {
		grouped = "-" + grouped
	}
	return grouped
}

// FormatCurrencyWithWords renders pct percent of v as "₹ 1,00,000/- (ONE LAC)".
func FormatCurrencyWithWords(v string, pct float64) string {
	if strings.TrimSpace(v) == "" {
		return fields.NA
	}
	if _, ok := ParseAmount(v); !ok {
		return v
	}
	final := Percentage(v, pct)
	return "₹ " + FormatIndian(float64(final)) + "/- (" + NumberToWords(final) + ")"
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders a date as d/m/yyyy. Empty input renders as NA and
// unparsable input is returned unchanged.
func FormatDate(s string) string {
	if s == "" || s == fields.NA {
		return fields.NA
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return strconv.Itoa(t.Day()) + "/" + strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Year())
		}
	}
	return s
}
