// Package calc derives report values that records do not carry directly:
// amounts in Indian-numbering words, percentages, rounding, totals and
// display formatting.
package calc

import (
	"math"
	"strings"
)

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

func below100(n int64) string {
	switch {
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	default:
		return tens[n/10] + " " + ones[n%10]
	}
}

func below1000(n int64) string {
	var b strings.Builder
	if h := n / 100; h > 0 {
		b.WriteString(ones[h])
		b.WriteString(" Hundred ")
	}
	b.WriteString(below100(n % 100))
	return b.String()
}

// indian spells n using the Indian grouping: the last three digits, then
// thousands and lacs in two-digit groups, then crores (recursively).
func indian(n int64) string {
	var parts []string
	if crore := n / 10_000_000; crore > 0 {
		parts = append(parts, indian(crore), "Crore")
	}
	if lac := n / 100_000 % 100; lac > 0 {
		parts = append(parts, below100(lac), "Lac")
	}
	if th := n / 1000 % 100; th > 0 {
		parts = append(parts, below100(th), "Thousand")
	}
	if rest := n % 1000; rest > 0 {
		parts = append(parts, below1000(rest))
	}
	return strings.Join(parts, " ")
}

// NumberToWords spells n in upper-case Indian numbering
// (NumberToWords(100000) == "ONE LAC"). Zero is "Zero"; negatives yield "".
func NumberToWords(n int64) string {
	switch {
	case n < 0:
		return ""
	case n == 0:
		return "Zero"
	}
	return strings.ToUpper(strings.Join(strings.Fields(indian(n)), " "))
}

// AmountInWords spells a formatted amount ("₹ 1,50,000/-"). It returns ""
// when s holds no parsable number.
func AmountInWords(s string) string {
	n, ok := ParseAmount(s)
	if !ok {
		return ""
	}
	return NumberToWords(int64(jsRound(n)))
}

// jsRound rounds half up, matching how amounts are rounded on the web form.
func jsRound(v float64) float64 {
	return math.Floor(v + 0.5)
}
