package calc

import (
	"strconv"
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/report/fields"
)

// LineItems are the rows of the valuation details table, in table order.
// Each item may carry "<key>Qty" and "<key>Rate" companions.
var LineItems = []string{
	"presentValue", "wardrobes", "showcases", "kitchenArrangements",
	"superfineFinish", "interiorDecorations", "electricityDeposits",
	"collapsibleGates", "potentialValue", "otherItems",
}

// WordedValues are the headline values that get an "in words" companion
// stored under "<key>Words".
var WordedValues = []string{
	"fairMarketValue", "realisableValue", "distressValue",
	"agreementValue", "valueCircleRate", "insurableValue",
}

func skippable(v string) bool {
	return v == "" || v == fields.NA || v == "Nil"
}

// Total sums the line items, ignoring NA, Nil and unparsable cells. ok is
// false when no item contributed.
func Total(f fields.Fields) (total float64, ok bool) {
	for _, key := range LineItems {
		v := f[key]
		if skippable(v) {
			continue
		}
		if n, parsed := ParseAmount(v); parsed {
			total += n
			ok = true
		}
	}
	return total, ok
}

// Derive returns a copy of f with computed totals, amounts in words and
// defaults filled in. Values already present are never overwritten.
func Derive(f fields.Fields, now time.Time) fields.Fields {
	out := f.Clone()

	if skippable(out["totalValuationItems"]) {
		if total, _ := Total(out); total > 0 {
			rounded := jsRound(total)
			out["totalValuationItems"] = FormatIndian(rounded)
			out["totalValuationItemsWords"] = NumberToWords(int64(rounded)) + " ONLY"
		}
	} else if skippable(out["totalValuationItemsWords"]) {
		if n, ok := ParseAmount(out["totalValuationItems"]); ok {
			out["totalValuationItemsWords"] = NumberToWords(int64(jsRound(n))) + " ONLY"
		}
	}
	if !out.Has("totalEstimatedValue") && out.Has("totalValuationItems") {
		out["totalEstimatedValue"] = out["totalValuationItems"]
	}

	for _, key := range WordedValues {
		v := out[key]
		if skippable(v) {
			continue
		}
		wordsKey := key + "Words"
		if w := out[wordsKey]; w != "" && w != fields.NA {
			continue
		}
		if n, ok := ParseAmount(v); ok && n > 0 {
			out[wordsKey] = "Rupees " + NumberToWords(int64(jsRound(n))) + " Only"
		}
	}

	if !out.Has("readyReckonerYear") {
		out["readyReckonerYear"] = strconv.Itoa(now.Year())
	}

	return out
}
