package store

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// decimalIntegerWidth and decimalScale bound the fixed-precision encoding
// used for every decimal column (spec §4.5: "All decimal columns are
// fixed-precision and compared lexicographically by the same normalization
// used by the engine"). 30 integer digits and 18 fractional digits comfortably
// cover token amounts at 18-decimal on-chain precision with headroom.
const (
	decimalIntegerWidth = 30
	decimalScale        = 18
)

// encodeDecimal renders d as a zero-padded fixed-width string whose
// lexicographic order matches its numeric order, so a plain `text` column
// comparison in Postgres (ListCandidates' WHERE and ORDER BY clauses) agrees
// with decimal comparison. Prices and quantities in this domain are never
// negative, so no sign handling is required; decimal.RequireFromString
// parses the padding back out without needing a matching decode step.
func encodeDecimal(d decimal.Decimal) string {
	fixed := d.StringFixed(decimalScale)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return fmt.Sprintf("%0*s.%s", decimalIntegerWidth, intPart, fracPart)
}

// EncodeDecimalBound applies the same fixed-width normalization to a price
// bound before it is passed as a query argument, so a candidate's encoded
// min_price/max_price column compares correctly against it.
func EncodeDecimalBound(d decimal.Decimal) DecimalString {
	return DecimalString(encodeDecimal(d))
}
