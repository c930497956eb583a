package store

import (
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecimalRoundTrips(t *testing.T) {
	for _, s := range []string{"0", "9", "10", "123.456", "0.000000000000000001"} {
		d := decimal.RequireFromString(s)
		encoded := encodeDecimal(d)
		got := decimal.RequireFromString(encoded)
		assert.True(t, d.Equal(got), "expected %s to round-trip through encodeDecimal, got %s", s, got)
	}
}

// TestEncodeDecimalSortsLexicographicallyLikeNumerically is the regression
// test for the bug ListCandidates depends on not having: "9" must encode to
// something that sorts before "10" as plain text, the way Postgres's text
// comparison on the min_price/max_price columns does.
func TestEncodeDecimalSortsLexicographicallyLikeNumerically(t *testing.T) {
	values := []string{"10", "9", "100", "0.5", "1000000", "2", "99.99"}
	numeric := make([]decimal.Decimal, len(values))
	for i, v := range values {
		numeric[i] = decimal.RequireFromString(v)
	}
	sort.Slice(numeric, func(i, j int) bool { return numeric[i].LessThan(numeric[j]) })

	encoded := make([]string, len(values))
	for i, v := range values {
		encoded[i] = encodeDecimal(decimal.RequireFromString(v))
	}
	sort.Strings(encoded)

	for i, e := range encoded {
		want := encodeDecimal(numeric[i])
		assert.Equal(t, want, e, "lexicographic sort position %d disagreed with numeric sort", i)
	}
}

func TestEncodeDecimalBoundFilterComparisonAgreesWithNumeric(t *testing.T) {
	// A candidate SELL resting at min_price=9 must pass an incoming BUY's
	// max_price=10 filter (`min_price <= bound`) as plain text, exactly as
	// it would numerically.
	minPrice := encodeDecimal(decimal.RequireFromString("9"))
	bound := EncodeDecimalBound(decimal.RequireFromString("10"))
	require.LessOrEqual(t, minPrice, string(bound))
}
