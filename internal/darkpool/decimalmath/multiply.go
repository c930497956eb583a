// Package decimalmath implements the exact arbitrary-precision decimal
// multiply algorithm the specification mandates for quote-amount
// computation: concatenate and strip decimal points, multiply the resulting
// integers with math/big, reinsert the combined decimal point, and trim
// trailing zeros. This is distinct from general decimal comparison
// (handled by shopspring/decimal elsewhere) because the spec names the
// algorithm itself, not merely a correct product.
package decimalmath

import (
	"math/big"
	"strings"
)

// Multiply computes a*b as exact decimal strings using the algorithm
// described in spec §4.4: strip the decimal point from each operand,
// multiply as big integers, then reinsert a decimal point at the sum of
// the two operands' fractional digit counts, and trim trailing zeros (and
// a trailing decimal point, if any).
func Multiply(a, b string) (string, error) {
	aDigits, aFrac, aNeg, err := splitDecimal(a)
	if err != nil {
		return "", err
	}
	bDigits, bFrac, bNeg, err := splitDecimal(b)
	if err != nil {
		return "", err
	}

	aInt, ok := new(big.Int).SetString(aDigits, 10)
	if !ok {
		return "", &ParseError{Input: a}
	}
	bInt, ok := new(big.Int).SetString(bDigits, 10)
	if !ok {
		return "", &ParseError{Input: b}
	}

	product := new(big.Int).Mul(aInt, bInt)
	neg := aNeg != bNeg
	fracDigits := aFrac + bFrac

	s := product.String()
	negPrefix := ""
	if neg && product.Sign() != 0 {
		negPrefix = "-"
	}

	return negPrefix + insertPoint(s, fracDigits), nil
}

// ParseError reports a malformed decimal string input to Multiply.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return "decimalmath: invalid decimal string: " + e.Input
}

// splitDecimal strips sign and decimal point from s, returning the bare
// digit string, the count of fractional digits, and whether s was negative.
func splitDecimal(s string) (digits string, fracCount int, neg bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", 0, false, &ParseError{Input: s}
	}
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}

	dot := strings.IndexByte(s, '.')
	if dot == -1 {
		digits = s
		fracCount = 0
	} else {
		digits = s[:dot] + s[dot+1:]
		fracCount = len(s) - dot - 1
	}
	if digits == "" {
		digits = "0"
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", 0, false, &ParseError{Input: s}
		}
	}
	return digits, fracCount, neg, nil
}

// insertPoint reinserts a decimal point fracDigits from the right of s and
// trims trailing zeros in the fractional part (and the point itself, if the
// fractional part becomes empty).
func insertPoint(s string, fracDigits int) string {
	if fracDigits == 0 {
		return s
	}

	for len(s) <= fracDigits {
		s = "0" + s
	}
	intPart := s[:len(s)-fracDigits]
	fracPart := s[len(s)-fracDigits:]

	fracPart = strings.TrimRight(fracPart, "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}
