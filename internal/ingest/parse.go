package ingest

import (
	"math"
	"strconv"
	"strings"
)

// ParseValue reads the leading decimal number of raw, so "2300 Pa"
// yields 2300 and "1,5" yields 1. Leading whitespace is skipped. The
// number may carry a sign, a fraction and an exponent; anything after it
// is ignored.
//
// When raw has no numeric prefix, or the number is not finite, the
// result is (0, false).
func ParseValue(raw string) (float64, bool) {
	s := strings.TrimLeft(raw, " \t\n\r\v\f")
	n := numericPrefix(s)
	if n == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(s[:n], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// numericPrefix returns the length of the longest prefix of s matching
// [+-]? (digits [. digits?] | . digits) ([eE] [+-]? digits)?, or 0.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intEnd := skipDigits(s, i)
	mantissa := intEnd - i
	i = intEnd

	if i < len(s) && s[i] == '.' {
		fracEnd := skipDigits(s, i+1)
		if frac := fracEnd - (i + 1); mantissa > 0 || frac > 0 {
			mantissa += frac
			i = fracEnd
		}
	}
	if mantissa == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if expEnd := skipDigits(s, j); expEnd > j {
			i = expEnd
		}
	}
	return i
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
