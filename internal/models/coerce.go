package models

import "strconv"

// Coerce decides how a client-supplied value is stored. A plain decimal
// literal (optional sign, digits, optional fraction, optional exponent)
// becomes a number; everything else, including "", " 42", "0x10", "NaN"
// and literals that overflow float64, stays a string.
func Coerce(raw string) Value {
	if !isDecimalLiteral(raw) {
		return String(raw)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return String(raw)
	}
	return numericLiteral(f, raw)
}

func isDecimalLiteral(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intDigits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		intDigits++
	}

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			fracDigits++
		}
	}
	if intDigits+fracDigits == 0 {
		return false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
