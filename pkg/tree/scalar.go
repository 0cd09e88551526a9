package tree

import (
	"regexp"
	"strconv"
	"strings"
)

// Script dates look like 1936.1.1. A leading negative year appears in a few
// very old timeline files, so the sign is accepted.
var _datePattern = regexp.MustCompile(`^(-?\d{1,5})\.(\d{1,2})\.(\d{1,2})$`)

// Coerce classifies a raw script token and converts it to a scalar Value.
// Classification order is fixed: boolean, date, integer, float, quoted
// string, bare identifier. It is total; anything unrecognized stays a String,
// because the script format is permissive and a stray token must not abort
// parsing of an otherwise valid file.
func Coerce(raw string) Value {
	switch raw {
	case "yes":
		return Bool(true)
	case "no":
		return Bool(false)
	}

	if m := _datePattern.FindStringSubmatch(raw); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return Date{Year: year, Month: month, Day: day}
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(i)
	}

	if isFloatToken(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Float(f)
		}
	}

	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return String(raw[1 : len(raw)-1])
	}

	return String(raw)
}

// isFloatToken guards ParseFloat against the forms it accepts but the script
// language does not (hex floats, inf, NaN, exponents). Script floats are plain
// decimal notation with an optional sign.
func isFloatToken(raw string) bool {
	s := strings.TrimPrefix(strings.TrimPrefix(raw, "-"), "+")
	if s == "" {
		return false
	}
	dot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return dot
}
