package validator

import (
	"regexp"
	"strings"
)

// Old format ABC-1234 and Mercosul ABC1D23.
var plateRe = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)

func normalizePlate(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "")
}

// ValidPlate accepts Brazilian vehicle plates in either format, case-insensitive.
func ValidPlate(s string) bool {
	return plateRe.MatchString(normalizePlate(s))
}

// FormatPlate upper-cases and drops the hyphen. Invalid input is returned unchanged.
func FormatPlate(s string) string {
	p := normalizePlate(s)
	if !plateRe.MatchString(p) {
		return s
	}
	return p
}
