package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPlate(t *testing.T) {
	for _, p := range []string{"ABC-1234", "abc1234", "BRA2E19", "bra2e19", " XYZ-9876 "} {
		assert.True(t, ValidPlate(p), p)
	}
	for _, p := range []string{"", "AB-1234", "ABCD123", "1234ABC", "ABC12345", "ABC-12E4"} {
		assert.False(t, ValidPlate(p), p)
	}
}

func TestFormatPlate(t *testing.T) {
	assert.Equal(t, "ABC1234", FormatPlate("abc-1234"))
	assert.Equal(t, "BRA2E19", FormatPlate("bra2e19"))
	assert.Equal(t, "nope", FormatPlate("nope"))
}
