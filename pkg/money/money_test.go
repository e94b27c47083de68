package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", FormatBRL(0))
	assert.Equal(t, "R$ 0,05", FormatBRL(5))
	assert.Equal(t, "R$ 20,00", FormatBRL(2000))
	assert.Equal(t, "R$ 1.234,56", FormatBRL(123456))
	assert.Equal(t, "R$ 1.000.000,00", FormatBRL(100000000))
	assert.Equal(t, "-R$ 15,50", FormatBRL(-1550))
}

func TestShare(t *testing.T) {
	assert.Equal(t, int64(800), Share(1000, 80))
	assert.Equal(t, int64(1033), Share(1377, 75))
	assert.Equal(t, int64(0), Share(1000, 0))
	assert.Equal(t, int64(1000), Share(1000, 100))
	assert.Equal(t, int64(0), Share(-10, 50))
}
