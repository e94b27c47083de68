package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "mobile masked", input: "(11) 98765-4321", want: true},
		{name: "mobile raw", input: "11987654321", want: true},
		{name: "mobile with country code", input: "+55 11 98765-4321", want: true},
		{name: "landline", input: "(21) 3456-7890", want: true},
		{name: "landline with country code", input: "552134567890", want: true},
		{name: "trunk zero", input: "011 98765-4321", want: true},
		{name: "mobile without nine", input: "(11) 88765-4321", want: false},
		{name: "landline starting with 1", input: "(21) 1456-7890", want: false},
		{name: "ddd with zero", input: "(10) 98765-4321", want: false},
		{name: "too short", input: "98765-4321", want: false},
		{name: "letters", input: "(11) 9876A-4321", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ValidPhone(tc.input), "ValidPhone(%q)", tc.input)
		})
	}
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "(11) 98765-4321", FormatPhone("+5511987654321"))
	assert.Equal(t, "(21) 3456-7890", FormatPhone("2134567890"))
	assert.Equal(t, "(11) 98765-4321", FormatPhone(FormatPhone("11987654321")))
	assert.Equal(t, "123", FormatPhone("123"))

	assert.Equal(t, "+5511987654321", E164Phone("(11) 98765-4321"))
	assert.Equal(t, "", E164Phone("123"))
}

func TestValidCEP(t *testing.T) {
	assert.True(t, ValidCEP("01310-100"))
	assert.True(t, ValidCEP("01310100"))
	assert.True(t, ValidCEP("01.310-100"))
	assert.False(t, ValidCEP("00000-000"))
	assert.False(t, ValidCEP("0131-100"))
	assert.False(t, ValidCEP("01310-1000"))
	assert.False(t, ValidCEP("0131O-100"))
	assert.False(t, ValidCEP(""))

	assert.Equal(t, "01310-100", FormatCEP("01310100"))
	assert.Equal(t, "01310-100", FormatCEP("01310-100"))
	assert.Equal(t, "0131", FormatCEP("0131"))
}

func TestValidPixKey(t *testing.T) {
	assert.True(t, ValidPixKey(PixCPF, "529.982.247-25"))
	assert.False(t, ValidPixKey(PixCPF, "11.222.333/0001-81"))
	assert.True(t, ValidPixKey(PixCNPJ, "11.222.333/0001-81"))
	assert.True(t, ValidPixKey(PixPhone, "+5511987654321"))
	assert.True(t, ValidPixKey(PixEmail, "motorista@example.com"))
	assert.False(t, ValidPixKey(PixEmail, "Motorista <motorista@example.com>"))
	assert.False(t, ValidPixKey(PixEmail, "motorista@localhost"))
	assert.True(t, ValidPixKey(PixRandom, "123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, ValidPixKey(PixRandom, "not-a-uuid"))
	assert.False(t, ValidPixKey("boleto", "anything"))
	assert.False(t, ValidPixKey(PixEmail, "   "))
}
