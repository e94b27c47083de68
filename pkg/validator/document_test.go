package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCPF(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "masked", input: "529.982.247-25", want: true},
		{name: "raw", input: "11144477735", want: true},
		{name: "spaces", input: " 111 444 777 35 ", want: true},
		{name: "wrong first digit", input: "529.982.247-15", want: false},
		{name: "wrong second digit", input: "529.982.247-24", want: false},
		{name: "repeated digits", input: "111.111.111-11", want: false},
		{name: "zeros", input: "00000000000", want: false},
		{name: "short", input: "5299822472", want: false},
		{name: "long", input: "529982247250", want: false},
		{name: "letters", input: "529.982.247-2a5", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ValidCPF(tc.input), "ValidCPF(%q)", tc.input)
		})
	}
}

func TestValidCNPJ(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "masked", input: "11.222.333/0001-81", want: true},
		{name: "raw", input: "11222333000181", want: true},
		{name: "wrong second digit", input: "11.222.333/0001-82", want: false},
		{name: "wrong first digit", input: "11.222.333/0001-71", want: false},
		{name: "repeated digits", input: "22.222.222/2222-22", want: false},
		{name: "cpf length", input: "529.982.247-25", want: false},
		{name: "letters", input: "11.222.333/0001-8X", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ValidCNPJ(tc.input), "ValidCNPJ(%q)", tc.input)
		})
	}
}

func TestValidDocument(t *testing.T) {
	kind, ok := ValidDocument("529.982.247-25")
	assert.Equal(t, KindCPF, kind)
	assert.True(t, ok)

	kind, ok = ValidDocument("11.222.333/0001-81")
	assert.Equal(t, KindCNPJ, kind)
	assert.True(t, ok)

	kind, ok = ValidDocument("11.222.333/0001-80")
	assert.Equal(t, KindCNPJ, kind)
	assert.False(t, ok)

	kind, ok = ValidDocument("123")
	assert.Equal(t, DocumentKind(""), kind)
	assert.False(t, ok)
}

func TestFormatDocuments(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatCPF("52998224725"))
	assert.Equal(t, "529.982.247-25", FormatCPF(FormatCPF("52998224725")))
	assert.Equal(t, "123", FormatCPF("123"))

	assert.Equal(t, "11.222.333/0001-81", FormatCNPJ("11222333000181"))
	assert.Equal(t, "11.222.333/0001-81", FormatCNPJ(FormatCNPJ("11222333000181")))

	assert.Equal(t, "529.982.247-25", FormatDocument("52998224725"))
	assert.Equal(t, "11.222.333/0001-81", FormatDocument("11222333000181"))
	assert.Equal(t, "abc", FormatDocument("abc"))
}

func TestOnlyDigits(t *testing.T) {
	assert.Equal(t, "5511987654321", OnlyDigits("+55 (11) 98765-4321"))
	assert.Equal(t, "", OnlyDigits("abc"))
}
