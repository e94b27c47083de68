// Package validator holds the Brazilian document, phone, CEP and PIX key
// checks shared by sign-up, orders and withdrawals.
package validator

import "strings"

type DocumentKind string

const (
	KindCPF  DocumentKind = "cpf"
	KindCNPJ DocumentKind = "cnpj"
)

const (
	cpfLen  = 11
	cnpjLen = 14
)

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits drops every rune that is not 0-9.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF accepts masked (000.000.000-00) or raw input.
func ValidCPF(s string) bool {
	if !onlyAllowed(s, ".- ") {
		return false
	}
	d := OnlyDigits(s)
	if len(d) != cpfLen || allSame(d) {
		return false
	}
	return cpfDigit(d[:9], 10) == int(d[9]-'0') && cpfDigit(d[:10], 11) == int(d[10]-'0')
}

// ValidCNPJ accepts masked (00.000.000/0000-00) or raw input.
func ValidCNPJ(s string) bool {
	if !onlyAllowed(s, ".-/ ") {
		return false
	}
	d := OnlyDigits(s)
	if len(d) != cnpjLen || allSame(d) {
		return false
	}
	return cnpjDigit(d[:12], cnpjWeights1) == int(d[12]-'0') && cnpjDigit(d[:13], cnpjWeights2) == int(d[13]-'0')
}

// ValidDocument picks CPF or CNPJ by digit count.
func ValidDocument(s string) (DocumentKind, bool) {
	switch len(OnlyDigits(s)) {
	case cpfLen:
		return KindCPF, ValidCPF(s)
	case cnpjLen:
		return KindCNPJ, ValidCNPJ(s)
	default:
		return "", false
	}
}

func FormatCPF(s string) string {
	d := OnlyDigits(s)
	if len(d) != cpfLen {
		return s
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

func FormatCNPJ(s string) string {
	d := OnlyDigits(s)
	if len(d) != cnpjLen {
		return s
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// FormatDocument masks a CPF or CNPJ, leaving anything else untouched.
func FormatDocument(s string) string {
	switch len(OnlyDigits(s)) {
	case cpfLen:
		return FormatCPF(s)
	case cnpjLen:
		return FormatCNPJ(s)
	default:
		return s
	}
}

func cpfDigit(digits string, weight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	r := sum * 10 % 11
	if r == 10 {
		return 0
	}
	return r
}

func cnpjDigit(digits string, weights []int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

// onlyAllowed reports whether s holds digits plus the given separators.
func onlyAllowed(s, separators string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if !strings.ContainsRune(separators, r) {
			return false
		}
	}
	return true
}
