package validator

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

const cepLen = 8

// normalizePhone returns the national digits (DDD + number) or "" when the
// input cannot be a Brazilian number.
func normalizePhone(s string) string {
	if !onlyAllowed(s, "+()-. ") {
		return ""
	}
	d := OnlyDigits(s)
	if (len(d) == 12 || len(d) == 13) && strings.HasPrefix(d, "55") {
		d = d[2:]
	} else if (len(d) == 11 || len(d) == 12) && d[0] == '0' {
		d = d[1:]
	}
	if len(d) != 10 && len(d) != 11 {
		return ""
	}
	if d[0] == '0' || d[1] == '0' {
		return ""
	}
	switch len(d) {
	case 11:
		if d[2] != '9' {
			return ""
		}
	case 10:
		if d[2] < '2' || d[2] > '5' {
			return ""
		}
	}
	return d
}

// ValidPhone accepts mobile (9 digits) and landline (8 digits) numbers with a
// DDD, optionally prefixed by +55 or a trunk zero.
func ValidPhone(s string) bool {
	return normalizePhone(s) != ""
}

// FormatPhone renders (11) 98765-4321 or (11) 3456-7890.
func FormatPhone(s string) string {
	d := normalizePhone(s)
	if d == "" {
		return s
	}
	ddd, num := d[:2], d[2:]
	split := len(num) - 4
	return "(" + ddd + ") " + num[:split] + "-" + num[split:]
}

// E164Phone renders +5511987654321, or "" for invalid input.
func E164Phone(s string) string {
	d := normalizePhone(s)
	if d == "" {
		return ""
	}
	return "+55" + d
}

func ValidCEP(s string) bool {
	if !onlyAllowed(s, ".- ") {
		return false
	}
	d := OnlyDigits(s)
	return len(d) == cepLen && d != "00000000"
}

func FormatCEP(s string) string {
	d := OnlyDigits(s)
	if len(d) != cepLen {
		return s
	}
	return d[:5] + "-" + d[5:]
}

type PixKeyKind string

const (
	PixCPF    PixKeyKind = "cpf"
	PixCNPJ   PixKeyKind = "cnpj"
	PixPhone  PixKeyKind = "phone"
	PixEmail  PixKeyKind = "email"
	PixRandom PixKeyKind = "random"
)

// ValidPixKey checks a PIX key against its declared kind.
func ValidPixKey(kind PixKeyKind, key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	switch kind {
	case PixCPF:
		return ValidCPF(key)
	case PixCNPJ:
		return ValidCNPJ(key)
	case PixPhone:
		return ValidPhone(key)
	case PixEmail:
		return ValidEmail(key)
	case PixRandom:
		_, err := uuid.Parse(key)
		return err == nil
	default:
		return false
	}
}

// ValidEmail requires a bare address (no display name).
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
