package validators

import (
	"net/mail"
	"strings"
	"unicode"
)

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// NormalizePhone reduces a phone number to its digits, keeping a leading
// "+". Clients are identified by phone, so "(11) 99999-0000" and
// "11 999990000" must end up as the same key.
func NormalizePhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	var b strings.Builder
	digits := 0
	for i, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", false
		}
	}

	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "", false
	}
	return b.String(), true
}

// IsEmail accepts a bare address ("name@host"), not a display-name form.
func IsEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
