package email

import (
	"strings"
	"unicode"
)

// DisplayName derives a human readable name from an address,
// "jan.de-vries@gemeente.nl" becomes "Jan Vries" and an empty local part yields "".
func DisplayName(address string) string {
	first, last := splitLocalPart(address)
	if first == "" {
		return ""
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

// Normalize trims and lowercases an address. It returns "" for values without
// a local part and a domain.
func Normalize(address string) string {
	address = strings.ToLower(strings.TrimSpace(address))
	at := strings.IndexByte(address, '@')
	if at <= 0 || at == len(address)-1 {
		return ""
	}
	return address
}

func splitLocalPart(address string) (string, string) {
	localPart := address
	if at := strings.IndexByte(address, '@'); at >= 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "", ""
	}

	first := capitalize(parts[0])
	if len(parts) == 1 {
		return first, ""
	}
	return first, capitalize(parts[len(parts)-1])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
