package validators

import (
	"fmt"
	"strings"
)

const reservedEmailChars = `()<>@,;:\"[]`

// Email performs a pragmatic RFC 2822 address check: ASCII only, one
// recipient/domain split, quoted recipient sections allowed.
func Email(value any) error {
	text := fmt.Sprint(value)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < 32 || c == 127 {
			return NewError("Control characters present")
		}
	}
	for i := 0; i < len(text); i++ {
		if text[i] > 127 {
			return NewError("Non-ASCII characters present")
		}
	}

	at := strings.LastIndexByte(text, '@')
	if at < 0 {
		return NewError("Missing @ sign")
	}
	recipient, domain := text[:at], text[at+1:]
	if recipient == "" {
		return NewError("Recipient must be non-empty")
	}
	if domain == "" {
		return NewError("Domain must be non-empty")
	}
	if strings.HasSuffix(domain, ".") {
		return NewError("Domain must not end with '.'")
	}
	if strings.Contains(domain, "..") {
		return NewError("Domain must not contain '..'")
	}
	if strings.ContainsAny(domain, reservedEmailChars) {
		return NewError("Reserved character present in domain")
	}
	return checkRecipient(recipient)
}

func checkRecipient(recipient string) error {
	for i := 0; i < len(recipient); i++ {
		c := recipient[i]
		if c == '"' {
			end := strings.IndexByte(recipient[i+1:], '"')
			if end < 0 {
				return NewError("Unterminated quoted section in recipient")
			}
			i += end + 1
			if next := i + 1; next < len(recipient) && recipient[next] != '.' {
				return NewError("Quoted section must be followed by '@' or '.'")
			}
			continue
		}
		if strings.IndexByte(reservedEmailChars, c) >= 0 {
			return NewError("Reserved character present in recipient")
		}
	}
	return nil
}
