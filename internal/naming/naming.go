// Package naming converts between the identifier conventions that Stimulus
// wiring crosses: camelCase controller properties, kebab-case data
// attributes, and snake_case Ruby symbols.
package naming

import (
	"strings"
	"unicode"
)

// Kebab converts camelCase or snake_case to kebab-case.
// "refreshInterval" -> "refresh-interval", "chat_room" -> "chat-room".
func Kebab(s string) string {
	return separate(s, '-')
}

// Underscore converts camelCase or kebab-case to snake_case.
// "refreshInterval" -> "refresh_interval", "chat-room" -> "chat_room".
func Underscore(s string) string {
	return separate(s, '_')
}

func separate(s string, sep rune) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		switch {
		case r == '-' || r == '_':
			b.WriteRune(sep)
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteRune(sep)
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Pascalize converts kebab-case or snake_case to PascalCase.
// "new-message" -> "NewMessage".
func Pascalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
