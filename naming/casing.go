package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Titlecase upper-cases the first character of s, leaving the rest as-is
// ("move" -> "Move", "xCoord" -> "XCoord").
func Titlecase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToTitle(r)) + s[size:]
}

// Exported returns s as an exported Go identifier. Leading underscores are
// dropped so "_id" becomes "Id".
func Exported(s string) string {
	return Titlecase(strings.TrimLeft(s, "_"))
}

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Handles acronyms properly (e.g., "HTTPSConnection" -> "https_connection")
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if i > 0 && unicode.IsUpper(r) {
			// No underscore inside an acronym unless it ends here
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if !prevUpper || nextLower {
				result.WriteRune('_')
			}
		}

		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}
