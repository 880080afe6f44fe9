package model

import (
	"regexp"
	"strings"
)

// Prettify turns an attribute name into a label: "my_column_name" becomes
// "My column name".
func Prettify(name string) string {
	text := strings.ReplaceAll(name, "_", " ")
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// Labeler converts a field name into a title-cased label, splitting on
// underscores, dashes and camelCase boundaries. Schemas imported from
// OpenAPI documents use camelCase names, where Prettify reads poorly.
func Labeler(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, titleCase(splitCamel(word)))
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

// SnakeCase converts a Go identifier into the attribute naming used by the
// struct adapter: "UserID" becomes "user_id".
func SnakeCase(name string) string {
	var out strings.Builder
	for i, r := range name {
		if i > 0 && isUpper(r) && (isLower(rune(name[i-1])) || (i+1 < len(name) && isLower(rune(name[i+1])) && isUpper(rune(name[i-1])))) {
			out.WriteByte('_')
		}
		out.WriteRune(r)
	}
	return strings.ToLower(out.String())
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func titleCase(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
