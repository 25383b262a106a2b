// Package textnorm canonicalizes free text before it enters the skill pipeline.
package textnorm

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonAlnumRe    = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	nullSentinels = map[string]bool{
		"":              true,
		"nan":           true,
		"none":          true,
		"null":          true,
		"n/a":           true,
		"na":            true,
		"not specified": true,
		"-":             true,
	}
)

// Normalize lowercases s, replaces every non-alphanumeric character with a space,
// collapses whitespace runs and trims the result.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	cleaned := nonAlnumRe.ReplaceAllString(strings.ToLower(s), " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
}

// NormalizeValue coerces v to its string form and normalizes it. A nil value
// normalizes to the empty string.
func NormalizeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(val)
	default:
		return Normalize(fmt.Sprint(val))
	}
}

// Join normalizes the space-joined concatenation of parts, skipping empty ones.
func Join(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return Normalize(strings.Join(nonEmpty, " "))
}

// Tokens splits normalized text into tokens longer than minLen characters.
func Tokens(s string, minLen int) []string {
	fields := strings.Fields(Normalize(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > minLen {
			out = append(out, f)
		}
	}
	return out
}

// IsNull reports whether a raw field value is empty or one of the placeholder
// strings that exported spreadsheets use for missing data.
func IsNull(s string) bool {
	return nullSentinels[strings.ToLower(strings.TrimSpace(s))]
}
