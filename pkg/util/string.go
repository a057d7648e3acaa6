package util

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLineRun    = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText collapses spaces and tabs to a single space, squeezes runs of
// three or more newlines down to one blank line and trims the result
func NormalizeText(s string) string {
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = blankLineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Fingerprint returns the lowercase hex SHA-256 of the normalized text
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(NormalizeText(s)))
	return hex.EncodeToString(sum[:])
}

// ExtractHook prefers the explicit hook and falls back to the first line of text
func ExtractHook(hook, text string) string {
	if hook != "" {
		return NormalizeText(hook)
	}
	firstLine, _, _ := strings.Cut(text, "\n")
	return NormalizeText(firstLine)
}

// CharCount counts Unicode code points, which is what the length limit is measured in
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate shortens s to at most n code points for log output
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// ContainsFold reports every needle found in s, case-insensitively and
// without any word boundary handling
func ContainsFold(s string, needles []string) []string {
	lower := strings.ToLower(s)
	var found []string
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(needle)) {
			found = append(found, needle)
		}
	}
	return found
}
