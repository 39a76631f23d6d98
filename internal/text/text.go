// Package text holds the normalization and extraction primitives the event
// matcher relies on. Everything here is pure and deterministic.
package text

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	curlyQuotes = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
	)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]+`)
	whitespace   = regexp.MustCompile(`\s+`)
	digitRunRe   = regexp.MustCompile(`[0-9]{1,4}`)
	tokenRe      = regexp.MustCompile(`[a-z0-9]{3,}`)
	entityRe     = regexp.MustCompile(`\b[A-Z][A-Za-z0-9]+\b`)
	actorRe      = regexp.MustCompile(`\bactors?\b`)
	yisSubjectRe = regexp.MustCompile(`\bwill\s+(.+?)\s+be\b`)
)

// Normalize lowercases, NFKC-normalizes, straightens curly quotes, strips
// punctuation, and collapses whitespace.
func Normalize(value string) string {
	value = norm.NFKC.String(value)
	value = curlyQuotes.Replace(value)
	value = strings.ToLower(value)
	value = nonAlnumRe.ReplaceAllString(value, " ")
	value = whitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// NumbersWindow extracts runs of 1-4 digits (years, percentages, thresholds)
// from the original text, preserving order of first appearance.
func NumbersWindow(value string) []int {
	matches := digitRunRe.FindAllString(value, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n := 0
		for _, r := range m {
			n = n*10 + int(r-'0')
		}
		out = append(out, n)
	}
	return out
}

// NumbersConsistent reports whether two numeric windows agree: either side may
// be empty, otherwise the windows must be exactly equal, order-sensitive.
func NumbersConsistent(a, b []int) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Tokens returns the unique lowercase alphanumeric tokens (length >= 3) of a
// title, in order of first appearance.
func Tokens(value string) []string {
	matches := tokenRe.FindAllString(strings.ToLower(value), -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// entityStopwords filters month names, connector words, and domain-generic
// words that appear capitalized in almost every title.
var entityStopwords = map[string]struct{}{
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {},
	"june": {}, "july": {}, "august": {}, "september": {}, "october": {},
	"november": {}, "december": {},
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "jun": {}, "jul": {},
	"aug": {}, "sep": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
	"will": {}, "the": {}, "and": {}, "for": {}, "with": {}, "what": {},
	"which": {}, "who": {}, "when": {}, "how": {}, "before": {}, "after": {},
	"google": {}, "year": {}, "years": {}, "search": {}, "actor": {},
	"actors": {}, "top": {}, "new": {},
}

// EntityTokens extracts capitalized words and acronyms from the original-case
// text, lowercased, with the stop-list removed. Used as a coarse proper-noun
// overlap guard.
func EntityTokens(value string) map[string]struct{} {
	matches := entityRe.FindAllString(value, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		lowered := strings.ToLower(m)
		if _, stop := entityStopwords[lowered]; stop {
			continue
		}
		out[lowered] = struct{}{}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// EntityOverlap counts tokens shared by two entity sets.
func EntityOverlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}

// SearchActorSubject extracts the subject of the recurring "Year in Search ...
// Actors ... will X be ..." template. Titles in this family differ only by a
// person's name and otherwise score nearly identical, so the matcher requires
// extracted subjects to be equal. Returns false when the template is absent.
func SearchActorSubject(value string) (string, bool) {
	lowered := strings.ToLower(value)
	if !strings.Contains(lowered, "year in search") || !actorRe.MatchString(lowered) {
		return "", false
	}
	m := yisSubjectRe.FindStringSubmatch(lowered)
	if len(m) < 2 {
		return "", false
	}
	subject := Normalize(m[1])
	if subject == "" {
		return "", false
	}
	return subject, true
}
