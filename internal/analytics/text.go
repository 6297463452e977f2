package analytics

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	mentionPattern    = regexp.MustCompile(`@\w+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// trivialComments are acknowledgements that carry no analyzable signal. They
// still count toward the raw comment rate, just not toward sentiment or
// keyword accounting.
var trivialComments = map[string]bool{
	"hi": true, "hello": true, "hey": true, "lol": true, "omg": true,
	"wow": true, "nice": true, "cool": true, "ok": true, "yes": true, "no": true,
}

// stopWords are excluded from keyword frequency tracking.
var stopWords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "are": true,
	"was": true, "were": true, "been": true, "have": true, "has": true,
	"had": true, "will": true, "would": true, "could": true, "should": true,
	"this": true, "that": true, "with": true, "from": true, "they": true,
	"them": true, "their": true, "there": true, "here": true, "when": true,
	"where": true, "what": true, "why": true, "how": true,
}

// NormalizeComment strips emoji/symbols and @mentions, collapses whitespace,
// and filters out trivial comments. It returns the cleaned text and whether
// the comment carries enough signal for sentiment and keyword analysis.
func NormalizeComment(text string) (string, bool) {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r) {
			b.WriteRune(r)
		}
	}

	cleaned := mentionPattern.ReplaceAllString(b.String(), "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) < 3 || trivialComments[strings.ToLower(cleaned)] {
		return "", false
	}

	return cleaned, true
}

// ExtractKeywords returns the lower-cased tokens of text longer than three
// characters that are not stop words.
func ExtractKeywords(text string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(word) > 3 && !stopWords[word] {
			keywords = append(keywords, word)
		}
	}
	return keywords
}
