package llm

import (
	"regexp"
	"strings"
)

// Kind is the payload a model was asked to produce
type Kind string

const (
	KindSQL  Kind = "sql"
	KindJSON Kind = "json"
)

const codeFence = "```"

var multiSpace = regexp.MustCompile(` {2,}`)

// Sanitize removes code fences and a leading bare language tag from model output.
// The tag is only removed when it stands alone, so sanitizing twice changes nothing.
func Sanitize(kind Kind, text string) string {
	text = strings.ReplaceAll(text, codeFence, "")

	tag := string(kind)
	if !strings.HasPrefix(text, tag) {
		return text
	}
	rest := text[len(tag):]
	if rest == "" || isTagBoundary(kind, rest[0]) {
		return rest
	}
	return text
}

func isTagBoundary(kind Kind, c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r':
		return true
	case '{', '[':
		return kind == KindJSON
	}
	return false
}

// Clean strips formatting artifacts for both SQL and JSON payloads
func Clean(text string) string {
	return Sanitize(KindJSON, Sanitize(KindSQL, text))
}

// Flatten collapses text onto a single line with single spaces
func Flatten(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return multiSpace.ReplaceAllString(text, " ")
}

// stripLineBreaks removes line breaks without inserting separators
func stripLineBreaks(text string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(text)
}
