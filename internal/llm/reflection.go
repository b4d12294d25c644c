package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ErrMalformedReply is returned when the reflection reply is not the expected JSON object
var ErrMalformedReply = errors.New("malformed reflection reply")

// MalformedReplyDetails is reported as mismatch details for unusable replies
const MalformedReplyDetails = "Returned JSON malformed"

// reflectionReply is the shape the reflection model must answer with
type reflectionReply struct {
	Question        *string         `json:"question" validate:"required"`
	IsMatching      json.RawMessage `json:"is_matching" validate:"required"`
	MismatchDetails *string         `json:"mismatch_details"`
}

var replyValidator = validator.New()

// DecodeReflection parses a reflection reply into an explanation.
// Replies that are not JSON or miss required keys yield ErrMalformedReply.
func DecodeReflection(raw string) (domain.SQLExplanation, error) {
	var reply reflectionReply
	if err := json.Unmarshal([]byte(escapeControlChars(raw)), &reply); err != nil {
		return domain.SQLExplanation{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	if err := checkReplyShape(reply); err != nil {
		return domain.SQLExplanation{}, err
	}

	explanation := domain.SQLExplanation{
		ReversedQuestion: *reply.Question,
		IsMatching:       isLiteralTrue(reply.IsMatching),
	}
	if reply.MismatchDetails != nil {
		explanation.MismatchDetails = *reply.MismatchDetails
	}
	return explanation, nil
}

// ParseReflection is DecodeReflection with malformed replies turned into a degraded explanation
func ParseReflection(raw string) (domain.SQLExplanation, error) {
	explanation, err := DecodeReflection(raw)
	if errors.Is(err, ErrMalformedReply) {
		return DegradedExplanation(), nil
	}
	return explanation, err
}

// DegradedExplanation is the result reported when the reflection reply is unusable
func DegradedExplanation() domain.SQLExplanation {
	return domain.SQLExplanation{
		IsMatching:      false,
		MismatchDetails: MalformedReplyDetails,
	}
}

// checkReplyShape validates a decoded reply. A target the validator cannot
// inspect is a broken shape definition and yields ErrInvalidResponseSchema,
// which ParseReflection does not degrade.
func checkReplyShape(target any) error {
	err := replyValidator.Struct(target)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %v", ErrInvalidResponseSchema, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedReply, err)
}

// only the string "True" counts as a match
func isLiteralTrue(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return s == "True"
}

// escapeControlChars escapes raw control characters inside JSON strings,
// which models emit when a value spans several lines
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case escaped:
			escaped = false
			b.WriteByte(c)
		case c == '\\':
			escaped = true
			b.WriteByte(c)
		case c == '"':
			inString = false
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			fmt.Fprintf(&b, `\u%04x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
