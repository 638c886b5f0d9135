package decision

import (
	"encoding/json"
	"fmt"
	"strings"

	"gridbot/models"
)

// ParseError carries the raw completion text for diagnostics. It is a
// terminal no-op for the triggering message, never a crash.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse decision: %s (raw: %q)", e.Reason, e.Raw)
}

// IsParseError reports whether err is a decision parse failure
func IsParseError(err error) bool {
	_, ok := err.(*ParseError)
	return ok
}

// ParseDecision extracts a typed decision from a raw LLM completion.
// The completion may be wrapped in code fences, with or without a
// language tag.
func ParseDecision(raw string) (*models.Decision, error) {
	trimmed := stripCodeFence(strings.TrimSpace(raw))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil, &ParseError{Reason: err.Error(), Raw: raw}
	}

	respondRaw, ok := fields["respond"]
	if !ok {
		return nil, &ParseError{Reason: "missing respond field", Raw: raw}
	}

	var decision models.Decision
	if err := json.Unmarshal(respondRaw, &decision.Respond); err != nil {
		return nil, &ParseError{Reason: "respond is not a boolean", Raw: raw}
	}

	if messageRaw, ok := fields["message"]; ok {
		var message string
		if err := json.Unmarshal(messageRaw, &message); err != nil {
			return nil, &ParseError{Reason: "message is not a string", Raw: raw}
		}
		decision.Message = &message
	}

	if reactRaw, ok := fields["react"]; ok {
		var react string
		if err := json.Unmarshal(reactRaw, &react); err != nil {
			return nil, &ParseError{Reason: "react is not a string", Raw: raw}
		}
		decision.React = &react
	}

	return &decision, nil
}

// stripCodeFence removes a leading fence line (```json or bare ```) and
// a trailing fence, leaving non-fenced input untouched.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}

	body := s
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	} else {
		// Single-line fence like ```{"respond":false}```
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}
