// Package parser turns raw model output into JSON values, tolerating the
// markdown fences and commentary hosted models wrap around their answers.
package parser

import (
	"encoding/json"
	"sort"
	"strings"
)

// Shape is the top-level JSON type a caller expects.
type Shape int

const (
	Object Shape = iota
	Array
)

func (s Shape) String() string {
	if s == Array {
		return "array"
	}
	return "object"
}

func (s Shape) delimiters() (open, close byte) {
	if s == Array {
		return '[', ']'
	}
	return '{', '}'
}

func (s Shape) matches(v any) bool {
	switch v.(type) {
	case map[string]any:
		return s == Object
	case []any:
		return s == Array
	default:
		return false
	}
}

// Kind tags an Outcome.
type Kind int

const (
	Unstructured Kind = iota
	Structured
)

// Outcome is the result of normalizing one response. Value is set for
// Structured outcomes, Text for Unstructured ones.
type Outcome struct {
	Kind  Kind
	Value any
	Text  string
}

// StructuredOutcome wraps a decoded JSON value.
func StructuredOutcome(v any) Outcome {
	return Outcome{Kind: Structured, Value: v}
}

// UnstructuredOutcome wraps text that could not be decoded.
func UnstructuredOutcome(text string) Outcome {
	return Outcome{Kind: Unstructured, Text: text}
}

func (o Outcome) IsStructured() bool {
	return o.Kind == Structured
}

// Normalize decodes raw into a JSON value of the expected shape.
//
// Strategies run in order and the first success wins: strict decode of the
// fence-stripped text, then decode of an embedded bracketed span. When both
// fail the cleaned text is returned as Unstructured. Normalize never panics
// and never returns an error.
func Normalize(raw string, expect Shape) Outcome {
	text := StripFences(raw)
	if text == "" {
		return UnstructuredOutcome(text)
	}

	if v, ok := decode(text, expect); ok {
		return StructuredOutcome(v)
	}

	for _, span := range candidateSpans(text, expect) {
		if v, ok := decode(span, expect); ok {
			return StructuredOutcome(v)
		}
	}

	return UnstructuredOutcome(text)
}

// NormalizeItems expects a list but accepts a lone object when no list can
// be recovered.
func NormalizeItems(raw string) Outcome {
	out := Normalize(raw, Array)
	if out.IsStructured() {
		return out
	}
	if obj := Normalize(raw, Object); obj.IsStructured() {
		return obj
	}
	return out
}

// StripFences trims whitespace and removes a leading ```lang fence and a
// trailing ``` fence.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && isFenceTag(text[:nl]) {
			text = text[nl+1:]
		} else {
			text = strings.TrimLeft(text, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
		text = strings.TrimSpace(text)
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	return text
}

func isFenceTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

func decode(text string, expect Shape) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	if !expect.matches(v) {
		return nil, false
	}
	return v, true
}

// candidateSpans lists substrings that may hold the expected value: every
// top-level balanced span, in order, followed by the span from the first
// opening to the last closing delimiter.
func candidateSpans(text string, expect Shape) []string {
	open, close := expect.delimiters()
	var spans []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		spans = append(spans, s)
	}

	// nested spans are fragments of the one enclosing them
	end := -1
	for _, p := range balancedPairs(text, open, close) {
		if p.start < end {
			continue
		}
		add(text[p.start : p.end+1])
		end = p.end
	}

	first := strings.IndexByte(text, open)
	last := strings.LastIndexByte(text, close)
	if first >= 0 && last > first {
		add(text[first : last+1])
	}
	return spans
}

type pair struct {
	start, end int
}

// balancedPairs matches delimiters in one pass from the first opening
// delimiter, skipping delimiters inside JSON strings. Pairs are ordered by
// start; unmatched delimiters are ignored.
func balancedPairs(text string, open, close byte) []pair {
	from := strings.IndexByte(text, open)
	if from < 0 {
		return nil
	}

	var (
		pairs    []pair
		stack    []int
		inString bool
		escape   bool
	)
	for i := from; i < len(text); i++ {
		c := text[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			switch c {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			stack = append(stack, i)
		case close:
			if len(stack) == 0 {
				continue
			}
			pairs = append(pairs, pair{start: stack[len(stack)-1], end: i})
			stack = stack[:len(stack)-1]
		}
	}

	sort.Slice(pairs, func(a, b int) bool { return pairs[a].start < pairs[b].start })
	return pairs
}
