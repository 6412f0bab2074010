package parser

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FencedObject(t *testing.T) {
	out := Normalize("```json\n{\"a\":1}\n```", Object)

	require.True(t, out.IsStructured())
	assert.Equal(t, map[string]any{"a": float64(1)}, out.Value)
}

func TestNormalize_BareFence(t *testing.T) {
	out := Normalize("```\n[1, 2]\n```", Array)

	require.True(t, out.IsStructured())
	assert.Equal(t, []any{float64(1), float64(2)}, out.Value)
}

func TestNormalize_SingleLineFence(t *testing.T) {
	out := Normalize("```json {\"disease_detected\":\"Rust\"}```", Object)

	require.True(t, out.IsStructured())
	assert.Equal(t, "Rust", out.Value.(map[string]any)["disease_detected"])
}

func TestNormalize_ArrayInsideProse(t *testing.T) {
	raw := `Here is the answer: [{"type":"tedavi","description":"x","priority":3,"implementation_date":"2024-01-01"}] Hope this helps!`

	out := Normalize(raw, Array)

	require.True(t, out.IsStructured())
	items, ok := out.Value.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "tedavi", items[0].(map[string]any)["type"])
}

func TestNormalize_ObjectWithNestedBracesInProse(t *testing.T) {
	raw := "Analysis complete.\n{\"disease_detected\":\"Mildew\",\"meta\":{\"note\":\"brace } inside\"}}\nLet me know if you need more."

	out := Normalize(raw, Object)

	require.True(t, out.IsStructured())
	obj := out.Value.(map[string]any)
	assert.Equal(t, "Mildew", obj["disease_detected"])
	assert.Equal(t, map[string]any{"note": "brace } inside"}, obj["meta"])
}

func TestNormalize_SkipsBracketedProseBeforePayload(t *testing.T) {
	raw := `[Note] the list follows: [{"type":"budama","description":"Prune","priority":5,"implementation_date":"2024-06-01"}]`

	out := Normalize(raw, Array)

	require.True(t, out.IsStructured())
	items := out.Value.([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "budama", items[0].(map[string]any)["type"])
}

func TestNormalize_FirstBalancedSpanWins(t *testing.T) {
	// first-to-last would swallow "and later" and fail to decode
	raw := "Here: [1, 2, 3] and later [4]"

	out := Normalize(raw, Array)

	require.True(t, out.IsStructured())
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, out.Value)
}

func TestNormalize_BalancedSpanInsideUnclosedBracket(t *testing.T) {
	raw := `Notes [draft: [{"type":"budama"}]`

	out := Normalize(raw, Array)

	require.True(t, out.IsStructured())
	assert.Equal(t, []any{map[string]any{"type": "budama"}}, out.Value)
}

func TestNormalize_ManyUnclosedDelimiters(t *testing.T) {
	raw := strings.Repeat("[", 200000) + `[{"type":"x"}]`

	done := make(chan Outcome, 1)
	go func() { done <- Normalize(raw, Array) }()

	select {
	case out := <-done:
		require.True(t, out.IsStructured())
		assert.Equal(t, []any{map[string]any{"type": "x"}}, out.Value)
	case <-time.After(5 * time.Second):
		t.Fatal("normalize did not finish on unclosed input")
	}
}

func TestBalancedPairs(t *testing.T) {
	pairs := balancedPairs(`x ] {"a":"}"} { {"b":{}} `, '{', '}')

	assert.Equal(t, []pair{{4, 12}, {16, 23}, {21, 22}}, pairs)
	assert.Empty(t, balancedPairs("no delimiters", '[', ']'))
}

func TestNormalize_TypeMismatchFallsBackToSpan(t *testing.T) {
	raw := `{"items": [{"type":"x"}]}`

	out := Normalize(raw, Array)

	require.True(t, out.IsStructured())
	assert.Equal(t, []any{map[string]any{"type": "x"}}, out.Value)
}

func TestNormalize_Unstructured(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		expect Shape
		text   string
	}{
		{"plain prose", "  * Treatment: Apply fungicide\n", Array, "* Treatment: Apply fungicide"},
		{"empty", "", Object, ""},
		{"whitespace", " \n\t ", Array, ""},
		{"broken json", `{"disease_detected": "Rust",`, Object, `{"disease_detected": "Rust",`},
		{"fenced prose", "```\nno json here\n```", Object, "no json here"},
		{"scalar", "42", Array, "42"},
		{"object when array expected", `{"a": 1}`, Array, `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(tt.raw, tt.expect)
			assert.False(t, out.IsStructured())
			assert.Nil(t, out.Value)
			assert.Equal(t, tt.text, out.Text)
		})
	}
}

func TestNormalize_StructuredValueMatchesShape(t *testing.T) {
	inputs := []string{
		`{"a":1}`, `[1]`, `text {"a":[1,2]} text`, `[{"a":{}}] and {"b":2}`,
		"```json\n[]\n```", `}{][`, `"string"`, `null`, `{"unterminated": "`,
	}

	for _, raw := range inputs {
		for _, shape := range []Shape{Object, Array} {
			out := Normalize(raw, shape)
			if !out.IsStructured() {
				continue
			}
			switch shape {
			case Object:
				assert.IsType(t, map[string]any{}, out.Value, "input %q", raw)
			case Array:
				assert.IsType(t, []any{}, out.Value, "input %q", raw)
			}
		}
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	values := []struct {
		shape Shape
		value any
	}{
		{Object, map[string]any{"disease_detected": "Rust", "confidence_score": 0.8}},
		{Array, []any{map[string]any{"type": "tedavi", "priority": float64(4)}, "x"}},
		{Array, []any{}},
	}

	for _, v := range values {
		data, err := json.Marshal(v.value)
		require.NoError(t, err)

		out := Normalize(string(data), v.shape)

		require.True(t, out.IsStructured())
		assert.Equal(t, v.value, out.Value)
	}
}

func TestNormalizeItems_AcceptsLoneObject(t *testing.T) {
	raw := "Öneri:\n{\"type\":\"önleme\",\"description\":\"Havalandırma\",\"priority\":2,\"implementation_date\":\"2024-05-01\"}"

	out := NormalizeItems(raw)

	require.True(t, out.IsStructured())
	assert.Equal(t, "önleme", out.Value.(map[string]any)["type"])
}

func TestNormalizeItems_PrefersArray(t *testing.T) {
	out := NormalizeItems(`[{"type":"a"}]`)

	require.True(t, out.IsStructured())
	assert.IsType(t, []any{}, out.Value)
}

func TestNormalizeItems_Unstructured(t *testing.T) {
	out := NormalizeItems("1. Budama: Hasta dalları kesin")

	assert.False(t, out.IsStructured())
	assert.Equal(t, "1. Budama: Hasta dalları kesin", out.Text)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("  ```JSON\n{\"a\":1}\n```  "))
	assert.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
	assert.Equal(t, "text", StripFences("text\n```"))
}
