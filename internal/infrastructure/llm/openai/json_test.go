package openai

import "testing"

func TestExtractJSONObjectPlain(t *testing.T) {
	raw := `{"policy": 0.9}`
	if got := extractJSONObject(raw); got != raw {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONObjectInsideProse(t *testing.T) {
	raw := "Sure, here is the classification:\n```json\n{\"policy\": 0.9, \"news\": 0.1}\n```\nLet me know if you need more."
	want := `{"policy": 0.9, "news": 0.1}`
	if got := extractJSONObject(raw); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractJSONObjectNested(t *testing.T) {
	raw := `prefix {"a": {"b": 1}, "c": 2} suffix`
	want := `{"a": {"b": 1}, "c": 2}`
	if got := extractJSONObject(raw); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractJSONObjectBracesInsideStrings(t *testing.T) {
	raw := `{"topic": "corn {and} ethanol", "escaped": "quote \" brace }"}`
	if got := extractJSONObject(raw); got != raw {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONObjectNoObjectReturnsInput(t *testing.T) {
	raw := "no json here at all"
	if got := extractJSONObject(raw); got != raw {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONObjectUnbalancedReturnsInput(t *testing.T) {
	raw := `{"policy": 0.9`
	if got := extractJSONObject(raw); got != raw {
		t.Fatalf("got %q", got)
	}
}
