package routing

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"What's the Weather in SEOUL?", "what's the weather in seoul?"},
		{"  bitcoin   price  ", "bitcoin price"},
		{"\ttabs\nand\nnewlines\t", "tabs and newlines"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	input := "  What is   the WEATHER in Seoul  "
	once := Normalize(input)
	twice := Normalize(once)
	if once != twice {
		t.Errorf("Normalize is not idempotent: %q != %q", once, twice)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"what is the weather in seoul", []string{"weather", "seoul"}},
		{"bitcoin price", []string{"bitcoin", "price"}},
		{"translate hello to spanish", []string{"translate", "hello", "spanish"}},
		{"a an the", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.input)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTokenizeStripsPunctuation(t *testing.T) {
	got := Tokenize("weather, please!")
	if len(got) != 1 || got[0] != "weather" {
		t.Errorf("Tokenize(%q) = %v, want [weather]", "weather, please!", got)
	}
}
