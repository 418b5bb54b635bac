package ocr

import (
	"math"
	"testing"
)

func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		min      float64
		max      float64
	}{
		{"identical", "PERMIS DE CONDUIRE", "PERMIS DE CONDUIRE", 1, 1},
		{"case and spacing ignored", "permis  de\nconduire", "PERMIS DE CONDUIRE", 1, 1},
		{"one substitution", "PERMIS", "PARMIS", 0.8, 0.9},
		{"disjoint", "AAAA", "ZZZZ", 0, 0},
		{"both empty", "", "", 1, 1},
		{"one empty", "PERMIS", "", 0, 0},
	}

	for _, tt := range tests {
		got := TextSimilarity(tt.expected, tt.actual)
		if got < tt.min-0.001 || got > tt.max+0.001 {
			t.Errorf("%s: expected similarity in [%f,%f], got %f", tt.name, tt.min, tt.max, got)
		}
	}
}

func TestWordErrorRate(t *testing.T) {
	if got := WordErrorRate("", "anything"); got != 0 {
		t.Errorf("Expected 0 for empty reference, got %f", got)
	}

	if got := WordErrorRate("PERMIS DE CONDUIRE", "PERMIS DE CONDUIRE"); got != 0 {
		t.Errorf("Expected 0 for identical text, got %f", got)
	}

	got := WordErrorRate("PERMIS DE CONDUIRE", "PERMIS DE")
	if math.Abs(got-1.0/3.0) > 0.001 {
		t.Errorf("Expected WER ~0.333 for one deleted word, got %f", got)
	}
}
