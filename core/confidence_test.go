package core

import "testing"

func TestResolveConfidence_WordCountThresholds(t *testing.T) {
	cases := []struct {
		words int
		want  Confidence
	}{
		{0, ConfidenceLow},
		{24, ConfidenceLow},
		{25, ConfidenceMedium},
		{59, ConfidenceMedium},
		{60, ConfidenceHigh},
		{500, ConfidenceHigh},
	}
	for _, c := range cases {
		if got := ResolveConfidence("", c.words); got != c.want {
			t.Errorf("ResolveConfidence(%d words) = %s, want %s", c.words, got, c.want)
		}
	}
}

func TestResolveConfidence_HintWins(t *testing.T) {
	if got := ResolveConfidence("high", 3); got != ConfidenceHigh {
		t.Errorf("valid hint should override word count, got %s", got)
	}
	if got := ResolveConfidence("low", 200); got != ConfidenceLow {
		t.Errorf("valid hint should override word count, got %s", got)
	}
}

func TestResolveConfidence_InvalidHintFallsThrough(t *testing.T) {
	if got := ResolveConfidence("very sure", 10); got != ConfidenceLow {
		t.Errorf("invalid hint should fall back to word count, got %s", got)
	}
	if got := ResolveConfidence("HIGH", 10); got != ConfidenceLow {
		t.Errorf("hints are case-sensitive after decision normalization, got %s", got)
	}
}

func TestParseConfidence(t *testing.T) {
	if c, ok := ParseConfidence("medium"); !ok || c != ConfidenceMedium {
		t.Errorf("ParseConfidence(medium) = %s, %v", c, ok)
	}
	if _, ok := ParseConfidence("certain"); ok {
		t.Error("unrecognized level should not parse")
	}
	if !ConfidenceHigh.Valid() {
		t.Error("high should be valid")
	}
	if Confidence("shaky").Valid() {
		t.Error("shaky should not be valid")
	}
}
