package pacing

import (
	"math"
	"testing"
)

func TestScore_EmptyIsZero(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t", "?!", "..."} {
		for _, tension := range []int{0, 5, 10} {
			if got := Score(text, tension); got != 0.0 {
				t.Errorf("Score(%q, %d) = %f, want 0.0", text, tension, got)
			}
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	text := "Look, ignorance is bliss, but I'm not stupid! You hear me?"
	for _, tension := range []int{0, 3, 7, 10} {
		first := Score(text, tension)
		for i := 0; i < 5; i++ {
			if got := Score(text, tension); got != first {
				t.Fatalf("Score not deterministic at tension %d: %f vs %f", tension, got, first)
			}
		}
	}
}

func TestScore_Range(t *testing.T) {
	inputs := []string{
		"Run.",
		"Wait— no. No! Stop... please.",
		"I have been thinking, for a very long time now, about everything you said to me that night at the harbour.",
		"Yes.",
	}
	for _, text := range inputs {
		for tension := 0; tension <= 10; tension++ {
			got := Score(text, tension)
			if got < 0 || got > 1 || math.IsNaN(got) {
				t.Errorf("Score(%q, %d) = %f out of range", text, tension, got)
			}
		}
	}
}

func TestScore_HighTensionFavoursShortVariedLines(t *testing.T) {
	punchy := "Run. Now! They're coming for us, all of them, right now."
	long := "I think that we should probably leave this place before they arrive here."

	p, l := Score(punchy, 8), Score(long, 8)
	if p <= l {
		t.Errorf("punchy %f should beat long %f at high tension", p, l)
	}
	if math.Abs(p-0.8) > 1e-9 {
		t.Errorf("punchy score = %f, want 0.8", p)
	}
}

func TestScore_LowTensionDoesNotPenaliseLongUniformLines(t *testing.T) {
	long := "I think that we should probably leave this place before they arrive here."

	low, high := Score(long, 2), Score(long, 8)
	if low < 0.7 {
		t.Errorf("long line at low tension = %f, want >= 0.7", low)
	}
	if high >= low {
		t.Errorf("long line should score lower at high tension: high %f, low %f", high, low)
	}
}

func TestScore_InterruptionsHelpUnderTension(t *testing.T) {
	if Score("Wait—", 9) <= Score("Wait.", 9) {
		t.Error("interruption marker should raise the score under tension")
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		sentences     int
		words         int
		interruptions int
	}{
		{"ellipsis splits and counts", "I... I don't know.", 2, 4, 1},
		{"em dash", "You— you lied to me!", 1, 5, 1},
		{"double hyphen", "Stop--please!", 1, 2, 1},
		{"contractions are one word", "I'm not stupid!", 1, 3, 0},
		{"empty", "", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Measure(tt.text)
			if st.SentenceCount != tt.sentences {
				t.Errorf("SentenceCount = %d, want %d", st.SentenceCount, tt.sentences)
			}
			if st.WordCount != tt.words {
				t.Errorf("WordCount = %d, want %d", st.WordCount, tt.words)
			}
			if st.Interruptions != tt.interruptions {
				t.Errorf("Interruptions = %d, want %d", st.Interruptions, tt.interruptions)
			}
		})
	}
}
