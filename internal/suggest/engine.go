// Package suggest turns analyzer output into writing advice and proposes
// fresh alternatives for clichéd phrases, shaped by the speaker's voice.
package suggest

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/MikeSquared-Agency/parley/internal/cliche"
	"github.com/MikeSquared-Agency/parley/internal/patterns"
	"github.com/MikeSquared-Agency/parley/internal/scene"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

const (
	// LowPacing is the score below which rhythm advice is given.
	LowPacing = 0.4

	// HighParam marks a strongly expressed voice trait.
	HighParam = 0.7
	// LowParam marks a weakly expressed voice trait.
	LowParam = 0.3

	// driftWords is how far a line's sentence length may stray from the
	// speaker's running average before it is called out.
	driftWords = 3.0

	alternativesShown = 3
)

// Input is everything Compose needs about one analyzed line.
type Input struct {
	Speaker string
	Text    string
	Cliches []patterns.ClicheEntry
	Tropes  []cliche.TropeMatch
	Tone    string
	Pacing  float64
	Params  voice.Params
	Scene   *scene.Context

	SentenceLength float64
	HasSentences   bool
	// PriorAvgSentenceLength and PriorLines describe the speaker before this line.
	PriorAvgSentenceLength float64
	PriorLines             int
}

// Compose applies each advice rule independently and returns the
// suggestions in rule order with duplicates removed.
func Compose(in Input) []string {
	var out []string
	who := in.Speaker
	if who == "" {
		who = "the speaker"
	}

	if len(in.Cliches) > 0 {
		quoted := make([]string, len(in.Cliches))
		for i, c := range in.Cliches {
			quoted[i] = fmt.Sprintf("%q", c.Phrase)
		}
		out = append(out, fmt.Sprintf(
			"Found %d cliché(s) (%s). Avoid stock phrasing and say it in a fresh, character-specific way.",
			len(in.Cliches), strings.Join(quoted, ", ")))
		for _, c := range in.Cliches {
			alts := Alternatives(c, in.Params)
			if len(alts) > alternativesShown {
				alts = alts[:alternativesShown]
			}
			out = append(out, fmt.Sprintf("Instead of %q, try: %s.", c.Phrase, quoteAll(alts)))
		}
	}

	if in.Pacing < LowPacing {
		out = append(out, "Pacing feels flat. Vary sentence length and add rhythm with punctuation and pauses.")
	}

	if in.Scene.IsHighTension() {
		if in.Params.InterruptionTendency >= 0.5 {
			out = append(out, fmt.Sprintf(
				"High tension scene: keep it short and punchy. Let %s cut in or break off mid-line with an em-dash.", who))
		} else {
			out = append(out, fmt.Sprintf(
				"High tension scene: keep it short and punchy. %s rarely interrupts, so show the strain through hesitation: a trailing ellipsis, a false start, a thought left unfinished.",
				capitalize(who)))
		}
		if in.Tone == "happy" || in.Tone == "romantic" {
			out = append(out, fmt.Sprintf(
				"The %s tone may clash with the high-tension scene. Consider matching the scene's intensity.", in.Tone))
		}
	}

	if in.Scene != nil && IsIntimateMood(in.Scene.Mood) && in.Params.Formality >= HighParam {
		out = append(out, fmt.Sprintf(
			"Intimate mood: %s's formal register may read as distant. Soften the phrasing with contractions and plainer words.", who))
	}

	if in.HasSentences && in.PriorLines > 0 && in.PriorAvgSentenceLength > 0 {
		if diff := math.Abs(in.SentenceLength - in.PriorAvgSentenceLength); diff > driftWords {
			out = append(out, fmt.Sprintf(
				"Voice drift: sentence length is %.1f words off %s's usual %.1f.", diff, who, in.PriorAvgSentenceLength))
		}
	}

	for _, tr := range in.Tropes {
		out = append(out, fmt.Sprintf(
			"This line leans on the %s trope (%q). Consider subverting it.",
			strings.ReplaceAll(tr.Category, "_", " "), tr.Pattern))
	}

	if in.Speaker != "" && !in.Scene.HasCharacter(in.Speaker) {
		out = append(out, fmt.Sprintf("%s is not listed in the current scene's cast.", in.Speaker))
	}

	return dedupe(out)
}

// IsIntimateMood reports whether mood signals intimacy or romance.
func IsIntimateMood(mood string) bool {
	return hasWord(mood, "romantic", "romance", "intimate", "intimacy", "tender",
		"love", "loving", "sensual", "flirty", "flirtatious", "passionate", "affectionate")
}

func hasWord(text string, words ...string) bool {
	for _, w := range strings.Fields(patterns.Normalize(text)) {
		if slices.Contains(words, w) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func quoteAll(in []string) string {
	q := make([]string, len(in))
	for i, s := range in {
		q[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(q, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
