package suggest

import (
	"math"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/parley/internal/cliche"
	"github.com/MikeSquared-Agency/parley/internal/errs"
	"github.com/MikeSquared-Agency/parley/internal/patterns"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

// terseLimit is the longest alternative, in words, offered to a terse speaker.
const terseLimit = 4

// Lookup returns the first cliché, by position, found in text.
func Lookup(d *cliche.Detector, text string) (patterns.ClicheEntry, error) {
	matches := d.Detect(text)
	if len(matches) == 0 {
		return patterns.ClicheEntry{}, errs.NotFound("no known cliché in %q", text)
	}
	return matches[0], nil
}

// Alternatives orders entry's stock alternatives for a speaker. Candidates
// whose word count is closest to the speaker's preferred length come first:
// formal and verbose speakers prefer longer rewordings, terse ones shorter.
// Formal speakers also push contractions back. Ties keep table order.
//
// The result is never empty when entry has alternatives.
func Alternatives(entry patterns.ClicheEntry, p voice.Params) []string {
	if len(entry.Alternatives) == 0 {
		return nil
	}
	type cand struct {
		text string
		cost float64
	}
	target := 1 + 5*(0.5*p.Formality+0.5*p.Verbosity)

	cands := make([]cand, 0, len(entry.Alternatives))
	for _, alt := range entry.Alternatives {
		words := len(strings.Fields(alt))
		if p.Verbosity < LowParam && words > terseLimit {
			continue
		}
		cost := math.Abs(float64(words) - target)
		if p.Formality >= HighParam && hasContraction(alt) {
			cost++
		}
		cands = append(cands, cand{text: alt, cost: cost})
	}
	if len(cands) == 0 {
		// Filtering must not leave a terse speaker with nothing.
		return Alternatives(entry, voice.Params{
			Formality:            p.Formality,
			Verbosity:            LowParam,
			EmotionIntensity:     p.EmotionIntensity,
			InterruptionTendency: p.InterruptionTendency,
			QuestionFrequency:    p.QuestionFrequency,
		})
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].cost < cands[j].cost })
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.text
	}
	return out
}

func hasContraction(s string) bool {
	return strings.ContainsAny(s, "'’")
}
