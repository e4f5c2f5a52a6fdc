package suggest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/parley/internal/patterns"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

type rewrite struct {
	re   *regexp.Regexp
	with string
}

func wordSwaps(pairs [][2]string) []rewrite {
	out := make([]rewrite, len(pairs))
	for i, p := range pairs {
		out[i] = rewrite{re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p[0]) + `\b`), with: p[1]}
	}
	return out
}

func removals(patterns ...string) []rewrite {
	out := make([]rewrite, len(patterns))
	for i, p := range patterns {
		out[i] = rewrite{re: regexp.MustCompile(p)}
	}
	return out
}

var (
	formalSwaps = wordSwaps([][2]string{
		{"can't", "cannot"}, {"won't", "will not"}, {"don't", "do not"},
		{"isn't", "is not"}, {"aren't", "are not"}, {"there's", "there is"},
		{"yeah", "yes"}, {"okay", "very well"}, {"sure", "certainly"},
	})
	casualSwaps = wordSwaps([][2]string{
		{"cannot", "can't"}, {"will not", "won't"}, {"do not", "don't"},
		{"is not", "isn't"}, {"are not", "aren't"}, {"very well", "okay"},
		{"certainly", "sure"}, {"perhaps", "maybe"},
	})
	verboseSwaps = wordSwaps([][2]string{
		{"bad", "absolutely terrible"}, {"good", "quite excellent"},
		{"big", "enormously large"}, {"small", "rather diminutive"},
		{"fast", "incredibly swift"}, {"slow", "painfully sluggish"},
		{"hard", "extraordinarily difficult"}, {"easy", "remarkably simple"},
	})
	terseCuts = removals(
		`(?i)\b(quite|rather|very|really|absolutely|completely)\s+`,
		`(?i)\b(i think|i believe|it seems|perhaps|maybe)\s+`,
		`(?i)\b(you know|like|sort of|kind of)\s+`,
		`(?i),\s*(which is|that is|as you know)`,
	)
	flatCuts = removals(`(?i)\b(absolutely|completely|utterly|totally|damn|really|very)\s+`)

	exclaims   = regexp.MustCompile(`!+`)
	ellipses   = regexp.MustCompile(`\.{3,}|…`)
	multiSpace = regexp.MustCompile(`\s+`)
	multiBang  = regexp.MustCompile(`!{2,}`)
)

func apply(text string, rules []rewrite) string {
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, r.with)
	}
	return text
}

// Adapt reshapes text toward a speaker's voice. It is deterministic: the
// same text and parameters always produce the same result.
func Adapt(text string, p voice.Params) string {
	out := text

	switch {
	case p.Formality > HighParam:
		out = apply(out, formalSwaps)
	case p.Formality < LowParam:
		out = apply(out, casualSwaps)
	}

	switch {
	case p.Verbosity > HighParam:
		out = apply(out, verboseSwaps)
	case p.Verbosity < LowParam:
		out = apply(out, terseCuts)
	}

	switch {
	case p.EmotionIntensity > HighParam:
		trimmed := strings.TrimSpace(out)
		if trimmed != "" && !strings.HasSuffix(trimmed, "!") && !strings.HasSuffix(trimmed, "?") &&
			!strings.HasSuffix(trimmed, "...") && !strings.HasSuffix(trimmed, "…") {
			out = strings.TrimRight(trimmed, ".") + "!"
		}
	case p.EmotionIntensity < LowParam:
		out = apply(out, flatCuts)
		out = exclaims.ReplaceAllString(out, ".")
		out = ellipses.ReplaceAllString(out, ".")
	}

	return strings.TrimSpace(multiSpace.ReplaceAllString(out, " "))
}

// Improve rewrites text up to n times, each version swapping every matched
// cliché for the next voice-ordered alternative adapted to the speaker.
func Improve(text string, matches []patterns.ClicheEntry, p voice.Params, n int) []string {
	if len(matches) == 0 || n <= 0 {
		return nil
	}

	type slot struct {
		re   *regexp.Regexp
		alts []string
	}
	slots := make([]slot, 0, len(matches))
	most := 0
	for _, m := range matches {
		alts := Alternatives(m, p)
		if len(alts) == 0 {
			continue
		}
		slots = append(slots, slot{re: phraseRegexp(m.Normalized), alts: alts})
		most = max(most, len(alts))
	}
	n = min(n, most)

	versions := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out := text
		for _, s := range slots {
			alt := Adapt(s.alts[min(i, len(s.alts)-1)], p)
			out = s.re.ReplaceAllStringFunc(out, func(found string) string {
				return matchCase(found, alt)
			})
		}
		out = multiBang.ReplaceAllString(out, "!")
		versions = append(versions, strings.TrimSpace(multiSpace.ReplaceAllString(out, " ")))
	}
	return versions
}

// phraseRegexp matches the original spelling of a normalized phrase:
// apostrophes may appear inside words and any separator between them.
func phraseRegexp(normalized string) *regexp.Regexp {
	words := strings.Fields(normalized)
	parts := make([]string, len(words))
	for i, w := range words {
		var b strings.Builder
		for j, r := range w {
			if j > 0 {
				b.WriteString(`['’]?`)
			}
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
		parts[i] = b.String()
	}
	return regexp.MustCompile(`(?i)` + strings.Join(parts, `[^\p{L}\p{N}]+`))
}

func matchCase(found, replacement string) string {
	first, _ := utf8.DecodeRuneInString(found)
	if replacement == "" || !unicode.IsUpper(first) {
		return replacement
	}
	r, size := utf8.DecodeRuneInString(replacement)
	return string(unicode.ToUpper(r)) + replacement[size:]
}
