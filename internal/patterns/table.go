// Package patterns holds the static cliché, tone and trope tables the analyzers
// match against. Tables are built once and shared read-only; extensions produce
// a new table rather than mutating an existing one.
package patterns

import "sync"

// ClicheEntry is a known overused phrase and its stock alternatives.
type ClicheEntry struct {
	Phrase       string   `json:"phrase"`
	Normalized   string   `json:"-"`
	Alternatives []string `json:"alternatives"`
}

// ToneRule maps trigger keywords to a tone label.
type ToneRule struct {
	Label      string   `json:"label"`
	Keywords   []string `json:"keywords"`
	Normalized []string `json:"-"`
}

// TropeRule groups trigger phrases for a dialogue trope.
type TropeRule struct {
	Category   string   `json:"category"`
	Severity   string   `json:"severity"`
	Phrases    []string `json:"phrases"`
	Normalized []string `json:"-"`
}

// Table is an immutable set of pattern rows. Declaration order is significant:
// it breaks ties in tone classification and orders report output.
type Table struct {
	Cliches []ClicheEntry
	Tones   []ToneRule
	Tropes  []TropeRule
}

// NewClicheEntry builds an entry with its normalized matching form.
func NewClicheEntry(phrase string, alternatives ...string) ClicheEntry {
	return ClicheEntry{
		Phrase:       phrase,
		Normalized:   Normalize(phrase),
		Alternatives: append([]string(nil), alternatives...),
	}
}

// NewToneRule builds a rule with normalized keywords.
func NewToneRule(label string, keywords ...string) ToneRule {
	return ToneRule{
		Label:      label,
		Keywords:   append([]string(nil), keywords...),
		Normalized: normalizeAll(keywords),
	}
}

// NewTropeRule builds a trope rule with normalized phrases.
func NewTropeRule(category, severity string, phrases ...string) TropeRule {
	return TropeRule{
		Category:   category,
		Severity:   severity,
		Phrases:    append([]string(nil), phrases...),
		Normalized: normalizeAll(phrases),
	}
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Normalize(s)
	}
	return out
}

// Cliche returns the entry whose normalized phrase equals Normalize(phrase).
func (t *Table) Cliche(phrase string) (ClicheEntry, bool) {
	n := Normalize(phrase)
	for _, c := range t.Cliches {
		if c.Normalized == n {
			return c, true
		}
	}
	return ClicheEntry{}, false
}

// ToneLabels returns every label the rules can produce, in declaration order.
func (t *Table) ToneLabels() []string {
	out := make([]string, len(t.Tones))
	for i, r := range t.Tones {
		out[i] = r.Label
	}
	return out
}

var defaultTable = sync.OnceValue(buildDefault)

// Default returns the shared built-in table. Callers must not modify it.
func Default() *Table {
	return defaultTable()
}

func buildDefault() *Table {
	return &Table{
		Cliches: []ClicheEntry{
			NewClicheEntry("think outside the box",
				"find a new angle", "break the pattern", "try something unexpected",
				"look at it differently", "challenge the assumptions"),
			NewClicheEntry("loose cannon",
				"unpredictable force", "wild card", "walking disaster",
				"chaos magnet", "human hurricane"),
			NewClicheEntry("perfect storm",
				"worst-case scenario", "everything going wrong at once", "complete disaster",
				"catastrophic alignment", "nightmare convergence"),
			NewClicheEntry("can of worms",
				"messy situation", "complicated problem", "tangled mess",
				"rabbit hole", "minefield"),
			NewClicheEntry("what goes around comes around",
				"karma catches up", "actions have consequences", "the universe balances things out",
				"payback time", "justice finds a way"),
			NewClicheEntry("dead as a doornail",
				"completely lifeless", "stone cold", "gone for good",
				"finished", "beyond saving"),
			NewClicheEntry("plenty of fish in the sea",
				"other opportunities out there", "not the only option", "more chances ahead",
				"different paths to explore", "other doors will open"),
			NewClicheEntry("ignorance is bliss",
				"sometimes not knowing is better", "knowledge can be a burden", "the truth hurts",
				"some things are better left unknown", "reality can be harsh"),
			NewClicheEntry("like a kid in a candy store",
				"absolutely thrilled", "overwhelmed with excitement", "eyes wide with wonder",
				"spoiled for choice", "drunk on possibilities"),
			NewClicheEntry("you can't judge a book by its cover",
				"appearances can be deceiving", "there's more than meets the eye",
				"looks don't tell the whole story", "first impressions can be wrong",
				"scratch the surface"),
			NewClicheEntry("take the tiger by the tail",
				"grab the risk with both hands", "dive in headfirst", "court the danger",
				"pick the fight anyway", "go all in"),
			NewClicheEntry("every rose has its thorn",
				"nothing good comes free", "there's always a catch", "beauty bites back",
				"even the best things cost something", "the sweet comes with the sting"),
			NewClicheEntry("good things come to those who wait",
				"patience pays", "the wait will be worth it", "hold steady a little longer",
				"give it time", "slow roads still arrive"),
			NewClicheEntry("in the nick of time",
				"just barely made it", "cutting it close", "with seconds to spare",
				"at the last possible moment", "pulled it off somehow"),
			NewClicheEntry("if only walls could talk",
				"this room has seen things", "imagine what happened here",
				"the place keeps its secrets", "these halls remember", "history hangs in the air"),
			NewClicheEntry("the apple doesn't fall far from the tree",
				"just like your father", "it runs in the family", "you're your mother's child",
				"blood tells", "you inherited that"),
			NewClicheEntry("the pot calling the kettle black",
				"look who's talking", "rich, coming from you", "you're one to judge",
				"that's a bit much from you", "mirror, meet yourself"),
			NewClicheEntry("the grass is always greener on the other side",
				"other lives always look easier", "wanting what you don't have",
				"envy paints everything gold", "it only looks better from here", "distance flatters"),
			NewClicheEntry("beating a dead horse",
				"pointless argument", "wasted effort", "going in circles",
				"talking to a wall", "spitting in the wind"),
		},
		Tones: []ToneRule{
			NewToneRule("angry", "furious", "rage", "damn", "hell", "angry", "mad", "pissed", "livid", "hate"),
			NewToneRule("sad", "tears", "crying", "hurt", "broken", "lost", "empty", "alone", "depressed", "sob"),
			NewToneRule("happy", "amazing", "wonderful", "fantastic", "love", "joy", "excited", "thrilled", "delighted"),
			NewToneRule("fearful", "scared", "terrified", "afraid", "nightmare", "panic", "dangerous", "worried", "anxious"),
			NewToneRule("sarcastic", "oh great", "fantastic", "wonderful", "sure", "right", "obviously", "brilliant", "perfect"),
			NewToneRule("romantic", "love", "heart", "beautiful", "forever", "soul", "kiss", "darling", "honey", "sweetheart"),
			NewToneRule("mysterious", "secret", "hidden", "shadow", "whisper", "unknown", "strange", "curious", "enigma"),
			NewToneRule("aggressive", "fight", "kill", "destroy", "attack", "war", "battle", "crush", "defeat"),
			NewToneRule("defensive", "told you", "already", "didn't do", "wasn't me", "innocent", "prove it"),
		},
		Tropes: []TropeRule{
			NewTropeRule("villain_monologue", "medium",
				"you see, my plan was", "before you die", "you cannot stop me", "i have already won"),
			NewTropeRule("exposition_dump", "medium",
				"as you know", "remember when we", "let me tell you about"),
			NewTropeRule("romantic_tension", "low",
				"you drive me crazy", "i hate that i love you", "we can't keep doing this"),
			NewTropeRule("conflict_escalation", "medium",
				"you always do this", "here we go again", "typical"),
		},
	}
}
