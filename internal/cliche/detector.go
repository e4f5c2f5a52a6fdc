// Package cliche finds stock phrases and dialogue tropes in a line.
//
// Exact detection is a substring test after [patterns.Normalize] on both
// sides, so case, punctuation and spacing never affect a match. Near misses
// ("thinking outside the box") are reported separately using Jaro-Winkler
// similarity over word windows and never count as detected clichés.
package cliche

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/MikeSquared-Agency/parley/internal/patterns"
)

const defaultNearThreshold = 0.93

// Option configures a Detector.
type Option func(*Detector)

// WithNearThreshold sets the minimum Jaro-Winkler similarity for a near miss.
func WithNearThreshold(threshold float64) Option {
	return func(d *Detector) {
		d.nearThreshold = threshold
	}
}

// Detector is read-only after construction and safe to share.
type Detector struct {
	table         *patterns.Table
	nearThreshold float64
}

// TropeMatch is a trope phrase found in a line.
type TropeMatch struct {
	Category string `json:"category"`
	Pattern  string `json:"pattern"`
	Severity string `json:"severity"`
}

// New returns a detector over table.
func New(table *patterns.Table, opts ...Option) *Detector {
	d := &Detector{table: table, nearThreshold: defaultNearThreshold}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Detect returns every entry whose normalized phrase occurs in text, ordered
// by first occurrence. Each entry appears at most once.
func (d *Detector) Detect(text string) []patterns.ClicheEntry {
	normalized := patterns.Normalize(text)
	if normalized == "" {
		return nil
	}

	type hit struct {
		entry patterns.ClicheEntry
		pos   int
	}
	var hits []hit
	for _, c := range d.table.Cliches {
		if c.Normalized == "" {
			continue
		}
		if pos := strings.Index(normalized, c.Normalized); pos >= 0 {
			hits = append(hits, hit{entry: c, pos: pos})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]patterns.ClicheEntry, len(hits))
	for i, h := range hits {
		out[i] = h.entry
	}
	return out
}

// Tropes returns the trope phrases found in text, in table order.
func (d *Detector) Tropes(text string) []TropeMatch {
	normalized := patterns.Normalize(text)
	if normalized == "" {
		return nil
	}
	var out []TropeMatch
	for _, r := range d.table.Tropes {
		for i, p := range r.Normalized {
			if patterns.CountWord(normalized, p) > 0 {
				out = append(out, TropeMatch{Category: r.Category, Pattern: r.Phrases[i], Severity: r.Severity})
			}
		}
	}
	return out
}

// NearMisses returns canonical phrases of entries that did not match exactly
// but closely resemble a run of words in text.
func (d *Detector) NearMisses(text string) []string {
	normalized := patterns.Normalize(text)
	words := strings.Fields(normalized)
	if len(words) == 0 {
		return nil
	}

	var out []string
	for _, c := range d.table.Cliches {
		if c.Normalized == "" || strings.Contains(normalized, c.Normalized) {
			continue
		}
		if d.resembles(words, c.Normalized) {
			out = append(out, c.Phrase)
		}
	}
	return out
}

// resembles slides windows of the phrase's word count, plus or minus one word
// to allow a dropped or inserted filler word, across words.
func (d *Detector) resembles(words []string, phrase string) bool {
	k := len(strings.Fields(phrase))
	for size := k - 1; size <= k+1; size++ {
		if size < 1 || size > len(words) {
			continue
		}
		for i := 0; i+size <= len(words); i++ {
			window := strings.Join(words[i:i+size], " ")
			if matchr.JaroWinkler(window, phrase, false) >= d.nearThreshold {
				return true
			}
		}
	}
	return false
}
