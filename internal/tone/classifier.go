// Package tone assigns a single emotional-tone label to a line.
package tone

import (
	"github.com/MikeSquared-Agency/parley/internal/patterns"
	"github.com/MikeSquared-Agency/parley/internal/scene"
)

// Labels used when no keyword rule fires.
const (
	Tense   = "tense"
	Neutral = "neutral"
)

// Classifier is read-only after construction and safe to share.
type Classifier struct {
	table *patterns.Table
}

func New(table *patterns.Table) *Classifier {
	return &Classifier{table: table}
}

// Classify returns the rule label with the most keyword occurrences in text;
// ties go to the rule declared first. With no occurrences the label falls
// back to Tense in a high-tension scene and Neutral otherwise.
func (c *Classifier) Classify(text string, sc *scene.Context) string {
	normalized := patterns.Normalize(text)

	best, bestCount := "", 0
	for _, r := range c.table.Tones {
		count := 0
		for _, kw := range r.Normalized {
			count += patterns.CountWord(normalized, kw)
		}
		if count > bestCount {
			best, bestCount = r.Label, count
		}
	}
	if bestCount > 0 {
		return best
	}
	if sc.IsHighTension() {
		return Tense
	}
	return Neutral
}

// Labels returns every label Classify can produce.
func (c *Classifier) Labels() []string {
	labels := c.table.ToneLabels()
	seen := make(map[string]struct{}, len(labels)+2)
	out := make([]string, 0, len(labels)+2)
	for _, l := range append(labels, Tense, Neutral) {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
