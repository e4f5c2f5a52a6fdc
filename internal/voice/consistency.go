package voice

import (
	"maps"
	"math"
	"slices"
)

// SingleSampleConsistency is reported while a profile has fewer than two
// observations, since spread over one sample is undefined.
const SingleSampleConsistency = 1.0

// Tracker records observations on profiles and scores their consistency.
type Tracker struct {
	// possibleLabels bounds the tone entropy normaliser.
	possibleLabels int
}

// NewTracker returns a tracker for a classifier that can emit possibleLabels
// distinct tone labels.
func NewTracker(possibleLabels int) *Tracker {
	if possibleLabels < 1 {
		possibleLabels = 1
	}
	return &Tracker{possibleLabels: possibleLabels}
}

// Record appends o to p and returns the recomputed consistency score.
func (t *Tracker) Record(p *Profile, o Observation) float64 {
	p.append(o)
	p.consistency = t.Consistency(p)
	return p.consistency
}

// Consistency scores p over its full history. Spread in sentence length
// (coefficient of variation) and tone entropy each cost up to half the score.
func (t *Tracker) Consistency(p *Profile) float64 {
	n := len(p.observations)
	if n < 2 {
		return SingleSampleConsistency
	}

	var lengths []float64
	for _, o := range p.observations {
		if o.HasSentences {
			lengths = append(lengths, o.SentenceLength)
		}
	}
	cv := math.Min(coefficientOfVariation(lengths), 1.0)

	h := entropy(p.toneCounts, n)
	hMax := math.Log2(float64(min(n, t.possibleLabels)))
	toneSpread := 0.0
	if hMax > 0 {
		toneSpread = math.Min(h/hMax, 1.0)
	}

	return clamp(1.0 - 0.5*cv - 0.5*toneSpread)
}

func coefficientOfVariation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance) / mean
}

// entropy is the Shannon entropy in bits of the label distribution.
func entropy(counts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}
	var h float64
	// Sorted keys keep the floating-point sum order stable.
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		c := counts[k]
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}
