// Package voice models a character's configured speech style and the
// statistics observed from the lines analyzed for that character.
package voice

import (
	"math"
	"time"
)

// DefaultParam is used for any parameter left unspecified.
const DefaultParam = 0.5

// Params are a character's resolved voice parameters, each in [0,1].
type Params struct {
	Formality            float64 `json:"formality" yaml:"formality"`
	Verbosity            float64 `json:"verbosity" yaml:"verbosity"`
	EmotionIntensity     float64 `json:"emotion_intensity" yaml:"emotion_intensity"`
	InterruptionTendency float64 `json:"interruption_tendency" yaml:"interruption_tendency"`
	QuestionFrequency    float64 `json:"question_frequency" yaml:"question_frequency"`
}

// DefaultParams returns every parameter at DefaultParam.
func DefaultParams() Params {
	return Params{
		Formality:            DefaultParam,
		Verbosity:            DefaultParam,
		EmotionIntensity:     DefaultParam,
		InterruptionTendency: DefaultParam,
		QuestionFrequency:    DefaultParam,
	}
}

// Description is a partial voice configuration. Nil fields take DefaultParam.
type Description struct {
	Formality            *float64 `json:"formality,omitempty" yaml:"formality"`
	Verbosity            *float64 `json:"verbosity,omitempty" yaml:"verbosity"`
	EmotionIntensity     *float64 `json:"emotion_intensity,omitempty" yaml:"emotion_intensity"`
	InterruptionTendency *float64 `json:"interruption_tendency,omitempty" yaml:"interruption_tendency"`
	QuestionFrequency    *float64 `json:"question_frequency,omitempty" yaml:"question_frequency"`
}

// Value is a convenience for building a Description literal.
func Value(v float64) *float64 {
	return &v
}

// Resolve applies defaults and clamps every value into [0,1].
func (d Description) Resolve() Params {
	return Params{
		Formality:            resolve(d.Formality),
		Verbosity:            resolve(d.Verbosity),
		EmotionIntensity:     resolve(d.EmotionIntensity),
		InterruptionTendency: resolve(d.InterruptionTendency),
		QuestionFrequency:    resolve(d.QuestionFrequency),
	}
}

func resolve(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return DefaultParam
	}
	return clamp(*v)
}

func clamp(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// Observation is one analyzed line as seen by the voice tracker.
type Observation struct {
	Sequence       int       `json:"sequence"`
	Text           string    `json:"text"`
	Tone           string    `json:"tone"`
	SentenceLength float64   `json:"sentence_length"`
	HasSentences   bool      `json:"has_sentences"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// Profile is a character's configuration plus accumulated statistics.
// Statistics only grow; SetParams leaves them untouched.
type Profile struct {
	name         string
	params       Params
	observations []Observation
	toneCounts   map[string]int
	lengthSum    float64
	lengthCount  int
	consistency  float64
}

// NewProfile creates an empty profile.
func NewProfile(name string, params Params) *Profile {
	return &Profile{
		name:        name,
		params:      params,
		toneCounts:  make(map[string]int),
		consistency: SingleSampleConsistency,
	}
}

func (p *Profile) Name() string   { return p.name }
func (p *Profile) Params() Params { return p.params }

// SetParams replaces the configured parameters.
func (p *Profile) SetParams(params Params) {
	p.params = params
}

// LineCount is the number of observations recorded.
func (p *Profile) LineCount() int {
	return len(p.observations)
}

// AvgSentenceLength is the running mean of per-line sentence lengths over
// lines that contained at least one sentence.
func (p *Profile) AvgSentenceLength() float64 {
	if p.lengthCount == 0 {
		return 0
	}
	return p.lengthSum / float64(p.lengthCount)
}

// ToneCounts returns a copy of the tone label occurrence counts.
func (p *Profile) ToneCounts() map[string]int {
	out := make(map[string]int, len(p.toneCounts))
	for k, v := range p.toneCounts {
		out[k] = v
	}
	return out
}

// Consistency is the score computed after the most recent observation.
func (p *Profile) Consistency() float64 {
	return p.consistency
}

// Reset discards all statistics but keeps the configured parameters.
func (p *Profile) Reset() {
	p.observations = nil
	p.toneCounts = make(map[string]int)
	p.lengthSum = 0
	p.lengthCount = 0
	p.consistency = SingleSampleConsistency
}

func (p *Profile) append(o Observation) {
	p.observations = append(p.observations, o)
	p.toneCounts[o.Tone]++
	if o.HasSentences {
		p.lengthSum += o.SentenceLength
		p.lengthCount++
	}
}
