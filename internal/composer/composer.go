// Package composer is the dialogue analysis session: it owns the registered
// character voices and the active scene, analyzes one line at a time and
// keeps the ordered history for export.
//
// A Composer is not safe for concurrent use. Give each session its own.
package composer

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/parley/internal/cliche"
	"github.com/MikeSquared-Agency/parley/internal/errs"
	"github.com/MikeSquared-Agency/parley/internal/pacing"
	"github.com/MikeSquared-Agency/parley/internal/patterns"
	"github.com/MikeSquared-Agency/parley/internal/scene"
	"github.com/MikeSquared-Agency/parley/internal/suggest"
	"github.com/MikeSquared-Agency/parley/internal/tone"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

// commonTonesShown is how many tones a summary lists as most common.
const commonTonesShown = 3

// Composer orchestrates analysis for one writing session.
type Composer struct {
	table      *patterns.Table
	detector   *cliche.Detector
	classifier *tone.Classifier
	tracker    *voice.Tracker
	logger     *slog.Logger
	now        func() time.Time

	characters map[string]*voice.Profile
	scene      *scene.Context
	history    []AnalysisResult
}

// Option configures a Composer.
type Option func(*Composer)

// WithTable replaces the built-in pattern table.
func WithTable(t *patterns.Table) Option {
	return func(c *Composer) {
		if t != nil {
			c.table = t
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the source of observation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty session.
func New(opts ...Option) *Composer {
	c := &Composer{
		table:      patterns.Default(),
		logger:     slog.Default(),
		now:        time.Now,
		characters: make(map[string]*voice.Profile),
	}
	for _, o := range opts {
		o(c)
	}
	c.detector = cliche.New(c.table)
	c.classifier = tone.New(c.table)
	c.tracker = voice.NewTracker(len(c.classifier.Labels()))
	return c
}

// AddCharacter registers name or, if it is already registered, replaces its
// voice parameters while keeping the observed statistics.
func (c *Composer) AddCharacter(name string, desc voice.Description) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	params := desc.Resolve()
	if p, ok := c.characters[name]; ok {
		p.SetParams(params)
		c.logger.Debug("character voice updated", "character", name)
		return nil
	}
	c.characters[name] = voice.NewProfile(name, params)
	c.logger.Debug("character registered", "character", name)
	return nil
}

// ValidateName checks that name can identify a character. Names are looked
// up exactly, so surrounding whitespace is rejected instead of trimmed.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errs.Validation("character name must not be empty")
	}
	if trimmed != name {
		return errs.Validation("character name %q has surrounding whitespace", name)
	}
	return nil
}

// HasCharacter reports whether name is registered.
func (c *Composer) HasCharacter(name string) bool {
	_, ok := c.characters[name]
	return ok
}

// ResetCharacter clears name's statistics. Its parameters are kept.
func (c *Composer) ResetCharacter(name string) error {
	p, ok := c.characters[name]
	if !ok {
		return errs.UnknownCharacter(name)
	}
	p.Reset()
	return nil
}

// Characters returns the registered names in sorted order.
func (c *Composer) Characters() []string {
	names := make([]string, 0, len(c.characters))
	for n := range c.characters {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// SetSceneContext validates and installs a new scene. On error the previous
// scene stays active.
func (c *Composer) SetSceneContext(setting, mood string, tension int, characters []string, plotPoints ...string) error {
	sc, err := scene.New(setting, mood, tension, characters, plotPoints...)
	if err != nil {
		return err
	}
	c.scene = sc
	c.logger.Debug("scene set", "setting", setting, "mood", mood, "tension", tension)
	return nil
}

// Scene returns a copy of the active scene, or nil.
func (c *Composer) Scene() *scene.Context {
	return c.scene.Clone()
}

// AnalyzeDialogueLine analyzes one line spoken by a registered character,
// records it in the speaker's profile and the session history, and returns
// the result. Nothing is recorded when it fails.
func (c *Composer) AnalyzeDialogueLine(speaker, text, context string) (AnalysisResult, error) {
	profile, ok := c.characters[speaker]
	if !ok {
		return AnalysisResult{}, errs.UnknownCharacter(speaker)
	}

	matches := c.detector.Detect(text)
	tropes := c.detector.Tropes(text)
	near := c.detector.NearMisses(text)
	label := c.classifier.Classify(text, c.scene)
	stats := pacing.Measure(text)
	score := pacing.Score(text, c.scene.TensionLevel())

	suggestions := suggest.Compose(suggest.Input{
		Speaker:                speaker,
		Text:                   text,
		Cliches:                matches,
		Tropes:                 tropes,
		Tone:                   label,
		Pacing:                 score,
		Params:                 profile.Params(),
		Scene:                  c.scene,
		SentenceLength:         stats.AvgSentenceLength,
		HasSentences:           stats.SentenceCount > 0,
		PriorAvgSentenceLength: profile.AvgSentenceLength(),
		PriorLines:             profile.LineCount(),
	})

	now := c.now()
	seq := len(c.history) + 1
	consistency := c.tracker.Record(profile, voice.Observation{
		Sequence:       seq,
		Text:           text,
		Tone:           label,
		SentenceLength: stats.AvgSentenceLength,
		HasSentences:   stats.SentenceCount > 0,
		RecordedAt:     now,
	})

	phrases := make([]string, len(matches))
	for i, m := range matches {
		phrases[i] = m.Phrase
	}

	res := AnalysisResult{
		Sequence:          seq,
		Speaker:           speaker,
		Text:              text,
		Context:           context,
		EmotionalTone:     label,
		PacingScore:       score,
		ClichesDetected:   phrases,
		ClicheCount:       len(phrases),
		Suggestions:       orEmpty(suggestions),
		WordCount:         stats.WordCount,
		SentenceCount:     stats.SentenceCount,
		AvgSentenceLength: stats.AvgSentenceLength,
		TropesDetected:    orEmpty(tropes),
		NearCliches:       orEmpty(near),
		ConsistencyScore:  consistency,
		RecordedAt:        now,
	}
	c.history = append(c.history, res)

	c.logger.Debug("line analyzed",
		"speaker", speaker,
		"sequence", seq,
		"tone", label,
		"pacing", score,
		"cliches", len(phrases),
	)
	return res.clone(), nil
}

// History returns a copy of every stored result in analysis order.
func (c *Composer) History() []AnalysisResult {
	out := make([]AnalysisResult, len(c.history))
	for i, r := range c.history {
		out[i] = r.clone()
	}
	return out
}

// SuggestAlternatives returns fresh phrasings for the first cliché in text,
// ordered for character's voice.
func (c *Composer) SuggestAlternatives(text, character string) ([]string, error) {
	profile, ok := c.characters[character]
	if !ok {
		return nil, errs.UnknownCharacter(character)
	}
	entry, err := suggest.Lookup(c.detector, text)
	if err != nil {
		return nil, err
	}
	return suggest.Alternatives(entry, profile.Params()), nil
}

// GetCharacterVoiceSummary reports what has been observed for speaker.
func (c *Composer) GetCharacterVoiceSummary(speaker string) (Summary, error) {
	profile, ok := c.characters[speaker]
	if !ok {
		return Summary{}, errs.UnknownCharacter(speaker)
	}
	return summarize(profile), nil
}

// ImproveLine proposes rewrites of text in speaker's voice. It does not
// analyze or record the line.
func (c *Composer) ImproveLine(speaker, text string) (Improvement, error) {
	profile, ok := c.characters[speaker]
	if !ok {
		return Improvement{}, errs.UnknownCharacter(speaker)
	}
	matches := c.detector.Detect(text)
	phrases := make([]string, len(matches))
	for i, m := range matches {
		phrases[i] = m.Phrase
	}
	return Improvement{
		Speaker:     speaker,
		Original:    text,
		Cliches:     phrases,
		Versions:    orEmpty(suggest.Improve(text, matches, profile.Params(), improveVersions)),
		VoiceNotes:  suggest.VoiceGuidance(profile.Params()),
		SceneAdvice: suggest.SceneAdvice(c.scene),
	}, nil
}

// ContextAdvice gives direction for speaker's next line in the active scene.
func (c *Composer) ContextAdvice(speaker string) (suggest.ContextAdvice, error) {
	profile, ok := c.characters[speaker]
	if !ok {
		return suggest.ContextAdvice{}, errs.UnknownCharacter(speaker)
	}
	if c.scene == nil {
		return suggest.ContextAdvice{}, errs.Validation("no scene context set")
	}
	return suggest.NewContextAdvice(speaker, profile.Params(), c.scene), nil
}

// ExportAnalysisReport returns a snapshot of the whole session. The report
// shares no memory with the composer, and exporting an unchanged session
// twice yields equal reports.
func (c *Composer) ExportAnalysisReport() Report {
	rep := Report{
		TotalLines:         len(c.history),
		CharactersAnalyzed: len(c.characters),
		Scene:              c.scene.Clone(),
		Characters:         make(map[string]Summary, len(c.characters)),
		History:            c.History(),
		Overall: Patterns{
			ToneDistribution: make(map[string]int),
			ClicheFrequency:  make(map[string]int),
		},
	}
	for name, p := range c.characters {
		rep.Characters[name] = summarize(p)
	}

	var words int
	for _, r := range c.history {
		rep.Overall.ToneDistribution[r.EmotionalTone]++
		for _, ph := range r.ClichesDetected {
			rep.Overall.ClicheFrequency[ph]++
		}
		words += r.WordCount
	}
	if len(c.history) > 0 {
		rep.Overall.AvgDialogueLength = float64(words) / float64(len(c.history))
	}
	return rep
}

const improveVersions = 3

func summarize(p *voice.Profile) Summary {
	counts := p.ToneCounts()
	return Summary{
		Name:              p.Name(),
		LineCount:         p.LineCount(),
		AvgSentenceLength: p.AvgSentenceLength(),
		ToneCounts:        counts,
		CommonTones:       commonTones(counts, commonTonesShown),
		ConsistencyScore:  p.Consistency(),
		Voice:             p.Params(),
		VoiceGuidance:     suggest.VoiceGuidance(p.Params()),
	}
}

// commonTones returns up to n tones by descending count, ties by label.
func commonTones(counts map[string]int, n int) []ToneCount {
	out := make([]ToneCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, ToneCount{Tone: label, Count: count})
	}
	slices.SortFunc(out, func(a, b ToneCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tone, b.Tone)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
