package composer

import (
	"maps"
	"slices"
	"time"

	"github.com/MikeSquared-Agency/parley/internal/cliche"
	"github.com/MikeSquared-Agency/parley/internal/scene"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

// AnalysisResult is the outcome of analyzing one line. Stored results are
// never modified.
type AnalysisResult struct {
	Sequence          int                 `json:"sequence"`
	Speaker           string              `json:"speaker"`
	Text              string              `json:"text"`
	Context           string              `json:"context"`
	EmotionalTone     string              `json:"emotional_tone"`
	PacingScore       float64             `json:"pacing_score"`
	ClichesDetected   []string            `json:"cliches_detected"`
	ClicheCount       int                 `json:"cliche_count"`
	Suggestions       []string            `json:"suggestions"`
	WordCount         int                 `json:"word_count"`
	SentenceCount     int                 `json:"sentence_count"`
	AvgSentenceLength float64             `json:"avg_sentence_length"`
	TropesDetected    []cliche.TropeMatch `json:"tropes_detected"`
	NearCliches       []string            `json:"near_cliches"`
	ConsistencyScore  float64             `json:"consistency_score"`
	RecordedAt        time.Time           `json:"recorded_at"`
}

func (r AnalysisResult) clone() AnalysisResult {
	r.ClichesDetected = slices.Clone(r.ClichesDetected)
	r.Suggestions = slices.Clone(r.Suggestions)
	r.TropesDetected = slices.Clone(r.TropesDetected)
	r.NearCliches = slices.Clone(r.NearCliches)
	return r
}

// ToneCount is one entry of a tone ranking.
type ToneCount struct {
	Tone  string `json:"tone"`
	Count int    `json:"count"`
}

// Summary describes a character's configured and observed voice.
type Summary struct {
	Name              string         `json:"name"`
	LineCount         int            `json:"line_count"`
	AvgSentenceLength float64        `json:"avg_sentence_length"`
	ToneCounts        map[string]int `json:"tone_counts"`
	CommonTones       []ToneCount    `json:"common_tones"`
	ConsistencyScore  float64        `json:"consistency_score"`
	Voice             voice.Params   `json:"voice"`
	VoiceGuidance     []string       `json:"voice_guidance"`
}

func (s Summary) clone() Summary {
	s.ToneCounts = maps.Clone(s.ToneCounts)
	s.CommonTones = slices.Clone(s.CommonTones)
	s.VoiceGuidance = slices.Clone(s.VoiceGuidance)
	return s
}

// Patterns aggregates every analyzed line in a session.
type Patterns struct {
	ToneDistribution map[string]int `json:"tone_distribution"`
	ClicheFrequency  map[string]int `json:"cliche_frequency"`
	// AvgDialogueLength is the mean word count per line.
	AvgDialogueLength float64 `json:"avg_dialogue_length"`
}

// Report is an exported session. encoding/json writes map keys sorted, so
// the JSON form of a report is stable.
type Report struct {
	TotalLines         int                `json:"total_lines"`
	CharactersAnalyzed int                `json:"characters_analyzed"`
	Scene              *scene.Context     `json:"scene"`
	Characters         map[string]Summary `json:"characters"`
	History            []AnalysisResult   `json:"history"`
	Overall            Patterns           `json:"overall_patterns"`
}

// Clone returns a deep copy of r.
func (r Report) Clone() Report {
	out := r
	out.Scene = r.Scene.Clone()
	out.Characters = make(map[string]Summary, len(r.Characters))
	for k, v := range r.Characters {
		out.Characters[k] = v.clone()
	}
	out.History = make([]AnalysisResult, len(r.History))
	for i, h := range r.History {
		out.History[i] = h.clone()
	}
	out.Overall.ToneDistribution = maps.Clone(r.Overall.ToneDistribution)
	out.Overall.ClicheFrequency = maps.Clone(r.Overall.ClicheFrequency)
	return out
}

// Improvement holds proposed rewrites of a line.
type Improvement struct {
	Speaker     string   `json:"speaker"`
	Original    string   `json:"original"`
	Cliches     []string `json:"cliches"`
	Versions    []string `json:"versions"`
	VoiceNotes  []string `json:"voice_notes"`
	SceneAdvice []string `json:"scene_advice"`
}
