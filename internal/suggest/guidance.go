package suggest

import (
	"fmt"

	"github.com/MikeSquared-Agency/parley/internal/scene"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

// lowTension is the level below which a scene is treated as calm.
const lowTension = 3

// ContextAdvice is writing direction for a speaker's next line.
type ContextAdvice struct {
	Speaker             string   `json:"speaker"`
	ContextFactors      []string `json:"context_factors"`
	SuggestedDirections []string `json:"suggested_directions"`
	ToneRecommendations []string `json:"tone_recommendations"`
	PacingAdvice        []string `json:"pacing_advice"`
	VoiceGuidance       []string `json:"voice_guidance"`
}

// VoiceGuidance describes how to write for a voice in plain terms.
// Mid-range traits produce no guidance.
func VoiceGuidance(p voice.Params) []string {
	out := []string{}

	switch {
	case p.Formality > HighParam:
		out = append(out, "Maintain formal speech patterns: avoid contractions and slang.")
	case p.Formality < LowParam:
		out = append(out, "Keep it casual: use contractions and informal language.")
	}

	switch {
	case p.Verbosity > HighParam:
		out = append(out, "Character tends to be wordy: elaborate and explain.")
	case p.Verbosity < LowParam:
		out = append(out, "Character is economical with words: keep it brief and direct.")
	}

	switch {
	case p.EmotionIntensity > HighParam:
		out = append(out, "Character is emotionally expressive: use strong language and punctuation.")
	case p.EmotionIntensity < LowParam:
		out = append(out, "Character is emotionally restrained: keep the tone measured.")
	}

	if p.QuestionFrequency > HighParam {
		out = append(out, "Character asks a lot: let them probe with questions.")
	}
	return out
}

// SceneAdvice gives general direction for the active scene.
func SceneAdvice(sc *scene.Context) []string {
	if sc == nil {
		return []string{"Set a scene context for more targeted advice."}
	}

	out := []string{}
	switch {
	case sc.IsHighTension():
		out = append(out, "High tension: use shorter, more urgent dialogue.")
	case sc.Tension < lowTension:
		out = append(out, "Low tension: allow for longer, more contemplative dialogue.")
	}

	switch {
	case IsIntimateMood(sc.Mood):
		out = append(out, "Intimate scene: focus on subtext and emotional vulnerability.")
	case isMysteriousMood(sc.Mood):
		out = append(out, "Mysterious mood: use hints and implications rather than direct statements.")
	}
	return out
}

// NewContextAdvice assembles direction for speaker's next line in sc.
func NewContextAdvice(speaker string, p voice.Params, sc *scene.Context) ContextAdvice {
	adv := ContextAdvice{
		Speaker:             speaker,
		ContextFactors:      []string{},
		SuggestedDirections: []string{},
		ToneRecommendations: []string{},
		PacingAdvice:        []string{},
		VoiceGuidance:       VoiceGuidance(p),
	}
	if sc == nil {
		return adv
	}

	if sc.Setting != "" {
		adv.ContextFactors = append(adv.ContextFactors, "setting: "+sc.Setting)
	}
	if sc.Mood != "" {
		adv.ContextFactors = append(adv.ContextFactors, "mood: "+sc.Mood)
	}
	adv.ContextFactors = append(adv.ContextFactors, fmt.Sprintf("tension: %d/%d", sc.Tension, scene.MaxTension))
	for _, pp := range sc.PlotPoints {
		adv.ContextFactors = append(adv.ContextFactors, "plot point: "+pp)
	}

	if sc.IsHighTension() {
		adv.SuggestedDirections = append(adv.SuggestedDirections,
			"High tension scene: consider shorter, punchier dialogue with interruptions.")
		adv.ToneRecommendations = append(adv.ToneRecommendations, "urgent", "intense", "confrontational")
	}
	if IsIntimateMood(sc.Mood) {
		adv.ToneRecommendations = append(adv.ToneRecommendations, "intimate", "vulnerable", "tender")
	}
	if isMysteriousMood(sc.Mood) {
		adv.ToneRecommendations = append(adv.ToneRecommendations, "mysterious")
	}
	if speaker != "" && !sc.HasCharacter(speaker) {
		adv.SuggestedDirections = append(adv.SuggestedDirections,
			speaker+" is not in this scene's cast. Establish why they are present.")
	}

	if p.Formality > HighParam {
		adv.PacingAdvice = append(adv.PacingAdvice,
			"Character tends toward formal speech: consider longer, more structured sentences.")
	}
	if p.Verbosity < LowParam {
		adv.PacingAdvice = append(adv.PacingAdvice, "Keep lines clipped; one thought per sentence.")
	}
	if sc.IsHighTension() && p.InterruptionTendency >= 0.5 {
		adv.PacingAdvice = append(adv.PacingAdvice, "Let the line break off or be cut in on mid-thought.")
	}
	adv.ToneRecommendations = dedupe(adv.ToneRecommendations)
	return adv
}

func isMysteriousMood(mood string) bool {
	return hasWord(mood, "mysterious", "mystery", "eerie", "ominous", "secretive", "suspenseful")
}
