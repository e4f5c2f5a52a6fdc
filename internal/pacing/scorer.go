// Package pacing scores the rhythm of a dialogue line.
package pacing

import (
	"math"
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/parley/internal/scene"
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?…]+`)
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
)

// Stats describe a line's sentence structure.
type Stats struct {
	SentenceCount     int     `json:"sentence_count"`
	WordCount         int     `json:"word_count"`
	Lengths           []int   `json:"lengths"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	LengthCV          float64 `json:"length_cv"`
	Interruptions     int     `json:"interruptions"`
}

// Measure splits text on terminal punctuation and counts words per sentence.
// Fragments with no words are not sentences.
func Measure(text string) Stats {
	var st Stats
	for _, s := range sentenceEnd.Split(text, -1) {
		n := len(wordPattern.FindAllString(s, -1))
		if n == 0 {
			continue
		}
		st.Lengths = append(st.Lengths, n)
		st.WordCount += n
	}
	st.SentenceCount = len(st.Lengths)
	if st.SentenceCount > 0 {
		st.AvgSentenceLength = float64(st.WordCount) / float64(st.SentenceCount)
	}
	st.LengthCV = cv(st.Lengths, st.AvgSentenceLength)
	st.Interruptions = interruptions(text)
	return st
}

func cv(lengths []int, mean float64) float64 {
	if len(lengths) < 2 || mean == 0 {
		return 0
	}
	var variance float64
	for _, l := range lengths {
		d := float64(l) - mean
		variance += d * d
	}
	variance /= float64(len(lengths))
	return math.Sqrt(variance) / mean
}

func interruptions(text string) int {
	return strings.Count(text, "—") +
		strings.Count(text, "–") +
		strings.Count(text, "--") +
		strings.Count(text, "...") +
		strings.Count(text, "…")
}

// Score returns a rhythm score in [0,1] for text at the given scene tension.
// It is a pure function of its inputs. Text without words scores 0.
//
// At high tension short, varied sentences and interruptions score well and
// long uniform sentences score poorly. Below that, length is only credited
// up to a comfortable average and uniformity is not penalised.
func Score(text string, tension int) float64 {
	st := Measure(text)
	if st.SentenceCount == 0 {
		return 0.0
	}

	variety := math.Min(st.LengthCV/0.5, 1.0)
	breaks := math.Min(float64(st.Interruptions)/2.0, 1.0)

	var score float64
	if tension >= scene.HighTension {
		brevity := 1.0
		if st.AvgSentenceLength > 4 {
			brevity = math.Max(0, 1-(st.AvgSentenceLength-4)/16)
		}
		score = 0.45*brevity + 0.35*variety + 0.20*breaks
	} else {
		length := 0.4 + 0.6*math.Min(st.AvgSentenceLength/8, 1.0)
		score = 0.6*length + 0.25*(0.5+0.5*variety) + 0.15*(0.5+0.5*breaks)
	}
	return math.Max(0, math.Min(1, score))
}
