// Package script loads dialogue scripts: a cast, a scene and the lines to
// analyze, written in YAML.
package script

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/parley/internal/composer"
	"github.com/MikeSquared-Agency/parley/internal/scene"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

// Script is a complete dialogue to analyze.
type Script struct {
	Characters []Character `yaml:"characters"`
	Scene      *Scene      `yaml:"scene"`
	Lines      []Line      `yaml:"lines"`
}

// Character declares a speaker and their voice.
type Character struct {
	Name  string            `yaml:"name"`
	Voice voice.Description `yaml:"voice"`
}

// Scene is the scene context. A line may carry its own Scene to change it.
type Scene struct {
	Setting    string   `yaml:"setting"`
	Mood       string   `yaml:"mood"`
	Tension    int      `yaml:"tension"`
	Characters []string `yaml:"characters"`
	PlotPoints []string `yaml:"plot_points"`
}

// Line is one line of dialogue.
type Line struct {
	Speaker string `yaml:"speaker"`
	Text    string `yaml:"text"`
	Context string `yaml:"context"`
	Scene   *Scene `yaml:"scene"`
}

// Load reads and validates the script at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("script: open %q: %w", path, err)
	}
	defer f.Close()

	s, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("script: parse %q: %w", path, err)
	}
	return s, nil
}

// LoadFromReader decodes a script from r and validates it.
func LoadFromReader(r io.Reader) (*Script, error) {
	s := &Script{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("script: empty document")
		}
		return nil, fmt.Errorf("script: decode yaml: %w", err)
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate returns every problem found in s, joined.
func Validate(s *Script) error {
	var errs []error

	if len(s.Characters) == 0 {
		errs = append(errs, errors.New("characters: at least one character is required"))
	}
	seen := make(map[string]int, len(s.Characters))
	for i, c := range s.Characters {
		prefix := fmt.Sprintf("characters[%d]", i)
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		if prev, ok := seen[c.Name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of characters[%d]", prefix, c.Name, prev))
		}
		seen[c.Name] = i
		warnOutOfRange(c)
	}

	if s.Scene != nil {
		errs = append(errs, validateScene("scene", s.Scene)...)
	}

	for i, l := range s.Lines {
		prefix := fmt.Sprintf("lines[%d]", i)
		if l.Speaker == "" {
			errs = append(errs, fmt.Errorf("%s.speaker is required", prefix))
		} else if _, ok := seen[l.Speaker]; !ok {
			errs = append(errs, fmt.Errorf("%s.speaker %q is not a declared character", prefix, l.Speaker))
		}
		if l.Scene != nil {
			errs = append(errs, validateScene(prefix+".scene", l.Scene)...)
		}
	}

	return errors.Join(errs...)
}

func validateScene(prefix string, sc *Scene) []error {
	if sc.Tension < scene.MinTension || sc.Tension > scene.MaxTension {
		return []error{fmt.Errorf("%s.tension %d is out of range [%d, %d]", prefix, sc.Tension, scene.MinTension, scene.MaxTension)}
	}
	return nil
}

// warnOutOfRange logs voice values that will be clamped.
func warnOutOfRange(c Character) {
	for field, v := range map[string]*float64{
		"formality":             c.Voice.Formality,
		"verbosity":             c.Voice.Verbosity,
		"emotion_intensity":     c.Voice.EmotionIntensity,
		"interruption_tendency": c.Voice.InterruptionTendency,
		"question_frequency":    c.Voice.QuestionFrequency,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			slog.Warn("voice value outside [0, 1] will be clamped",
				"character", c.Name,
				"field", field,
				"value", *v,
			)
		}
	}
}

// Apply registers the cast and scene on c, then analyzes every line in
// order. It returns the results of the analyzed lines.
func (s *Script) Apply(c *composer.Composer) ([]composer.AnalysisResult, error) {
	for _, ch := range s.Characters {
		if err := c.AddCharacter(ch.Name, ch.Voice); err != nil {
			return nil, fmt.Errorf("add character %q: %w", ch.Name, err)
		}
	}
	if err := setScene(c, s.Scene); err != nil {
		return nil, err
	}

	results := make([]composer.AnalysisResult, 0, len(s.Lines))
	for i, l := range s.Lines {
		if err := setScene(c, l.Scene); err != nil {
			return results, fmt.Errorf("line %d: %w", i, err)
		}
		res, err := c.AnalyzeDialogueLine(l.Speaker, l.Text, l.Context)
		if err != nil {
			return results, fmt.Errorf("line %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func setScene(c *composer.Composer, sc *Scene) error {
	if sc == nil {
		return nil
	}
	if err := c.SetSceneContext(sc.Setting, sc.Mood, sc.Tension, sc.Characters, sc.PlotPoints...); err != nil {
		return fmt.Errorf("set scene: %w", err)
	}
	return nil
}
