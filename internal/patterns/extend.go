package patterns

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/parley/internal/errs"
)

// Extension is the on-disk form of additional pattern rows.
//
//	cliches:
//	  - phrase: at the end of the day
//	    alternatives: [when it comes down to it, bottom line]
//	tones:
//	  - label: defensive
//	    keywords: [not my fault]
type Extension struct {
	Cliches []struct {
		Phrase       string   `yaml:"phrase"`
		Alternatives []string `yaml:"alternatives"`
	} `yaml:"cliches"`
	Tones []struct {
		Label    string   `yaml:"label"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"tones"`
	Tropes []struct {
		Category string   `yaml:"category"`
		Severity string   `yaml:"severity"`
		Phrases  []string `yaml:"phrases"`
	} `yaml:"tropes"`
}

// LoadFile reads an extension file and merges it over base.
func LoadFile(base *Table, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("patterns: open %q: %w", path, err)
	}
	defer f.Close()

	t, err := LoadFromReader(base, f)
	if err != nil {
		return nil, fmt.Errorf("patterns: load %q: %w", path, err)
	}
	return t, nil
}

// LoadFromReader decodes a YAML extension from r and merges it over base.
func LoadFromReader(base *Table, r io.Reader) (*Table, error) {
	var ext Extension
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ext); err != nil && !errors.Is(err, io.EOF) {
		return nil, &errs.Error{Kind: errs.KindValidation, Message: "decode pattern yaml", Err: err}
	}
	return base.Extend(ext)
}

// Extend returns a copy of t with ext merged in. Rows that normalize to an
// existing phrase or label extend that row; new rows are appended so existing
// declaration order is preserved.
func (t *Table) Extend(ext Extension) (*Table, error) {
	var problems []error
	out := t.clone()

	for i, c := range ext.Cliches {
		n := Normalize(c.Phrase)
		if n == "" {
			problems = append(problems, fmt.Errorf("cliches[%d].phrase is empty", i))
			continue
		}
		idx := -1
		for j := range out.Cliches {
			if out.Cliches[j].Normalized == n {
				idx = j
				break
			}
		}
		if idx >= 0 {
			out.Cliches[idx].Alternatives = appendUnique(out.Cliches[idx].Alternatives, c.Alternatives...)
			continue
		}
		if len(nonBlank(c.Alternatives)) == 0 {
			problems = append(problems, fmt.Errorf("cliches[%d] %q needs at least one alternative", i, c.Phrase))
			continue
		}
		out.Cliches = append(out.Cliches, NewClicheEntry(c.Phrase, nonBlank(c.Alternatives)...))
	}

	for i, r := range ext.Tones {
		if r.Label == "" {
			problems = append(problems, fmt.Errorf("tones[%d].label is required", i))
			continue
		}
		idx := -1
		for j := range out.Tones {
			if out.Tones[j].Label == r.Label {
				idx = j
				break
			}
		}
		if idx >= 0 {
			kw := appendUnique(out.Tones[idx].Keywords, r.Keywords...)
			out.Tones[idx] = NewToneRule(r.Label, kw...)
			continue
		}
		out.Tones = append(out.Tones, NewToneRule(r.Label, nonBlank(r.Keywords)...))
	}

	for i, r := range ext.Tropes {
		if r.Category == "" {
			problems = append(problems, fmt.Errorf("tropes[%d].category is required", i))
			continue
		}
		severity := r.Severity
		if severity == "" {
			severity = "medium"
		}
		idx := -1
		for j := range out.Tropes {
			if out.Tropes[j].Category == r.Category {
				idx = j
				break
			}
		}
		if idx >= 0 {
			phrases := appendUnique(out.Tropes[idx].Phrases, r.Phrases...)
			out.Tropes[idx] = NewTropeRule(r.Category, out.Tropes[idx].Severity, phrases...)
			continue
		}
		out.Tropes = append(out.Tropes, NewTropeRule(r.Category, severity, nonBlank(r.Phrases)...))
	}

	if len(problems) > 0 {
		return nil, &errs.Error{Kind: errs.KindValidation, Message: "invalid pattern extension", Err: errors.Join(problems...)}
	}
	return out, nil
}

func (t *Table) clone() *Table {
	out := &Table{
		Cliches: make([]ClicheEntry, len(t.Cliches)),
		Tones:   make([]ToneRule, len(t.Tones)),
		Tropes:  make([]TropeRule, len(t.Tropes)),
	}
	for i, c := range t.Cliches {
		c.Alternatives = append([]string(nil), c.Alternatives...)
		out.Cliches[i] = c
	}
	copy(out.Tones, t.Tones)
	copy(out.Tropes, t.Tropes)
	return out
}

func appendUnique(dst []string, add ...string) []string {
	out := append([]string(nil), dst...)
	seen := make(map[string]struct{}, len(out))
	for _, s := range out {
		seen[Normalize(s)] = struct{}{}
	}
	for _, s := range add {
		n := Normalize(s)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, s)
	}
	return out
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if Normalize(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
