// Package scene describes the narrative moment lines are analyzed against.
package scene

import (
	"strings"

	"github.com/MikeSquared-Agency/parley/internal/errs"
)

const (
	MinTension = 0
	MaxTension = 10

	// HighTension is the level at which analyzers switch to their tense policy.
	HighTension = 7
)

// Context is an immutable scene description. Build it with New.
type Context struct {
	Setting    string   `json:"setting"`
	Mood       string   `json:"mood"`
	Tension    int      `json:"tension"`
	Characters []string `json:"characters"`
	PlotPoints []string `json:"plot_points,omitempty"`
}

// New validates tension and returns a scene. The cast is de-duplicated with
// first-seen order kept and blank names dropped.
func New(setting, mood string, tension int, characters []string, plotPoints ...string) (*Context, error) {
	if tension < MinTension || tension > MaxTension {
		return nil, errs.Validation("tension %d is out of range [%d, %d]", tension, MinTension, MaxTension)
	}
	return &Context{
		Setting:    setting,
		Mood:       mood,
		Tension:    tension,
		Characters: dedupe(characters),
		PlotPoints: nonEmpty(plotPoints),
	}, nil
}

// IsHighTension reports whether c is non-nil and at or above HighTension.
func (c *Context) IsHighTension() bool {
	return c != nil && c.Tension >= HighTension
}

// TensionLevel returns c's tension, or 0 when no scene is active.
func (c *Context) TensionLevel() int {
	if c == nil {
		return 0
	}
	return c.Tension
}

// HasCharacter reports whether name is in the cast. An empty cast admits anyone.
func (c *Context) HasCharacter(name string) bool {
	if c == nil || len(c.Characters) == 0 {
		return true
	}
	for _, n := range c.Characters {
		if n == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, or nil for a nil receiver.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Characters = append([]string(nil), c.Characters...)
	cp.PlotPoints = append([]string(nil), c.PlotPoints...)
	return &cp
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
