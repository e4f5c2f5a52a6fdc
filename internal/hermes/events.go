package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/parley/internal/composer"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

const (
	// SubjectLineSubmitted carries lines to analyze.
	SubjectLineSubmitted = "parley.dialogue.submitted"
	// SubjectLineAnalyzed carries analysis results.
	SubjectLineAnalyzed = "parley.dialogue.analyzed"
	// SubjectLineRejected reports lines that could not be analyzed.
	SubjectLineRejected = "parley.dialogue.rejected"
	// SubjectReportArchived announces a report written to the archive.
	SubjectReportArchived = "parley.report.archived"

	// QueueGroup is shared by all parley replicas.
	QueueGroup = "parley"
)

// LineSubmitted asks for one line to be analyzed in an open session. When
// Voice is set the speaker is registered (or re-voiced) first. When Scene is
// set it replaces the session's scene first.
type LineSubmitted struct {
	SessionID string             `json:"session_id"`
	Speaker   string             `json:"speaker"`
	Text      string             `json:"text"`
	Context   string             `json:"context,omitempty"`
	Voice     *voice.Description `json:"voice,omitempty"`
	Scene     *SceneSpec         `json:"scene,omitempty"`
}

// SceneSpec is a scene context carried in an event.
type SceneSpec struct {
	Setting    string   `json:"setting"`
	Mood       string   `json:"mood"`
	Tension    int      `json:"tension"`
	Characters []string `json:"characters"`
	PlotPoints []string `json:"plot_points,omitempty"`
}

// LineAnalyzed is published for every analyzed line.
type LineAnalyzed struct {
	SessionID string                  `json:"session_id"`
	Result    composer.AnalysisResult `json:"result"`
}

// LineRejected is published when a submitted line fails.
type LineRejected struct {
	SessionID string `json:"session_id"`
	Speaker   string `json:"speaker"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
}

// ReportArchived is published after a report is stored.
type ReportArchived struct {
	SessionID  string    `json:"session_id"`
	ReportID   string    `json:"report_id"`
	TotalLines int       `json:"total_lines"`
	ArchivedAt time.Time `json:"archived_at"`
}
