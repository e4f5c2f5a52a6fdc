package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/parley/internal/composer"
	"github.com/MikeSquared-Agency/parley/internal/errs"
	"github.com/MikeSquared-Agency/parley/internal/hermes"
	"github.com/MikeSquared-Agency/parley/internal/observe"
	"github.com/MikeSquared-Agency/parley/internal/session"
	"github.com/MikeSquared-Agency/parley/internal/store"
)

// ErrArchiveDisabled is returned by Archive when no report store is configured.
var ErrArchiveDisabled = errors.New("report archive is not configured")

// Publisher sends events to the bus.
type Publisher interface {
	Publish(subject string, data any) error
}

// ReportArchive persists exported reports.
type ReportArchive interface {
	SaveReport(ctx context.Context, sessionID uuid.UUID, rep composer.Report) (uuid.UUID, error)
	LatestReport(ctx context.Context, sessionID uuid.UUID) (*store.ReportRow, error)
}

// Processor connects sessions to the bus and the report archive. Both
// collaborators are optional.
type Processor struct {
	sessions *session.Manager
	archive  ReportArchive
	bus      Publisher
	metrics  *observe.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func New(sessions *session.Manager, archive ReportArchive, bus Publisher, metrics *observe.Metrics, logger *slog.Logger) *Processor {
	return &Processor{
		sessions: sessions,
		archive:  archive,
		bus:      bus,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleLineSubmitted is the NATS handler for parley.dialogue.submitted.
func (p *Processor) HandleLineSubmitted(subject string, data []byte) {
	ctx := context.Background()

	var evt hermes.LineSubmitted
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse line event", "error", err)
		p.recordBus(ctx, subject, "invalid")
		return
	}

	if _, err := p.Submit(ctx, evt); err != nil {
		p.logger.Warn("line rejected",
			"session", evt.SessionID,
			"speaker", evt.Speaker,
			"error", err,
		)
		p.recordBus(ctx, subject, "rejected")
		p.publish(hermes.SubjectLineRejected, hermes.LineRejected{
			SessionID: evt.SessionID,
			Speaker:   evt.Speaker,
			Kind:      string(errs.KindOf(err)),
			Error:     err.Error(),
		})
		return
	}
	p.recordBus(ctx, subject, "ok")
}

// Submit applies the event's optional voice and scene, analyzes the line and
// publishes the result.
func (p *Processor) Submit(ctx context.Context, evt hermes.LineSubmitted) (composer.AnalysisResult, error) {
	s, err := p.sessions.Lookup(evt.SessionID)
	if err != nil {
		return composer.AnalysisResult{}, err
	}

	res, err := p.sessions.AnalyzeWith(ctx, s, prepareLine(evt), evt.Speaker, evt.Text, evt.Context)
	if err != nil {
		return composer.AnalysisResult{}, err
	}

	p.logger.Info("line analyzed",
		"session", evt.SessionID,
		"speaker", res.Speaker,
		"sequence", res.Sequence,
		"tone", res.EmotionalTone,
		"cliches", res.ClicheCount,
	)
	p.publish(hermes.SubjectLineAnalyzed, hermes.LineAnalyzed{
		SessionID: s.ID.String(),
		Result:    res,
	})
	return res, nil
}

// prepareLine installs the event's scene and voice. Every check that could
// reject the line runs before either is applied, so a rejected event leaves
// the session as it was.
func prepareLine(evt hermes.LineSubmitted) func(c *composer.Composer) error {
	return func(c *composer.Composer) error {
		if evt.Voice != nil {
			if err := composer.ValidateName(evt.Speaker); err != nil {
				return err
			}
		} else if !c.HasCharacter(evt.Speaker) {
			return errs.UnknownCharacter(evt.Speaker)
		}

		if sc := evt.Scene; sc != nil {
			if err := c.SetSceneContext(sc.Setting, sc.Mood, sc.Tension, sc.Characters, sc.PlotPoints...); err != nil {
				return err
			}
		}
		if evt.Voice != nil {
			return c.AddCharacter(evt.Speaker, *evt.Voice)
		}
		return nil
	}
}

// Archive stores the session's current report and announces it.
func (p *Processor) Archive(ctx context.Context, s *session.Session) (hermes.ReportArchived, error) {
	if p.archive == nil {
		return hermes.ReportArchived{}, ErrArchiveDisabled
	}

	rep := p.sessions.Report(s)
	id, err := p.archive.SaveReport(ctx, s.ID, rep)
	if err != nil {
		return hermes.ReportArchived{}, fmt.Errorf("archive report: %w", err)
	}

	evt := hermes.ReportArchived{
		SessionID:  s.ID.String(),
		ReportID:   id.String(),
		TotalLines: rep.TotalLines,
		ArchivedAt: p.now().UTC(),
	}
	if p.metrics != nil {
		p.metrics.ReportsArchived.Add(ctx, 1)
	}
	p.logger.Info("report archived", "session", evt.SessionID, "report", evt.ReportID, "lines", evt.TotalLines)
	p.publish(hermes.SubjectReportArchived, evt)
	return evt, nil
}

func (p *Processor) publish(subject string, data any) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish", "subject", subject, "error", err)
	}
}

func (p *Processor) recordBus(ctx context.Context, subject, status string) {
	if p.metrics != nil {
		p.metrics.RecordBusMessage(ctx, subject, status)
	}
}

// LatestArchive returns the session's most recently archived report.
func (p *Processor) LatestArchive(ctx context.Context, s *session.Session) (*store.ReportRow, error) {
	if p.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return p.archive.LatestReport(ctx, s.ID)
}
