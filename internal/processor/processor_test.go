package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/parley/internal/composer"
	"github.com/MikeSquared-Agency/parley/internal/errs"
	"github.com/MikeSquared-Agency/parley/internal/hermes"
	"github.com/MikeSquared-Agency/parley/internal/session"
	"github.com/MikeSquared-Agency/parley/internal/store"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

type published struct {
	subject string
	data    any
}

type fakeBus struct {
	mu  sync.Mutex
	out []published
}

func (b *fakeBus) Publish(subject string, data any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = append(b.out, published{subject, data})
	return nil
}

func (b *fakeBus) last(t *testing.T) published {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.out) == 0 {
		t.Fatal("nothing published")
	}
	return b.out[len(b.out)-1]
}

type fakeArchive struct {
	saved map[uuid.UUID]composer.Report
	err   error
}

func (a *fakeArchive) SaveReport(_ context.Context, sessionID uuid.UUID, rep composer.Report) (uuid.UUID, error) {
	if a.err != nil {
		return uuid.Nil, a.err
	}
	if a.saved == nil {
		a.saved = map[uuid.UUID]composer.Report{}
	}
	a.saved[sessionID] = rep
	return uuid.New(), nil
}

func (a *fakeArchive) LatestReport(_ context.Context, sessionID uuid.UUID) (*store.ReportRow, error) {
	rep, ok := a.saved[sessionID]
	if !ok {
		return nil, errs.NotFound("no archived report for session %s", sessionID)
	}
	return &store.ReportRow{SessionID: sessionID, TotalLines: rep.TotalLines, Report: rep}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T, archive ReportArchive) (*Processor, *session.Manager, *session.Session, *fakeBus) {
	t.Helper()
	mgr := session.NewManager(nil, nil, quietLogger())
	s := mgr.Create(context.Background())
	bus := &fakeBus{}
	return New(mgr, archive, bus, nil, quietLogger()), mgr, s, bus
}

func TestHandleLineSubmitted_PublishesAnalysis(t *testing.T) {
	p, _, s, bus := setup(t, nil)

	payload, _ := json.Marshal(hermes.LineSubmitted{
		SessionID: s.ID.String(),
		Speaker:   "Sarah",
		Text:      "Look, ignorance is bliss, but I'm not stupid!",
		Voice:     &voice.Description{Formality: voice.Value(0.3)},
		Scene:     &hermes.SceneSpec{Setting: "Police station", Mood: "tense", Tension: 8, Characters: []string{"Sarah"}},
	})
	p.HandleLineSubmitted(hermes.SubjectLineSubmitted, payload)

	msg := bus.last(t)
	if msg.subject != hermes.SubjectLineAnalyzed {
		t.Fatalf("published to %q, want %q", msg.subject, hermes.SubjectLineAnalyzed)
	}
	evt, ok := msg.data.(hermes.LineAnalyzed)
	if !ok {
		t.Fatalf("published %T", msg.data)
	}
	if evt.Result.EmotionalTone != "tense" || evt.Result.ClicheCount != 1 {
		t.Errorf("result = %+v", evt.Result)
	}
}

func TestHandleLineSubmitted_UnknownSpeakerIsRejected(t *testing.T) {
	p, _, s, bus := setup(t, nil)

	payload, _ := json.Marshal(hermes.LineSubmitted{SessionID: s.ID.String(), Speaker: "Ghost", Text: "Boo."})
	p.HandleLineSubmitted(hermes.SubjectLineSubmitted, payload)

	msg := bus.last(t)
	if msg.subject != hermes.SubjectLineRejected {
		t.Fatalf("published to %q, want rejection", msg.subject)
	}
	evt := msg.data.(hermes.LineRejected)
	if evt.Kind != string(errs.KindUnknownCharacter) {
		t.Errorf("kind = %q", evt.Kind)
	}
}

func TestHandleLineSubmitted_InvalidSceneChangesNothing(t *testing.T) {
	p, mgr, s, bus := setup(t, nil)

	payload, _ := json.Marshal(hermes.LineSubmitted{
		SessionID: s.ID.String(),
		Speaker:   "Sarah",
		Text:      "Hello.",
		Voice:     &voice.Description{},
		Scene:     &hermes.SceneSpec{Tension: 11},
	})
	p.HandleLineSubmitted(hermes.SubjectLineSubmitted, payload)

	if evt := bus.last(t).data.(hermes.LineRejected); evt.Kind != string(errs.KindValidation) {
		t.Errorf("kind = %q, want validation", evt.Kind)
	}
	_ = s.Do(func(c *composer.Composer) error {
		if len(c.Characters()) != 0 {
			t.Error("speaker registered despite invalid scene")
		}
		return nil
	})
	if mgr.Report(s).TotalLines != 0 {
		t.Error("line analyzed despite invalid scene")
	}
}

func sceneOf(t *testing.T, s *session.Session) string {
	t.Helper()
	var setting string
	_ = s.Do(func(c *composer.Composer) error {
		if sc := c.Scene(); sc != nil {
			setting = sc.Setting
		}
		return nil
	})
	return setting
}

func TestHandleLineSubmitted_RejectedLineKeepsScene(t *testing.T) {
	tests := []struct {
		name string
		evt  hermes.LineSubmitted
		kind errs.Kind
	}{
		{
			name: "unknown speaker without voice",
			evt: hermes.LineSubmitted{
				Speaker: "Ghost",
				Text:    "Boo.",
				Scene:   &hermes.SceneSpec{Setting: "Dock", Mood: "tense", Tension: 9},
			},
			kind: errs.KindUnknownCharacter,
		},
		{
			name: "blank speaker with voice",
			evt: hermes.LineSubmitted{
				Speaker: "",
				Text:    "Hello?",
				Voice:   &voice.Description{},
				Scene:   &hermes.SceneSpec{Setting: "Roof", Mood: "calm", Tension: 2},
			},
			kind: errs.KindValidation,
		},
		{
			name: "padded speaker with voice",
			evt: hermes.LineSubmitted{
				Speaker: " Kai",
				Text:    "Hello?",
				Voice:   &voice.Description{},
				Scene:   &hermes.SceneSpec{Setting: "Roof", Mood: "calm", Tension: 2},
			},
			kind: errs.KindValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mgr, s, bus := setup(t, nil)
			_ = s.Do(func(c *composer.Composer) error {
				return c.SetSceneContext("Office", "calm", 3, nil)
			})

			tt.evt.SessionID = s.ID.String()
			payload, _ := json.Marshal(tt.evt)
			p.HandleLineSubmitted(hermes.SubjectLineSubmitted, payload)

			if evt := bus.last(t).data.(hermes.LineRejected); evt.Kind != string(tt.kind) {
				t.Errorf("kind = %q, want %q", evt.Kind, tt.kind)
			}
			if got := sceneOf(t, s); got != "Office" {
				t.Errorf("scene setting = %q, want Office", got)
			}
			_ = s.Do(func(c *composer.Composer) error {
				if len(c.Characters()) != 0 {
					t.Errorf("characters = %q, want none", c.Characters())
				}
				return nil
			})
			if mgr.Report(s).TotalLines != 0 {
				t.Error("rejected line was recorded")
			}
		})
	}
}

func TestHandleLineSubmitted_BadPayload(t *testing.T) {
	p, _, _, bus := setup(t, nil)
	p.HandleLineSubmitted(hermes.SubjectLineSubmitted, []byte("{not json"))
	if len(bus.out) != 0 {
		t.Errorf("published %d events for an unparseable payload", len(bus.out))
	}
}

func TestSubmit_UnknownSession(t *testing.T) {
	p, _, _, _ := setup(t, nil)
	_, err := p.Submit(context.Background(), hermes.LineSubmitted{SessionID: uuid.NewString(), Speaker: "A"})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestArchive(t *testing.T) {
	archive := &fakeArchive{}
	p, _, s, bus := setup(t, archive)
	_ = s.Do(func(c *composer.Composer) error { return c.AddCharacter("Kai", voice.Description{}) })
	if _, err := p.Submit(context.Background(), hermes.LineSubmitted{SessionID: s.ID.String(), Speaker: "Kai", Text: "Perfect storm."}); err != nil {
		t.Fatal(err)
	}

	evt, err := p.Archive(context.Background(), s)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if evt.TotalLines != 1 || evt.SessionID != s.ID.String() {
		t.Errorf("event = %+v", evt)
	}
	if archive.saved[s.ID].TotalLines != 1 {
		t.Error("report not saved")
	}
	if bus.last(t).subject != hermes.SubjectReportArchived {
		t.Error("archive not announced")
	}
}

func TestLatestArchive(t *testing.T) {
	archive := &fakeArchive{}
	p, _, s, _ := setup(t, archive)

	if _, err := p.LatestArchive(context.Background(), s); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("before archiving: err = %v, want ErrNotFound", err)
	}
	if _, err := p.Archive(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	row, err := p.LatestArchive(context.Background(), s)
	if err != nil {
		t.Fatalf("LatestArchive: %v", err)
	}
	if row.SessionID != s.ID {
		t.Errorf("session = %s, want %s", row.SessionID, s.ID)
	}

	p, _, s, _ = setup(t, nil)
	if _, err := p.LatestArchive(context.Background(), s); !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("err = %v, want ErrArchiveDisabled", err)
	}
}

func TestArchive_Disabled(t *testing.T) {
	p, _, s, _ := setup(t, nil)
	if _, err := p.Archive(context.Background(), s); !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("err = %v, want ErrArchiveDisabled", err)
	}
}

func TestArchive_StoreFailure(t *testing.T) {
	p, _, s, _ := setup(t, &fakeArchive{err: errors.New("connection refused")})
	if _, err := p.Archive(context.Background(), s); err == nil {
		t.Error("expected error")
	}
}
