package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/parley/internal/composer"
	"github.com/MikeSquared-Agency/parley/internal/errs"
	"github.com/MikeSquared-Agency/parley/internal/hermes"
	"github.com/MikeSquared-Agency/parley/internal/scene"
	"github.com/MikeSquared-Agency/parley/internal/session"
	"github.com/MikeSquared-Agency/parley/internal/voice"
)

type sessionResponse struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Characters []string       `json:"characters"`
	Scene      *scene.Context `json:"scene"`
	TotalLines int            `json:"total_lines"`
}

// LineRequest is a line submitted over HTTP or the stream.
type LineRequest struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

type alternativesRequest struct {
	Text      string `json:"text"`
	Character string `json:"character"`
}

type improveRequest struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func characterName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func describe(sess *session.Session) sessionResponse {
	resp := sessionResponse{ID: sess.ID.String(), CreatedAt: sess.CreatedAt}
	_ = sess.Do(func(c *composer.Composer) error {
		resp.Characters = c.Characters()
		resp.Scene = c.Scene()
		resp.TotalLines = len(c.History())
		return nil
	})
	return resp
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(r.Context())
	writeJSON(w, http.StatusCreated, describe(sess))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out, "count": len(out)})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, describe(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), sess.ID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putCharacter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var desc voice.Description
	if err := decode(r, &desc); err != nil {
		s.writeError(w, err)
		return
	}

	name := characterName(r)
	var summary composer.Summary
	err := sess.Do(func(c *composer.Composer) error {
		if err := c.AddCharacter(name, desc); err != nil {
			return err
		}
		var err error
		summary, err = c.GetCharacterVoiceSummary(name)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) resetCharacter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := characterName(r)
	if err := sess.Do(func(c *composer.Composer) error { return c.ResetCharacter(name) }); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) characterSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := characterName(r)
	var summary composer.Summary
	err := sess.Do(func(c *composer.Composer) error {
		var err error
		summary, err = c.GetCharacterVoiceSummary(name)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) characterAdvice(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := characterName(r)
	var out any
	err := sess.Do(func(c *composer.Composer) error {
		adv, err := c.ContextAdvice(name)
		out = adv
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) putScene(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req hermes.SceneSpec
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	var sc *scene.Context
	err := sess.Do(func(c *composer.Composer) error {
		if err := c.SetSceneContext(req.Setting, req.Mood, req.Tension, req.Characters, req.PlotPoints...); err != nil {
			return err
		}
		sc = c.Scene()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) analyzeLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req LineRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.proc.Submit(r.Context(), hermes.LineSubmitted{
		SessionID: sess.ID.String(),
		Speaker:   req.Speaker,
		Text:      req.Text,
		Context:   req.Context,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) alternatives(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req alternativesRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	var alts []string
	err := sess.Do(func(c *composer.Composer) error {
		var err error
		alts, err = c.SuggestAlternatives(req.Text, req.Character)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alternatives": alts})
}

func (s *Server) improve(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req improveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Text == "" {
		s.writeError(w, errs.Validation("text is required"))
		return
	}
	var imp composer.Improvement
	err := sess.Do(func(c *composer.Composer) error {
		var err error
		imp, err = c.ImproveLine(req.Speaker, req.Text)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, imp)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sessions.Report(sess))
}

func (s *Server) archiveReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	evt, err := s.proc.Archive(r.Context(), sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, evt)
}

func (s *Server) latestReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	row, err := s.proc.LatestArchive(r.Context(), sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}
