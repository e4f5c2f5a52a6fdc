package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/MikeSquared-Agency/parley/internal/composer"
	"github.com/MikeSquared-Agency/parley/internal/errs"
	"github.com/MikeSquared-Agency/parley/internal/hermes"
)

// streamReply is one message sent back on the stream: a result or an error.
type streamReply struct {
	Result *composer.AnalysisResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
	Kind   string                   `json:"kind,omitempty"`
}

// stream upgrades to a websocket. Each text message is a LineRequest and is
// answered with one streamReply, in order.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("session", sess.ID.String())
	logger.Info("stream opened")
	for {
		var req LineRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("stream read failed", "error", err)
			}
			logger.Info("stream closed")
			return
		}

		var reply streamReply
		res, err := s.proc.Submit(r.Context(), hermes.LineSubmitted{
			SessionID: sess.ID.String(),
			Speaker:   req.Speaker,
			Text:      req.Text,
			Context:   req.Context,
		})
		if err != nil {
			reply.Error = err.Error()
			reply.Kind = string(errs.KindOf(err))
		} else {
			reply.Result = &res
		}

		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("stream write failed", "error", err)
			return
		}
	}
}
