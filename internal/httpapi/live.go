package httpapi

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Live preview message types.
const (
	msgSet     = "set"
	msgReplace = "values"
	msgReset   = "reset"
	msgPing    = "ping"

	msgVisible = "visible"
	msgPong    = "pong"
	msgError   = "error"
)

// liveClientMessage is a value change sent by the preview. A message
// without a type is treated as "set".
type liveClientMessage struct {
	Type   string            `json:"type"`
	Name   string            `json:"name,omitempty"`
	Value  any               `json:"value,omitempty"`
	Values visibility.Values `json:"values,omitempty"`
}

type liveServerMessage struct {
	Type    string            `json:"type"`
	Visible []string          `json:"visible"`
	Values  visibility.Values `json:"values,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// live upgrades to a websocket bound to one saved form. Each value change is
// answered with the names of the fields now visible.
func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	form, ok := s.loadForm(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn("httpapi: websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	session := builder.New(
		builder.WithFields(form.Fields),
		builder.WithEvaluator(s.eval),
		builder.WithLogger(s.logger),
	)
	ctx := r.Context()
	s.logger.Debug("httpapi: live session opened", "form", form.ID)

	if !s.sendVisible(ctx, conn, session) {
		return
	}
	for {
		var msg liveClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				s.logger.Debug("httpapi: live session closed", "form", form.ID, "status", status)
			}
			return
		}

		switch msg.Type {
		case "", msgSet:
			if msg.Name == "" {
				s.send(ctx, conn, liveServerMessage{Type: msgError, Error: "name is required"})
				continue
			}
			session.SetValue(msg.Name, msg.Value)
		case msgReplace:
			session.SetValues(msg.Values)
		case msgReset:
			session.SetValues(nil)
		case msgPing:
			s.send(ctx, conn, liveServerMessage{Type: msgPong})
			continue
		default:
			s.send(ctx, conn, liveServerMessage{Type: msgError, Error: "unknown message type: " + msg.Type})
			continue
		}
		if !s.sendVisible(ctx, conn, session) {
			return
		}
	}
}

func (s *Server) sendVisible(ctx context.Context, conn *websocket.Conn, session *builder.Session) bool {
	return s.send(ctx, conn, liveServerMessage{
		Type:    msgVisible,
		Visible: session.VisibleNames(),
		Values:  session.Values(),
	})
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, msg liveServerMessage) bool {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		s.logger.Debug("httpapi: live write failed", "error", err)
		return false
	}
	return true
}
