package studio

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ashwanth2007/TheVibeCoders/internal/generate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the incoming websocket frame.
type clientMessage struct {
	Type        string                `json:"type"`
	Instruction string                `json:"instruction,omitempty"`
	Attachments []generate.Attachment `json:"attachments,omitempty"`
	Path        string                `json:"path,omitempty"`
	Index       int                   `json:"index,omitempty"`
	Enabled     bool                  `json:"enabled,omitempty"`
	Sandbox     json.RawMessage       `json:"sandbox,omitempty"`
}

// RegisterRoutes mounts the studio websocket.
func RegisterRoutes(r chi.Router, m *Manager) {
	r.Get("/ws/studio/{id}", func(w http.ResponseWriter, r *http.Request) {
		session, err := m.Session(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
			return
		}
		serveSession(w, r, session)
	})
}

func serveSession(w http.ResponseWriter, r *http.Request, session *Session) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("studio: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	frames := make(chan serverMessage, 64)
	session.Attach(frames)
	defer session.Detach(frames)

	// Writer pump; the reader below owns the connection's lifetime.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case msg := <-frames:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("studio: websocket write: %v", err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("studio: websocket read: %v", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			session.send(frames, serverMessage{Type: frameError, Error: "invalid message format"})
			continue
		}
		dispatch(r, session, frames, msg)
	}
}

func dispatch(r *http.Request, session *Session, frames chan serverMessage, msg clientMessage) {
	var err error
	switch msg.Type {
	case "generate":
		err = session.Generate(msg.Instruction, msg.Attachments)
	case "cancel":
		session.Cancel()
	case "selectionMode":
		session.SetSelectionMode(msg.Enabled)
	case "sandbox":
		session.HandleSandbox(msg.Sandbox)
	case "navigate":
		session.Navigate(msg.Path)
	case "undo":
		err = session.Undo(r.Context())
	case "redo":
		err = session.Redo(r.Context())
	case "restore":
		err = session.Restore(r.Context(), msg.Index)
	case "state":
		session.send(frames, session.stateFrame())
	default:
		session.send(frames, serverMessage{Type: frameError, Error: "unknown message type: " + msg.Type})
	}
	if err != nil {
		session.send(frames, serverMessage{Type: frameError, Error: err.Error()})
	}
}
