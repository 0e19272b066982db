package preview

import (
	"encoding/json"
	"fmt"
)

// Message types for the sandbox-to-host protocol. The injected
// instrumentation posts these from the iframe; the studio socket relays
// them here verbatim.
const (
	MsgNavigate        = "navigate"
	MsgElementSelected = "elementSelected"
)

// SelectionPayload carries the captured element: a CSS selector uniquely
// addressing it in the rendered document plus its outerHTML snapshot.
type SelectionPayload struct {
	Selector string `json:"selector"`
	HTML     string `json:"html"`
}

// SandboxMessage is the tagged union of messages the sandbox can emit.
type SandboxMessage struct {
	Type    string            `json:"type"`
	Path    string            `json:"path,omitempty"`
	Payload *SelectionPayload `json:"payload,omitempty"`
}

// ParseMessage decodes and validates a sandbox message. Unknown or
// malformed messages are rejected so arbitrary generated script cannot
// smuggle anything else across the boundary.
func ParseMessage(data []byte) (SandboxMessage, error) {
	var msg SandboxMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return SandboxMessage{}, fmt.Errorf("decoding sandbox message: %w", err)
	}
	switch msg.Type {
	case MsgNavigate:
		return msg, nil
	case MsgElementSelected:
		if msg.Payload == nil || msg.Payload.Selector == "" {
			return SandboxMessage{}, fmt.Errorf("elementSelected message missing payload")
		}
		return msg, nil
	default:
		return SandboxMessage{}, fmt.Errorf("unknown sandbox message type %q", msg.Type)
	}
}

// Host event types emitted by the controller toward the studio UI.
const (
	EventRendered        = "rendered"
	EventElementSelected = "elementSelected"
)

// Event is what the controller reports to its host: a fresh render (with
// the document ID the iframe should load) or a captured element.
type Event struct {
	Type     string            `json:"type"`
	Path     string            `json:"path,omitempty"`
	DocID    string            `json:"doc_id,omitempty"`
	Selected *SelectionPayload `json:"selected,omitempty"`
}
