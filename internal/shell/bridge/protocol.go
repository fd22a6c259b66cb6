package bridge

import "encoding/json"

// Frames exchanged over /ipc. Every frame is one JSON text message.
//
//	-> {"id": 1, "cmd": "plugin:fs|exists", "args": {"path": "..."}}
//	<- {"id": 1, "result": true}
//	<- {"id": 2, "error": "path not allowed by fs scope: ..."}
//	<- {"event": "fs://change", "payload": {...}}

type request struct {
	ID   json.RawMessage `json:"id"`
	Cmd  string          `json:"cmd"`
	Args json.RawMessage `json:"args,omitempty"`
}

type reply struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Dialog events. The web UI renders the dialog for a DialogRequestEvent and
// answers with the DialogReplyCommand.
const (
	DialogRequestEvent = "dialog://request"
	DialogReplyCommand = "dialog://reply"
)

type dialogRequest struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Options any    `json:"options"`
}

type dialogReply struct {
	ID        string   `json:"id"`
	Paths     []string `json:"paths,omitempty"`
	Path      string   `json:"path,omitempty"`
	Button    string   `json:"button,omitempty"`
	Cancelled bool     `json:"cancelled,omitempty"`
}
