package ws

import (
	"encoding/json"
	"time"
)

// Message is the envelope for every frame pushed to a client.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client command types received over the socket.
const (
	InboundMove    = "move"
	InboundSwitch  = "switch"
	InboundForfeit = "forfeit"
)

// inboundMessage is a frame received from a client. Data is decoded per
// command type.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type movePayload struct {
	Move string `json:"move"`
}

type switchPayload struct {
	Index int `json:"index"`
}
