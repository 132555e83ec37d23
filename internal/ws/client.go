package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/NurAbir/pokemon-battle-server/internal/logging"
	"github.com/NurAbir/pokemon-battle-server/internal/service"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client is one participant's live connection to a battle.
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	battleID      string
	participantID string

	send chan []byte

	sendMu sync.Mutex
	closed bool
	// displaced marks sockets torn down deliberately (reconnect takeover or
	// battle completion) whose loss must not count as a disconnect.
	displaced bool
}

func NewClient(hub *Hub, conn *websocket.Conn, battleID, participantID string) *Client {
	return &Client{
		hub:           hub,
		conn:          conn,
		battleID:      battleID,
		participantID: participantID,
		send:          make(chan []byte, 64),
	}
}

// Register announces the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// enqueue queues an encoded frame, dropping it when the buffer is full so a
// slow client cannot stall a battle.
func (c *Client) enqueue(b []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		logging.Error("websocket send buffer full; dropping frame", nil, logging.Fields{
			constants.LogFieldBattleID:      c.battleID,
			constants.LogFieldParticipantID: c.participantID,
		})
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// SendMessage encodes and queues one message for this client only.
func (c *Client) SendMessage(msgType string, data interface{}) {
	if b, ok := encode(msgType, data); ok {
		c.enqueue(b)
	}
}

// ReadPump consumes client commands until the connection drops, then hands
// the client back to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Error("websocket read error", err, logging.Fields{
					constants.LogFieldBattleID:      c.battleID,
					constants.LogFieldParticipantID: c.participantID,
				})
			}
			return
		}
		c.handleMessage(raw)
	}
}

// WritePump flushes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches one client command to the battle manager. Command
// failures are reported back on this connection only; they never terminate
// the socket.
func (c *Client) handleMessage(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("invalid message format")
		return
	}

	var err error
	switch msg.Type {
	case InboundMove:
		var p movePayload
		if err = json.Unmarshal(msg.Data, &p); err != nil {
			err = errors.New("invalid move payload")
			break
		}
		err = c.hub.manager.SubmitMove(c.battleID, c.participantID, p.Move)
	case InboundSwitch:
		var p switchPayload
		if err = json.Unmarshal(msg.Data, &p); err != nil {
			err = errors.New("invalid switch payload")
			break
		}
		err = c.hub.manager.SubmitSwitch(c.battleID, c.participantID, p.Index)
	case InboundForfeit:
		err = c.hub.manager.Forfeit(c.battleID, c.participantID)
	default:
		err = errors.New("unsupported message type: " + msg.Type)
	}

	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.SendMessage(service.MsgActionAck, map[string]string{"command": msg.Type})
}

func (c *Client) sendError(message string) {
	c.SendMessage(service.MsgError, map[string]string{"error": message})
}
