package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/NurAbir/pokemon-battle-server/internal/logging"
	"github.com/NurAbir/pokemon-battle-server/internal/service"
)

// Hub tracks the active connection of each battle participant, grouped by
// battle. It implements service.Broadcaster; the battle manager never deals
// with sockets directly.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client

	register   chan *Client
	unregister chan *Client

	manager *service.Manager
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetManager wires the battle manager after construction. The hub and the
// manager reference each other, so one side has to be attached late.
func (h *Hub) SetManager(m *service.Manager) {
	h.manager = m
}

// Run processes connection lifecycle events. It blocks, so callers start it
// on its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.battleID]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[client.battleID] = room
	}
	// A participant has at most one live connection; a reconnect displaces
	// the previous socket.
	if prev, ok := room[client.participantID]; ok {
		prev.displaced = true
		prev.closeSend()
	}
	room[client.participantID] = client
	h.mu.Unlock()

	logging.Info("websocket client connected", logging.Fields{
		constants.LogFieldBattleID:      client.battleID,
		constants.LogFieldParticipantID: client.participantID,
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	dropped := false
	if room, ok := h.rooms[client.battleID]; ok {
		if cur, ok := room[client.participantID]; ok && cur == client {
			delete(room, client.participantID)
			client.closeSend()
			dropped = true
		}
		if len(room) == 0 {
			delete(h.rooms, client.battleID)
		}
	}
	h.mu.Unlock()

	if !dropped {
		return
	}
	logging.Info("websocket client disconnected", logging.Fields{
		constants.LogFieldBattleID:      client.battleID,
		constants.LogFieldParticipantID: client.participantID,
	})
	if !client.displaced && h.manager != nil {
		h.manager.HandleDisconnect(client.battleID, client.participantID)
	}
}

func encode(msgType string, data interface{}) ([]byte, bool) {
	b, err := json.Marshal(Message{Type: msgType, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		logging.Error("failed to encode websocket message", err, logging.Fields{"type": msgType})
		return nil, false
	}
	return b, true
}

// SendToBattle pushes one message to every connected participant of a battle.
func (h *Hub) SendToBattle(battleID, msgType string, data interface{}) {
	b, ok := encode(msgType, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.rooms[battleID] {
		client.enqueue(b)
	}
}

// SendToParticipant pushes one message to a single participant, if connected.
func (h *Hub) SendToParticipant(battleID, participantID, msgType string, data interface{}) {
	b, ok := encode(msgType, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.rooms[battleID][participantID]; ok {
		client.enqueue(b)
	}
}

// CloseBattle tears down the broadcast group of a finished battle. The
// clients are marked displaced first so their teardown does not feed back
// into disconnect handling.
func (h *Hub) CloseBattle(battleID string) {
	h.mu.Lock()
	room := h.rooms[battleID]
	delete(h.rooms, battleID)
	for _, client := range room {
		client.displaced = true
		client.closeSend()
	}
	h.mu.Unlock()
}
