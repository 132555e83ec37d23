package service

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/catalog"
	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/NurAbir/pokemon-battle-server/internal/game"
	"github.com/NurAbir/pokemon-battle-server/internal/logging"
	"github.com/NurAbir/pokemon-battle-server/internal/matchmaking"
	"github.com/NurAbir/pokemon-battle-server/internal/storage"
	"github.com/NurAbir/pokemon-battle-server/internal/timer"
)

// Outbound synchronization message types pushed to connected clients.
const (
	MsgBattleState  = "battle_state"
	MsgBattleUpdate = "battle_update"
	MsgLog          = "log"
	MsgTimerStart   = "timer_start"
	MsgTimerUpdate  = "timer_update"
	MsgTimerWarning = "timer_warning"
	MsgBattleEnd    = "battle_end"
	MsgActionAck    = "action_ack"
	MsgError        = "error"
)

var (
	ErrBattleNotFound  = errors.New("battle not found")
	ErrNotParticipant  = errors.New("participant not part of this battle")
	ErrBattleCompleted = errors.New("battle already completed")
)

// Broadcaster pushes messages to the clients connected to a battle. The
// synchronization layer implements it; tests substitute an in-memory
// recorder.
type Broadcaster interface {
	SendToBattle(battleID, msgType string, data interface{})
	SendToParticipant(battleID, participantID, msgType string, data interface{})
	CloseBattle(battleID string)
}

// battleEntry wraps one live battle with the mutex that serializes every
// operation touching it. Two battles never contend with each other.
type battleEntry struct {
	mu     sync.Mutex
	battle *game.Battle
}

// Manager owns all live battles and the matchmaking queue. It is the single
// entry point for participant commands arriving over any transport.
type Manager struct {
	repo      storage.Repository
	catalog   *catalog.Catalog
	broadcast Broadcaster
	timers    *timer.Manager
	queue     *matchmaking.Queue

	rngMu sync.Mutex
	rng   *rand.Rand

	mu            sync.Mutex
	battles       map[string]*battleEntry
	byParticipant map[string]string
}

// NewManager wires the battle orchestrator. A nil rng falls back to a
// time-seeded source; tests pass a fixed seed to make draws reproducible.
func NewManager(repo storage.Repository, cat *catalog.Catalog, bc Broadcaster, turnSeconds, warningSeconds int, tick time.Duration, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Manager{
		repo:          repo,
		catalog:       cat,
		broadcast:     bc,
		queue:         matchmaking.NewQueue(),
		rng:           rng,
		battles:       make(map[string]*battleEntry),
		byParticipant: make(map[string]string),
	}
	m.timers = timer.NewManager(turnSeconds, warningSeconds, tick, m)
	return m
}

func (m *Manager) entry(battleID string) *battleEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.battles[battleID]
}

// BattleIDForParticipant resolves the live battle a participant is in.
func (m *Manager) BattleIDForParticipant(participantID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byParticipant[participantID]
	return id, ok
}

// Snapshot returns the viewer-scoped state of a live battle.
func (m *Manager) Snapshot(battleID, viewerID string) (game.Snapshot, error) {
	e := m.entry(battleID)
	if e == nil {
		return game.Snapshot{}, ErrBattleNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, ok := game.SnapshotFor(e.battle, viewerID)
	if !ok {
		return game.Snapshot{}, ErrNotParticipant
	}
	return snap, nil
}

// logEvent appends one entry to the battle's persistent log and pushes it to
// every connected client. Persistence happens before the broadcast so a
// client can never see an event that would be missing from a later replay.
func (m *Manager) logEvent(b *game.Battle, kind game.EventKind, actorID, message string, payload interface{}) {
	entry := &game.BattleLogEntry{
		BattleID: b.ID,
		Turn:     b.Turn,
		Kind:     kind,
		Message:  message,
		ActorID:  actorID,
		Payload:  payload,
	}
	if err := m.repo.CreateLogEntry(entry); err != nil {
		logging.Error("failed to persist battle log entry", err, logging.Fields{
			constants.LogFieldBattleID: b.ID,
			"kind":                     string(kind),
		})
	}
	m.broadcast.SendToBattle(b.ID, MsgLog, entry)
}

// broadcastSnapshots pushes each side its own view of the battle.
func (m *Manager) broadcastSnapshots(b *game.Battle) {
	for _, p := range b.Participants {
		if p == nil {
			continue
		}
		if snap, ok := game.SnapshotFor(b, p.ID); ok {
			m.broadcast.SendToParticipant(b.ID, p.ID, MsgBattleUpdate, snap)
		}
	}
}

func (m *Manager) randFloat() float64 {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Float64()
}

func (m *Manager) randIntn(n int) int {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Intn(n)
}

// TimerStarted implements timer.Notifier.
func (m *Manager) TimerStarted(battleID string, turn, seconds int) {
	m.broadcast.SendToBattle(battleID, MsgTimerStart, map[string]interface{}{
		"turn":    turn,
		"seconds": seconds,
	})
}

// TimerTick implements timer.Notifier.
func (m *Manager) TimerTick(battleID, participantID string, remaining int) {
	m.broadcast.SendToBattle(battleID, MsgTimerUpdate, map[string]interface{}{
		"participant_id": participantID,
		"remaining":      remaining,
	})
}

// TimerWarning implements timer.Notifier. The warning is part of the battle
// narrative, so it goes through the log as well as the timer channel.
func (m *Manager) TimerWarning(battleID, participantID string, remaining int) {
	m.broadcast.SendToBattle(battleID, MsgTimerWarning, map[string]interface{}{
		"participant_id": participantID,
		"remaining":      remaining,
	})
	e := m.entry(battleID)
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.battle
	if b.Status != game.StatusActive {
		return
	}
	p, _, ok := b.ParticipantByID(participantID)
	if !ok {
		return
	}
	m.logEvent(b, game.EventWarning, participantID,
		p.Name+" is running out of time!",
		game.WarningPayload{ParticipantID: participantID, Remaining: remaining})
}
