package service

import (
	"fmt"

	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/NurAbir/pokemon-battle-server/internal/game"
	"github.com/NurAbir/pokemon-battle-server/internal/logging"
	"github.com/NurAbir/pokemon-battle-server/internal/matchmaking"
	"github.com/google/uuid"
)

// RosterSpec is one requested team member as submitted by a client.
type RosterSpec struct {
	Species  string   `json:"species"`
	Nickname string   `json:"nickname"`
	Level    int      `json:"level"`
	Moves    []string `json:"moves"`
}

// JoinResult is the outcome of a matchmaking request. Either the caller was
// queued (Queued true) or a battle started immediately (BattleID set).
type JoinResult struct {
	ParticipantID string `json:"participant_id"`
	Queued        bool   `json:"queued"`
	QueueSize     int    `json:"queue_size,omitempty"`
	BattleID      string `json:"battle_id,omitempty"`
}

// JoinMatchmaking validates the requested roster, assigns the caller a
// participant identity and enqueues them. When a second participant is
// already waiting the pair is consumed and a battle starts immediately.
func (m *Manager) JoinMatchmaking(name string, roster []RosterSpec) (*JoinResult, error) {
	if name == "" {
		return nil, fmt.Errorf("participant name is required")
	}
	if len(roster) < 1 || len(roster) > 6 {
		return nil, fmt.Errorf("roster must have between 1 and 6 members")
	}

	combatants := make([]game.Combatant, 0, len(roster))
	for _, spec := range roster {
		c, err := m.catalog.NewCombatant(spec.Species, spec.Nickname, spec.Level, spec.Moves)
		if err != nil {
			return nil, err
		}
		combatants = append(combatants, c)
	}

	participantID := uuid.NewString()
	size := m.queue.Enqueue(matchmaking.Entry{
		ParticipantID: participantID,
		Name:          name,
		Roster:        combatants,
	})
	logging.Info("participant joined matchmaking", logging.Fields{
		constants.LogFieldParticipantID: participantID,
		constants.LogFieldQueueSize:     size,
	})

	first, second, ok := m.queue.DequeuePair()
	if !ok {
		return &JoinResult{ParticipantID: participantID, Queued: true, QueueSize: size}, nil
	}

	b, err := m.createBattle(first, second)
	if err != nil {
		// Put the waiting participant back so one storage failure does not
		// silently eat their queue slot.
		m.queue.Enqueue(first)
		return nil, err
	}
	return &JoinResult{ParticipantID: participantID, BattleID: b.ID}, nil
}

// LeaveMatchmaking removes a waiting participant from the queue. Leaving is
// only possible before a pair is formed.
func (m *Manager) LeaveMatchmaking(participantID string) bool {
	removed := m.queue.Remove(participantID)
	if removed {
		logging.Info("participant left matchmaking", logging.Fields{
			constants.LogFieldParticipantID: participantID,
		})
	}
	return removed
}

// QueueSize returns the number of waiting participants.
func (m *Manager) QueueSize() int {
	return m.queue.Len()
}

func (m *Manager) createBattle(first, second matchmaking.Entry) (*game.Battle, error) {
	b := &game.Battle{
		ID:     uuid.NewString(),
		Status: game.StatusActive,
		Turn:   1,
		Participants: [2]*game.Participant{
			{ID: first.ParticipantID, Name: first.Name, Roster: first.Roster},
			{ID: second.ParticipantID, Name: second.Name, Roster: second.Roster},
		},
	}

	rec := &game.BattleRecord{
		BattleID:         b.ID,
		Participant1ID:   first.ParticipantID,
		Participant1Name: first.Name,
		Participant2ID:   second.ParticipantID,
		Participant2Name: second.Name,
		Status:           game.StatusActive,
		Turn:             1,
	}
	if err := m.repo.CreateBattleRecord(rec); err != nil {
		return nil, fmt.Errorf("failed to create battle record: %w", err)
	}

	m.mu.Lock()
	m.battles[b.ID] = &battleEntry{battle: b}
	m.byParticipant[first.ParticipantID] = b.ID
	m.byParticipant[second.ParticipantID] = b.ID
	m.mu.Unlock()

	m.logEvent(b, game.EventBattleStart, "",
		fmt.Sprintf("Battle started between %s and %s!", first.Name, second.Name),
		game.BattleStartPayload{Participant1: first.Name, Participant2: second.Name})
	m.logEvent(b, game.EventTurnMarker, "", "Turn 1", game.TurnMarkerPayload{Turn: 1})

	m.timers.StartBattle(b.ID, []string{first.ParticipantID, second.ParticipantID})
	m.timers.StartTurn(b.ID, 1, m.timeoutFor(b.ID))

	logging.Info("battle created", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		"participant1":             first.ParticipantID,
		"participant2":             second.ParticipantID,
	})
	return b, nil
}
