package service

import (
	"errors"

	"github.com/NurAbir/pokemon-battle-server/internal/catalog"
	"github.com/NurAbir/pokemon-battle-server/internal/game"
)

var (
	ErrInvalidMove         = errors.New("move not known to the active combatant")
	ErrInvalidSwitchTarget = errors.New("invalid switch target")
	ErrSwitchRequired      = errors.New("a replacement combatant must be chosen first")
)

// SubmitMove records a participant's move choice for the current turn. A
// choice may be resubmitted and overwritten until the turn resolves; the
// turn resolves synchronously as soon as both sides have chosen.
func (m *Manager) SubmitMove(battleID, participantID, moveName string) error {
	e := m.entry(battleID)
	if e == nil {
		return ErrBattleNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	b := e.battle
	if b.Status != game.StatusActive {
		return ErrBattleCompleted
	}
	p, _, ok := b.ParticipantByID(participantID)
	if !ok {
		return ErrNotParticipant
	}
	if p.MustSwitch {
		return ErrSwitchRequired
	}

	active := p.Active()
	if active == nil || !knowsMove(active, moveName) {
		return ErrInvalidMove
	}

	p.PendingAction = &game.Action{Kind: game.ActionMove, Move: moveName}
	p.Ready = true
	m.timers.MarkReady(battleID, participantID)

	if bothReady(b) {
		m.resolveTurnLocked(b)
	}
	return nil
}

// SubmitSwitch records a voluntary switch, or performs a forced replacement
// immediately when the participant's active combatant has fainted. A forced
// replacement does not wait for the opponent.
func (m *Manager) SubmitSwitch(battleID, participantID string, index int) error {
	e := m.entry(battleID)
	if e == nil {
		return ErrBattleNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	b := e.battle
	if b.Status != game.StatusActive {
		return ErrBattleCompleted
	}
	p, _, ok := b.ParticipantByID(participantID)
	if !ok {
		return ErrNotParticipant
	}
	if index < 0 || index >= len(p.Roster) || index == p.ActiveIndex || p.Roster[index].Fainted {
		return ErrInvalidSwitchTarget
	}

	if p.MustSwitch {
		m.executeSwitch(b, p, index)
		p.MustSwitch = false
		p.ClearPending()
		if !anyMustSwitch(b) {
			m.resumeAfterForcedSwitch(b)
		}
		m.broadcastSnapshots(b)
		return nil
	}

	p.PendingAction = &game.Action{Kind: game.ActionSwitch, SwitchTo: index}
	p.Ready = true
	m.timers.MarkReady(battleID, participantID)

	if bothReady(b) {
		m.resolveTurnLocked(b)
	}
	return nil
}

// resumeAfterForcedSwitch restarts the current turn's clock once every
// forced replacement has been made. Choices stored by the other side while
// it waited survive and are re-marked ready.
func (m *Manager) resumeAfterForcedSwitch(b *game.Battle) {
	m.timers.StartTurn(b.ID, b.Turn, m.timeoutFor(b.ID))
	for _, p := range b.Participants {
		if p != nil && p.Ready {
			m.timers.MarkReady(b.ID, p.ID)
		}
	}
	if bothReady(b) {
		m.resolveTurnLocked(b)
	}
}

func knowsMove(c *game.Combatant, name string) bool {
	key := catalog.Normalize(name)
	for _, mv := range c.Moves {
		if catalog.Normalize(mv) == key {
			return true
		}
	}
	return false
}

func bothReady(b *game.Battle) bool {
	for _, p := range b.Participants {
		if p == nil || !p.Ready || p.MustSwitch {
			return false
		}
	}
	return true
}

func anyMustSwitch(b *game.Battle) bool {
	for _, p := range b.Participants {
		if p != nil && p.MustSwitch {
			return true
		}
	}
	return false
}
