package service

import (
	"fmt"

	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/NurAbir/pokemon-battle-server/internal/game"
	"github.com/NurAbir/pokemon-battle-server/internal/logging"
)

// timeoutFor builds the per-turn expiry callback handed to the timer. The
// callback runs on the timer goroutine with no locks held.
func (m *Manager) timeoutFor(battleID string) func(participantID string) {
	return func(participantID string) {
		m.applyTimeout(battleID, participantID)
	}
}

// applyTimeout ends the battle against the participant whose clock expired.
// A timeout on an already-completed battle is ignored, so a late timer
// firing can never flip a decided result.
func (m *Manager) applyTimeout(battleID, participantID string) {
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
	p, opp, ok := b.ParticipantByID(participantID)
	if !ok {
		return
	}

	m.logEvent(b, game.EventTimeout, participantID,
		fmt.Sprintf("%s ran out of time!", p.Name),
		game.TimeoutPayload{ParticipantID: participantID})
	m.completeBattleLocked(b, opp.ID, game.EndReasonTimeout)
}

// Forfeit ends the battle immediately with the caller as the loser.
func (m *Manager) Forfeit(battleID, participantID string) error {
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
	p, opp, ok := b.ParticipantByID(participantID)
	if !ok {
		return ErrNotParticipant
	}

	m.logEvent(b, game.EventInfo, participantID,
		fmt.Sprintf("%s forfeited the battle.", p.Name), nil)
	m.completeBattleLocked(b, opp.ID, game.EndReasonForfeit)
	return nil
}

// HandleDisconnect treats a dropped connection during an active battle as
// the participant's clock expiring right away. Disconnects from completed
// battles are no-ops.
func (m *Manager) HandleDisconnect(battleID, participantID string) {
	e := m.entry(battleID)
	if e == nil {
		return
	}
	m.timers.HandleDisconnect(battleID, participantID)
}

// completeBattleLocked performs the single active -> completed transition:
// final log entry, summary record and stats update, a last push to both
// clients, and teardown of the timer and broadcast group. The caller holds
// the battle's mutex.
func (m *Manager) completeBattleLocked(b *game.Battle, winnerID, reason string) {
	b.Status = game.StatusCompleted
	b.WinnerID = winnerID
	b.EndReason = reason

	msg := "The battle ended in a draw."
	if winnerID != "" {
		if winner, _, ok := b.ParticipantByID(winnerID); ok {
			msg = fmt.Sprintf("%s won the battle!", winner.Name)
		}
	}
	m.logEvent(b, game.EventBattleEnd, "", msg,
		game.BattleEndPayload{WinnerID: winnerID, Reason: reason})

	rec, err := m.repo.GetBattleRecord(b.ID)
	if err != nil {
		logging.Error("failed to load battle record on completion", err, logging.Fields{
			constants.LogFieldBattleID: b.ID,
		})
	} else {
		rec.Status = game.StatusCompleted
		rec.Turn = b.Turn
		rec.WinnerID = winnerID
		rec.EndReason = reason
		if err := m.repo.UpdateBattleRecord(rec); err != nil {
			logging.Error("failed to update battle record", err, logging.Fields{
				constants.LogFieldBattleID: b.ID,
			})
		}
		if err := m.repo.UpdateStatsOnBattleEnd(rec); err != nil {
			logging.Error("failed to update player stats", err, logging.Fields{
				constants.LogFieldBattleID: b.ID,
			})
		}
	}

	m.broadcastSnapshots(b)
	m.broadcast.SendToBattle(b.ID, MsgBattleEnd,
		game.BattleEndPayload{WinnerID: winnerID, Reason: reason})

	m.timers.StopBattle(b.ID)
	m.broadcast.CloseBattle(b.ID)

	m.mu.Lock()
	delete(m.battles, b.ID)
	for _, p := range b.Participants {
		if p != nil {
			delete(m.byParticipant, p.ID)
		}
	}
	m.mu.Unlock()

	logging.Info("battle completed", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		"winner_id":                winnerID,
		"reason":                   reason,
		constants.LogFieldTurn:     b.Turn,
	})
}
