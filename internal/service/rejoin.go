package service

import (
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/game"
	"github.com/NurAbir/pokemon-battle-server/internal/timer"
)

// RejoinState is everything a connecting client needs to rebuild its view:
// the current snapshot, the log to replay and the running clock.
type RejoinState struct {
	Snapshot game.Snapshot         `json:"snapshot"`
	Log      []game.BattleLogEntry `json:"log"`
	Timer    *timer.State          `json:"timer,omitempty"`
}

// Rejoin assembles the reconnect state for a participant. A zero `since`
// replays the full log; otherwise only entries recorded strictly after that
// time are included.
func (m *Manager) Rejoin(battleID, participantID string, since time.Time) (*RejoinState, error) {
	e := m.entry(battleID)
	if e == nil {
		return nil, ErrBattleNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, ok := game.SnapshotFor(e.battle, participantID)
	if !ok {
		return nil, ErrNotParticipant
	}

	var entries []game.BattleLogEntry
	var err error
	if since.IsZero() {
		entries, err = m.repo.GetFullLog(battleID)
	} else {
		entries, err = m.repo.GetLogAfter(battleID, since)
	}
	if err != nil {
		return nil, err
	}

	st := &RejoinState{Snapshot: snap, Log: entries}
	if ts, ok := m.timers.State(battleID); ok {
		st.Timer = &ts
	}
	return st, nil
}
