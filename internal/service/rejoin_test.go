package service

import (
	"testing"
	"time"
)

func TestRejoinReplaysFullLog(t *testing.T) {
	m, repo, _ := newTestManager(t, 1)
	battleID, pid1, pid2 := startTestBattle(t, m, rosterOf("Swiftling"), rosterOf("Plodder"))

	if err := m.SubmitMove(battleID, pid1, "Tap"); err != nil {
		t.Fatal(err)
	}
	if err := m.SubmitMove(battleID, pid2, "Tap"); err != nil {
		t.Fatal(err)
	}

	state, err := m.Rejoin(battleID, pid1, time.Time{})
	if err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}
	full, _ := repo.GetFullLog(battleID)
	if len(state.Log) != len(full) {
		t.Errorf("replayed %d entries, want the full log of %d", len(state.Log), len(full))
	}
	if state.Snapshot.Turn != 2 {
		t.Errorf("snapshot turn = %d, want 2", state.Snapshot.Turn)
	}
	if state.Timer == nil {
		t.Error("rejoin state must carry the running clock")
	} else if state.Timer.Turn != 2 {
		t.Errorf("timer turn = %d, want 2", state.Timer.Turn)
	}
}

func TestRejoinSinceFiltersReplayedEntries(t *testing.T) {
	m, repo, _ := newTestManager(t, 1)
	battleID, pid1, pid2 := startTestBattle(t, m, rosterOf("Swiftling"), rosterOf("Plodder"))

	full, _ := repo.GetFullLog(battleID)
	cutoff := full[len(full)-1].CreatedAt

	if err := m.SubmitMove(battleID, pid1, "Tap"); err != nil {
		t.Fatal(err)
	}
	if err := m.SubmitMove(battleID, pid2, "Tap"); err != nil {
		t.Fatal(err)
	}

	state, err := m.Rejoin(battleID, pid1, cutoff)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range state.Log {
		if !e.CreatedAt.After(cutoff) {
			t.Errorf("entry %d at %v should have been filtered", e.ID, e.CreatedAt)
		}
	}
	if len(state.Log) == 0 {
		t.Error("entries after the cutoff must be replayed")
	}
}

func TestRejoinAuthorization(t *testing.T) {
	m, _, _ := newTestManager(t, 1)
	battleID, _, _ := startTestBattle(t, m, rosterOf("Swiftling"), rosterOf("Plodder"))

	if _, err := m.Rejoin("no-such-battle", "x", time.Time{}); err != ErrBattleNotFound {
		t.Errorf("unknown battle error = %v", err)
	}
	if _, err := m.Rejoin(battleID, "stranger", time.Time{}); err != ErrNotParticipant {
		t.Errorf("stranger error = %v", err)
	}
}

func TestSnapshotHidesOpponentDetail(t *testing.T) {
	m, _, _ := newTestManager(t, 1)
	battleID, pid1, _ := startTestBattle(t, m, rosterOf("Swiftling"), rosterOf("Plodder", "Glasscannon"))

	snap, err := m.Snapshot(battleID, pid1)
	if err != nil {
		t.Fatal(err)
	}
	if snap.You.Active == nil || snap.You.Active.Species != "Swiftling" {
		t.Errorf("own active = %+v", snap.You.Active)
	}
	if snap.Opponent.Active == nil || snap.Opponent.Active.Name != "Plodder" {
		t.Errorf("opponent active = %+v", snap.Opponent.Active)
	}
	if len(snap.Opponent.Roster) != 2 {
		t.Errorf("opponent roster refs = %d, want 2", len(snap.Opponent.Roster))
	}
}
