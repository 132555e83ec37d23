package service

import (
	"testing"

	"github.com/NurAbir/pokemon-battle-server/internal/game"
)

func TestJoinMatchmakingQueuesFirstParticipant(t *testing.T) {
	m, _, _ := newTestManager(t, 1)

	res, err := m.JoinMatchmaking("Ash", rosterOf("Swiftling"))
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if !res.Queued || res.BattleID != "" {
		t.Errorf("expected queued result, got %+v", res)
	}
	if res.ParticipantID == "" {
		t.Error("participant id must be assigned")
	}
	if m.QueueSize() != 1 {
		t.Errorf("queue size = %d, want 1", m.QueueSize())
	}
}

func TestJoinMatchmakingPairsAndStartsBattle(t *testing.T) {
	m, repo, _ := newTestManager(t, 1)
	battleID, pid1, pid2 := startTestBattle(t, m, rosterOf("Swiftling"), rosterOf("Plodder"))

	if m.QueueSize() != 0 {
		t.Errorf("queue size after pairing = %d, want 0", m.QueueSize())
	}
	if id, ok := m.BattleIDForParticipant(pid1); !ok || id != battleID {
		t.Errorf("pid1 not indexed to battle: %v %v", id, ok)
	}
	if id, ok := m.BattleIDForParticipant(pid2); !ok || id != battleID {
		t.Errorf("pid2 not indexed to battle: %v %v", id, ok)
	}

	rec, err := repo.GetBattleRecord(battleID)
	if err != nil {
		t.Fatalf("record missing: %v", err)
	}
	if rec.Status != game.StatusActive {
		t.Errorf("record status = %q, want active", rec.Status)
	}

	kinds := repo.kinds(battleID)
	if len(kinds) < 2 || kinds[0] != game.EventBattleStart || kinds[1] != game.EventTurnMarker {
		t.Errorf("opening log = %v, want [battle_start turn_marker ...]", kinds)
	}
}

func TestJoinMatchmakingRejectsBadInput(t *testing.T) {
	m, _, _ := newTestManager(t, 1)

	if _, err := m.JoinMatchmaking("", rosterOf("Swiftling")); err == nil {
		t.Error("empty name should be rejected")
	}
	if _, err := m.JoinMatchmaking("Ash", nil); err == nil {
		t.Error("empty roster should be rejected")
	}
	if _, err := m.JoinMatchmaking("Ash", rosterOf("Missingno")); err == nil {
		t.Error("unknown species should be rejected")
	}
	bad := rosterOf("Swiftling")
	bad[0].Moves = []string{"Splash"}
	if _, err := m.JoinMatchmaking("Ash", bad); err == nil {
		t.Error("unknown move should be rejected")
	}
	if m.QueueSize() != 0 {
		t.Errorf("rejected joins must not enqueue, queue size = %d", m.QueueSize())
	}
}

func TestLeaveMatchmaking(t *testing.T) {
	m, _, _ := newTestManager(t, 1)

	res, err := m.JoinMatchmaking("Ash", rosterOf("Swiftling"))
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if !m.LeaveMatchmaking(res.ParticipantID) {
		t.Error("leaving while queued should succeed")
	}
	if m.LeaveMatchmaking(res.ParticipantID) {
		t.Error("second leave should be a no-op")
	}

	// A fresh opponent joining afterwards waits instead of pairing with the
	// withdrawn entry.
	other, err := m.JoinMatchmaking("Misty", rosterOf("Plodder"))
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if !other.Queued {
		t.Error("opponent should be queued after the first participant left")
	}
}
