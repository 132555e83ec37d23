package storage

import (
	"testing"
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	db, err := OpenAndMigrate(":memory:")
	require.NoError(t, err)
	return NewSQLiteRepository(db)
}

func TestBattleRecordRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	rec := &game.BattleRecord{
		BattleID:         "b1",
		Participant1ID:   "p1",
		Participant1Name: "Ash",
		Participant2ID:   "p2",
		Participant2Name: "Misty",
		Status:           game.StatusActive,
		Turn:             1,
	}
	require.NoError(t, repo.CreateBattleRecord(rec))

	got, err := repo.GetBattleRecord("b1")
	require.NoError(t, err)
	assert.Equal(t, "Ash", got.Participant1Name)
	assert.True(t, got.HasParticipant("p2"))
	assert.False(t, got.HasParticipant("p3"))

	got.Status = game.StatusCompleted
	got.WinnerID = "p1"
	got.EndReason = game.EndReasonKnockout
	require.NoError(t, repo.UpdateBattleRecord(got))

	updated, err := repo.GetBattleRecord("b1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusCompleted, updated.Status)
	assert.Equal(t, "p1", updated.WinnerID)

	_, err = repo.GetBattleRecord("missing")
	assert.Error(t, err)
}

func TestListBattlesByParticipant(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateBattleRecord(&game.BattleRecord{BattleID: "b1", Participant1ID: "p1", Participant2ID: "p2"}))
	require.NoError(t, repo.CreateBattleRecord(&game.BattleRecord{BattleID: "b2", Participant1ID: "p3", Participant2ID: "p1"}))
	require.NoError(t, repo.CreateBattleRecord(&game.BattleRecord{BattleID: "b3", Participant1ID: "p3", Participant2ID: "p4"}))

	recs, err := repo.ListBattlesByParticipant("p1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = repo.ListBattlesByParticipant("nobody")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestBattleLogOrderingAndReplay(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Now().UTC().Truncate(time.Second)

	entries := []game.BattleLogEntry{
		{BattleID: "b1", Turn: 1, Kind: game.EventBattleStart, Message: "start", CreatedAt: base},
		{BattleID: "b1", Turn: 1, Kind: game.EventMoveUsed, Message: "move",
			Payload: game.MoveUsedPayload{Attacker: "Pikachu", Move: "Thunderbolt", Target: "Squirtle"},
			CreatedAt: base.Add(time.Second)},
		{BattleID: "b1", Turn: 1, Kind: game.EventDamage, Message: "damage", CreatedAt: base.Add(2 * time.Second)},
		{BattleID: "b2", Turn: 1, Kind: game.EventBattleStart, Message: "other battle", CreatedAt: base},
	}
	for i := range entries {
		require.NoError(t, repo.CreateLogEntry(&entries[i]))
	}

	full, err := repo.GetFullLog("b1")
	require.NoError(t, err)
	require.Len(t, full, 3)
	assert.Equal(t, game.EventBattleStart, full[0].Kind)
	assert.Equal(t, game.EventMoveUsed, full[1].Kind)
	assert.Equal(t, game.EventDamage, full[2].Kind)

	// The typed payload survives the round trip as JSON.
	assert.NotNil(t, full[1].Payload)
	assert.Contains(t, string(full[1].PayloadJSON), "Thunderbolt")

	// Replay after a cutoff is strictly exclusive.
	tail, err := repo.GetLogAfter("b1", base.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, game.EventDamage, tail[0].Kind)
}

func TestUpdateStatsOnBattleEnd(t *testing.T) {
	repo := newTestRepo(t)

	rec := &game.BattleRecord{
		BattleID:         "b1",
		Participant1ID:   "p1",
		Participant1Name: "Ash",
		Participant2ID:   "p2",
		Participant2Name: "Misty",
		WinnerID:         "p1",
	}
	require.NoError(t, repo.UpdateStatsOnBattleEnd(rec))

	winner, err := repo.GetProfile("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 0, winner.Losses)
	assert.Equal(t, 1, winner.BattlesPlayed)

	loser, err := repo.GetProfile("p2")
	require.NoError(t, err)
	assert.Equal(t, 1, loser.Losses)

	// A draw counts the battle without a win or loss.
	draw := &game.BattleRecord{
		BattleID:       "b2",
		Participant1ID: "p1", Participant1Name: "Ash",
		Participant2ID: "p2", Participant2Name: "Misty",
	}
	require.NoError(t, repo.UpdateStatsOnBattleEnd(draw))

	winner, err = repo.GetProfile("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, winner.BattlesPlayed)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 0, winner.Losses)

	_, err = repo.GetProfile("ghost")
	assert.Error(t, err)
}
