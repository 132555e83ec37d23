package storage

import (
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/game"
)

type Repository interface {
	// Battle summary records (history rows, not live state).
	CreateBattleRecord(rec *game.BattleRecord) error
	UpdateBattleRecord(rec *game.BattleRecord) error
	GetBattleRecord(battleID string) (*game.BattleRecord, error)
	ListBattlesByParticipant(participantID string) ([]game.BattleRecord, error)

	// Append-only battle log.
	CreateLogEntry(entry *game.BattleLogEntry) error
	GetFullLog(battleID string) ([]game.BattleLogEntry, error)
	// GetLogAfter returns entries strictly after the given time, for
	// incremental replay on rejoin.
	GetLogAfter(battleID string, after time.Time) ([]game.BattleLogEntry, error)

	// Player profiles and lifetime stats.
	GetProfile(participantID string) (*game.PlayerProfile, error)
	UpdateStatsOnBattleEnd(rec *game.BattleRecord) error
}
