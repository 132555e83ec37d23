package storage

import (
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/game"
	"gorm.io/gorm"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateBattleRecord(rec *game.BattleRecord) error {
	return r.db.Create(rec).Error
}

func (r *sqliteRepository) UpdateBattleRecord(rec *game.BattleRecord) error {
	return r.db.Save(rec).Error
}

func (r *sqliteRepository) GetBattleRecord(battleID string) (*game.BattleRecord, error) {
	var rec game.BattleRecord
	if err := r.db.Where("battle_id = ?", battleID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) ListBattlesByParticipant(participantID string) ([]game.BattleRecord, error) {
	var recs []game.BattleRecord
	err := r.db.
		Where("participant1_id = ? OR participant2_id = ?", participantID, participantID).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

func (r *sqliteRepository) CreateLogEntry(entry *game.BattleLogEntry) error {
	return r.db.Create(entry).Error
}

func (r *sqliteRepository) GetFullLog(battleID string) ([]game.BattleLogEntry, error) {
	var entries []game.BattleLogEntry
	err := r.db.
		Where("battle_id = ?", battleID).
		Order("created_at, id").
		Find(&entries).Error
	return entries, err
}

func (r *sqliteRepository) GetLogAfter(battleID string, after time.Time) ([]game.BattleLogEntry, error) {
	var entries []game.BattleLogEntry
	err := r.db.
		Where("battle_id = ? AND created_at > ?", battleID, after).
		Order("created_at, id").
		Find(&entries).Error
	return entries, err
}

func (r *sqliteRepository) GetProfile(participantID string) (*game.PlayerProfile, error) {
	var p game.PlayerProfile
	if err := r.db.Where("participant_id = ?", participantID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStatsOnBattleEnd upserts both participants' lifetime counters from a
// completed battle record. A draw increments battles played only.
func (r *sqliteRepository) UpdateStatsOnBattleEnd(rec *game.BattleRecord) error {
	apply := func(participantID, name string) error {
		var p game.PlayerProfile
		err := r.db.Where("participant_id = ?", participantID).First(&p).Error
		if err == gorm.ErrRecordNotFound {
			p = game.PlayerProfile{ParticipantID: participantID, Name: name}
		} else if err != nil {
			return err
		}
		p.Name = name
		p.BattlesPlayed++
		switch rec.WinnerID {
		case participantID:
			p.Wins++
		case "":
		default:
			p.Losses++
		}
		return r.db.Save(&p).Error
	}

	if err := apply(rec.Participant1ID, rec.Participant1Name); err != nil {
		return err
	}
	return apply(rec.Participant2ID, rec.Participant2Name)
}
