package storage

import (
	"github.com/NurAbir/pokemon-battle-server/internal/game"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&game.BattleRecord{}, &game.BattleLogEntry{}, &game.PlayerProfile{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
