package main

import (
	"github.com/NurAbir/pokemon-battle-server/internal/catalog"
	"github.com/NurAbir/pokemon-battle-server/internal/config"
	"github.com/NurAbir/pokemon-battle-server/internal/logging"
	"github.com/NurAbir/pokemon-battle-server/internal/service"
	"github.com/NurAbir/pokemon-battle-server/internal/storage"
	"github.com/NurAbir/pokemon-battle-server/internal/ws"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid battle configuration", err, logging.Fields{"config_path": path})
	}
	return cfg
}

func loadCatalogOrExit(cfg *config.LoadedConfig) *catalog.Catalog {
	cat, err := catalog.Load(cfg.SpeciesPath, cfg.MovesPath)
	if err != nil {
		logging.Fatal("Failed to load species/move catalog", err, logging.Fields{
			"species_path": cfg.SpeciesPath,
			"moves_path":   cfg.MovesPath,
		})
	}
	return cat
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	return storage.NewSQLiteRepository(db)
}

// buildServer wires the hub and the battle manager together. The hub is the
// manager's broadcaster, and the manager handles the hub's inbound commands,
// so the second link is attached after construction.
func buildServer(repo storage.Repository, cat *catalog.Catalog, cfg *config.LoadedConfig) (*ws.Hub, *service.Manager) {
	hub := ws.NewHub()
	manager := service.NewManager(repo, cat, hub, cfg.TurnSeconds, cfg.WarningSeconds, 0, nil)
	hub.SetManager(manager)
	return hub, manager
}
