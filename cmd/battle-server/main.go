package main

import (
	"os"

	"github.com/NurAbir/pokemon-battle-server/internal/api"
	"github.com/NurAbir/pokemon-battle-server/internal/constants"
	"github.com/NurAbir/pokemon-battle-server/internal/logging"
	"github.com/gin-gonic/gin"
)

func main() {
	// Path may be provided via BATTLE_CONFIG or defaults to
	// ./battle_config.json in the current working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./battle_config.json"
	}
	cfg := loadConfigOrExit(configPath)

	cat := loadCatalogOrExit(cfg)
	repo := createRepositoryOrExit(cfg.DatabasePath)
	hub, manager := buildServer(repo, cat, cfg)
	go hub.Run()

	router := gin.Default()
	handler := api.NewBattleHandler(repo, manager, hub)
	api.RegisterRoutes(router, handler)

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
