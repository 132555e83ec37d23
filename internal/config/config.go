package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type rawConfig struct {
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	Database *struct {
		Path string `json:"path"`
	} `json:"database"`
	Catalog *struct {
		SpeciesPath string `json:"species_path"`
		MovesPath   string `json:"moves_path"`
	} `json:"catalog"`
	Timer *struct {
		TurnSeconds    int `json:"turn_seconds"`
		WarningSeconds int `json:"warning_seconds"`
	} `json:"timer"`
}

// LoadedConfig is the resolved server configuration with defaults applied.
type LoadedConfig struct {
	ServerAddress  string
	DatabasePath   string
	SpeciesPath    string
	MovesPath      string
	TurnSeconds    int
	WarningSeconds int
}

// LoadConfig reads the JSON configuration file at path, validates it and
// applies defaults for anything omitted.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	lc := &LoadedConfig{
		ServerAddress:  ":8080",
		DatabasePath:   "battles.db",
		SpeciesPath:    "data/species.json",
		MovesPath:      "data/moves.json",
		TurnSeconds:    60,
		WarningSeconds: 10,
	}
	if rc.Server != nil && rc.Server.Address != "" {
		lc.ServerAddress = rc.Server.Address
	}
	if rc.Database != nil && rc.Database.Path != "" {
		lc.DatabasePath = rc.Database.Path
	}
	if rc.Catalog != nil {
		if rc.Catalog.SpeciesPath != "" {
			lc.SpeciesPath = rc.Catalog.SpeciesPath
		}
		if rc.Catalog.MovesPath != "" {
			lc.MovesPath = rc.Catalog.MovesPath
		}
	}
	if rc.Timer != nil {
		if rc.Timer.TurnSeconds != 0 {
			lc.TurnSeconds = rc.Timer.TurnSeconds
		}
		if rc.Timer.WarningSeconds != 0 {
			lc.WarningSeconds = rc.Timer.WarningSeconds
		}
	}

	if lc.TurnSeconds <= 0 {
		return nil, fmt.Errorf("config file %s: timer.turn_seconds must be positive", path)
	}
	if lc.WarningSeconds < 0 || lc.WarningSeconds >= lc.TurnSeconds {
		return nil, fmt.Errorf("config file %s: timer.warning_seconds must be in [0, turn_seconds)", path)
	}

	return lc, nil
}
