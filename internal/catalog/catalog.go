package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/NurAbir/pokemon-battle-server/internal/game"
)

// Move categories from the catalog. Status moves never deal direct damage.
const (
	CategoryPhysical = "physical"
	CategorySpecial  = "special"
	CategoryStatus   = "status"
)

// Species is a static catalog definition. The battle core reads it when
// building combatants but never mutates or owns it.
type Species struct {
	Name      string     `json:"name"`
	Types     []string   `json:"types"`
	BaseStats game.Stats `json:"base_stats"`
}

// Move is a static move definition. Accuracy is a pointer: nil means the
// move never misses.
type Move struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Power    int    `json:"power"`
	Accuracy *int   `json:"accuracy"`
	Priority int    `json:"priority"`
}

// IsDamaging reports whether the move resolves through the damage formula.
func (m Move) IsDamaging() bool {
	return m.Category != CategoryStatus && m.Power > 0
}

// Catalog is the read-only move/species store, keyed by normalized name.
type Catalog struct {
	species map[string]Species
	moves   map[string]Move
}

// Normalize maps a user-supplied name onto its catalog key: lowercase with
// spaces, hyphens and apostrophes stripped ("Quick Attack" -> "quickattack").
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\'', '.':
			return -1
		}
		return r
	}, s)
}

// Load reads the species and move files and validates every entry. Both
// files hold a JSON object keyed by arbitrary ids; keys are re-derived from
// the entry names so lookups are format-insensitive.
func Load(speciesPath, movesPath string) (*Catalog, error) {
	c := &Catalog{
		species: make(map[string]Species),
		moves:   make(map[string]Move),
	}

	var rawSpecies map[string]Species
	if err := decodeFile(speciesPath, &rawSpecies); err != nil {
		return nil, err
	}
	for _, sp := range rawSpecies {
		if sp.Name == "" {
			return nil, fmt.Errorf("catalog file %s: species entry missing 'name'", speciesPath)
		}
		if len(sp.Types) < 1 || len(sp.Types) > 2 {
			return nil, fmt.Errorf("catalog file %s: species %q must have 1 or 2 types", speciesPath, sp.Name)
		}
		key := Normalize(sp.Name)
		if _, exists := c.species[key]; exists {
			return nil, fmt.Errorf("catalog file %s: duplicate species %q", speciesPath, sp.Name)
		}
		for i := range sp.Types {
			sp.Types[i] = strings.ToLower(sp.Types[i])
		}
		c.species[key] = sp
	}
	if len(c.species) == 0 {
		return nil, fmt.Errorf("catalog file %s: no species defined", speciesPath)
	}

	var rawMoves map[string]Move
	if err := decodeFile(movesPath, &rawMoves); err != nil {
		return nil, err
	}
	for _, mv := range rawMoves {
		if mv.Name == "" {
			return nil, fmt.Errorf("catalog file %s: move entry missing 'name'", movesPath)
		}
		switch mv.Category {
		case CategoryPhysical, CategorySpecial, CategoryStatus:
		default:
			return nil, fmt.Errorf("catalog file %s: move %q has unknown category %q", movesPath, mv.Name, mv.Category)
		}
		key := Normalize(mv.Name)
		if _, exists := c.moves[key]; exists {
			return nil, fmt.Errorf("catalog file %s: duplicate move %q", movesPath, mv.Name)
		}
		mv.Type = strings.ToLower(mv.Type)
		c.moves[key] = mv
	}
	if len(c.moves) == 0 {
		return nil, fmt.Errorf("catalog file %s: no moves defined", movesPath)
	}

	return c, nil
}

func decodeFile(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return nil
}

// Species looks up a species by name, format-normalized.
func (c *Catalog) Species(name string) (Species, bool) {
	sp, ok := c.species[Normalize(name)]
	return sp, ok
}

// Move looks up a move by name, format-normalized.
func (c *Catalog) Move(name string) (Move, bool) {
	mv, ok := c.moves[Normalize(name)]
	return mv, ok
}

// NewCombatant builds a live combatant from its catalog species, scaling
// base stats by level with the classic formulas.
func (c *Catalog) NewCombatant(speciesName, nickname string, level int, moves []string) (game.Combatant, error) {
	sp, ok := c.Species(speciesName)
	if !ok {
		return game.Combatant{}, fmt.Errorf("unknown species %q", speciesName)
	}
	if level < 1 || level > 100 {
		return game.Combatant{}, fmt.Errorf("species %q: level %d out of range", speciesName, level)
	}
	if len(moves) == 0 || len(moves) > 4 {
		return game.Combatant{}, fmt.Errorf("species %q: between 1 and 4 moves required", speciesName)
	}
	for _, mv := range moves {
		if _, ok := c.Move(mv); !ok {
			return game.Combatant{}, fmt.Errorf("species %q: unknown move %q", speciesName, mv)
		}
	}

	hp := 2*sp.BaseStats.HP*level/100 + level + 10
	scale := func(base int) int { return 2*base*level/100 + 5 }
	types := make([]string, len(sp.Types))
	copy(types, sp.Types)

	return game.Combatant{
		Species:   sp.Name,
		Nickname:  nickname,
		Level:     level,
		Types:     types,
		CurrentHP: hp,
		MaxHP:     hp,
		Stats: game.Stats{
			HP:        hp,
			Attack:    scale(sp.BaseStats.Attack),
			Defense:   scale(sp.BaseStats.Defense),
			SpAttack:  scale(sp.BaseStats.SpAttack),
			SpDefense: scale(sp.BaseStats.SpDefense),
			Speed:     scale(sp.BaseStats.Speed),
		},
		Moves: append([]string(nil), moves...),
	}, nil
}
