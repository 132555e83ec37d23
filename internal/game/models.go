package game

import (
	"gorm.io/gorm"
)

// Battle status values. A battle only ever moves active -> completed, once.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Battle-end reasons recorded on completion.
const (
	EndReasonKnockout = "knockout"
	EndReasonForfeit  = "forfeit"
	EndReasonTimeout  = "timeout"
)

// Stat stage bounds. Every stage counter is clamped to this range;
// adjustments past a bound are no-ops at the bound.
const (
	StageMin = -6
	StageMax = 6
)

// Status condition names. These form the vocabulary of the status extension
// point; the core resolution path never applies them, but the calculator
// honors StatusBurn when computing physical damage.
const (
	StatusBurn      = "burn"
	StatusParalysis = "paralysis"
	StatusPoison    = "poison"
	StatusSleep     = "sleep"
	StatusConfusion = "confusion"
)

// Stats holds the six core stats of a combatant after level scaling.
type Stats struct {
	HP        int `json:"hp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_attack"`
	SpDefense int `json:"sp_defense"`
	Speed     int `json:"speed"`
}

// StatStages tracks the bounded per-battle stage counters. The five core
// counters scale their stat; accuracy and evasion scale hit chance.
type StatStages struct {
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_attack"`
	SpDefense int `json:"sp_defense"`
	Speed     int `json:"speed"`
	Accuracy  int `json:"accuracy"`
	Evasion   int `json:"evasion"`
}

func clampStage(v int) int {
	if v < StageMin {
		return StageMin
	}
	if v > StageMax {
		return StageMax
	}
	return v
}

// Adjust mutates the named stage by delta, keeping it inside [-6, +6].
func (s *StatStages) Adjust(stat string, delta int) {
	switch stat {
	case "attack":
		s.Attack = clampStage(s.Attack + delta)
	case "defense":
		s.Defense = clampStage(s.Defense + delta)
	case "sp_attack":
		s.SpAttack = clampStage(s.SpAttack + delta)
	case "sp_defense":
		s.SpDefense = clampStage(s.SpDefense + delta)
	case "speed":
		s.Speed = clampStage(s.Speed + delta)
	case "accuracy":
		s.Accuracy = clampStage(s.Accuracy + delta)
	case "evasion":
		s.Evasion = clampStage(s.Evasion + delta)
	}
}

// Combatant is one roster member's live battle state, distinct from its
// static catalog definition (which the core looks up but does not own).
type Combatant struct {
	Species   string     `json:"species"`
	Nickname  string     `json:"nickname"`
	Level     int        `json:"level"`
	Types     []string   `json:"types"`
	CurrentHP int        `json:"current_hp"`
	MaxHP     int        `json:"max_hp"`
	Stats     Stats      `json:"stats"`
	Moves     []string   `json:"moves"`
	Status    string     `json:"status,omitempty"`
	Stages    StatStages `json:"stages"`
	Fainted   bool       `json:"fainted"`
}

// DisplayName returns the nickname when set, otherwise the species name.
func (c *Combatant) DisplayName() string {
	if c == nil {
		return ""
	}
	if c.Nickname != "" {
		return c.Nickname
	}
	return c.Species
}

// ApplyDamage subtracts amount from current HP, clamping at zero and
// flipping the fainted flag when HP reaches zero.
func (c *Combatant) ApplyDamage(amount int) {
	if amount < 0 {
		amount = 0
	}
	c.CurrentHP -= amount
	if c.CurrentHP <= 0 {
		c.CurrentHP = 0
		c.Fainted = true
	}
}

// Participant is one of the two sides of a battle.
type Participant struct {
	ID            string      `json:"participant_id"`
	Name          string      `json:"name"`
	Roster        []Combatant `json:"roster"`
	ActiveIndex   int         `json:"active_index"`
	PendingAction *Action     `json:"-"`
	Ready         bool        `json:"-"`
	// MustSwitch is set when the active combatant faints and a replacement
	// has to be chosen before normal turns resume.
	MustSwitch bool `json:"must_switch"`
}

// Active returns the currently active combatant.
func (p *Participant) Active() *Combatant {
	if p.ActiveIndex < 0 || p.ActiveIndex >= len(p.Roster) {
		return nil
	}
	return &p.Roster[p.ActiveIndex]
}

// AllFainted reports whether the participant has no usable combatant left.
func (p *Participant) AllFainted() bool {
	for i := range p.Roster {
		if !p.Roster[i].Fainted {
			return false
		}
	}
	return true
}

// ClearPending drops the pending action and readiness for the next turn.
func (p *Participant) ClearPending() {
	p.PendingAction = nil
	p.Ready = false
}

// Battle is the root aggregate. It lives in memory for its whole active
// lifetime; only the log and a summary record are persisted.
type Battle struct {
	ID           string          `json:"battle_id"`
	Status       string          `json:"status"`
	Turn         int             `json:"turn"`
	Participants [2]*Participant `json:"participants"`
	WinnerID     string          `json:"winner_id,omitempty"`
	EndReason    string          `json:"end_reason,omitempty"`
}

// ParticipantByID returns the participant with the given identity and its
// opponent, or ok=false when the id belongs to neither side.
func (b *Battle) ParticipantByID(id string) (p, opponent *Participant, ok bool) {
	if b.Participants[0] != nil && b.Participants[0].ID == id {
		return b.Participants[0], b.Participants[1], true
	}
	if b.Participants[1] != nil && b.Participants[1].ID == id {
		return b.Participants[1], b.Participants[0], true
	}
	return nil, nil, false
}

// ParticipantIndex returns 0 or 1 for a member id, -1 otherwise.
func (b *Battle) ParticipantIndex(id string) int {
	for i, p := range b.Participants {
		if p != nil && p.ID == id {
			return i
		}
	}
	return -1
}

// BattleRecord is the persisted summary row backing the read-only history
// surface (list battles, fetch completed battle). The live aggregate never
// round-trips through the database.
type BattleRecord struct {
	gorm.Model
	BattleID         string `json:"battle_id" gorm:"uniqueIndex"`
	Participant1ID   string `json:"participant1_id" gorm:"index"`
	Participant1Name string `json:"participant1_name"`
	Participant2ID   string `json:"participant2_id" gorm:"index"`
	Participant2Name string `json:"participant2_name"`
	Status           string `json:"status"`
	Turn             int    `json:"turn"`
	WinnerID         string `json:"winner_id"`
	EndReason        string `json:"end_reason"`
}

func (BattleRecord) TableName() string { return "battle_records" }

// HasParticipant reports whether the given identity belongs to this record.
func (r *BattleRecord) HasParticipant(id string) bool {
	return r.Participant1ID == id || r.Participant2ID == id
}

// PlayerProfile stores per-participant aggregate results. It is the seam to
// the external statistics collaborator: the core only ever upserts it on
// battle completion.
type PlayerProfile struct {
	gorm.Model
	ParticipantID string `json:"participant_id" gorm:"uniqueIndex"`
	Name          string `json:"name"`
	BattlesPlayed int    `json:"battles_played"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
}

func (PlayerProfile) TableName() string { return "player_profiles" }
