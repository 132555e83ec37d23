package game

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// EventKind enumerates the closed battle-log event vocabulary. Each kind
// carries a dedicated payload type so the full vocabulary is covered at
// compile time instead of through loose maps.
type EventKind string

const (
	EventBattleStart    EventKind = "battle_start"
	EventTurnMarker     EventKind = "turn_marker"
	EventMoveUsed       EventKind = "move_used"
	EventMoveMissed     EventKind = "move_missed"
	EventMoveFailed     EventKind = "move_failed"
	EventDamage         EventKind = "damage"
	EventCriticalHit    EventKind = "critical_hit"
	EventStatusApplied  EventKind = "status_applied"
	EventStatusDamage   EventKind = "status_damage"
	EventSwitchWithdraw EventKind = "switch_withdraw"
	EventSwitchSendOut  EventKind = "switch_send_out"
	EventFaint          EventKind = "faint"
	EventWarning        EventKind = "warning"
	EventTimeout        EventKind = "timeout"
	EventBattleEnd      EventKind = "battle_end"
	EventInfo           EventKind = "info"
	EventSystem         EventKind = "system"
)

// Per-kind payloads.

type BattleStartPayload struct {
	Participant1 string `json:"participant1"`
	Participant2 string `json:"participant2"`
}

type TurnMarkerPayload struct {
	Turn int `json:"turn"`
}

type MoveUsedPayload struct {
	Attacker string `json:"attacker"`
	Move     string `json:"move"`
	Target   string `json:"target"`
}

type MoveMissedPayload struct {
	Attacker string `json:"attacker"`
	Move     string `json:"move"`
}

type MoveFailedPayload struct {
	Attacker string `json:"attacker"`
	Move     string `json:"move"`
}

type DamagePayload struct {
	Target        string  `json:"target"`
	Amount        int     `json:"amount"`
	RemainingHP   int     `json:"remaining_hp"`
	Effectiveness float64 `json:"effectiveness"`
}

type CriticalHitPayload struct {
	Target string `json:"target"`
}

type StatusAppliedPayload struct {
	Target string `json:"target"`
	Status string `json:"status"`
}

type StatusDamagePayload struct {
	Target      string `json:"target"`
	Status      string `json:"status"`
	Amount      int    `json:"amount"`
	RemainingHP int    `json:"remaining_hp"`
}

type SwitchPayload struct {
	Participant string `json:"participant"`
	Combatant   string `json:"combatant"`
	Index       int    `json:"index"`
}

type FaintPayload struct {
	Participant string `json:"participant"`
	Combatant   string `json:"combatant"`
}

type EffectivenessPayload struct {
	Multiplier float64 `json:"multiplier"`
}

type WarningPayload struct {
	ParticipantID string `json:"participant_id"`
	Remaining     int    `json:"remaining"`
}

type TimeoutPayload struct {
	ParticipantID string `json:"participant_id"`
}

type BattleEndPayload struct {
	WinnerID string `json:"winner_id"`
	Reason   string `json:"reason"`
}

// BattleLogEntry is one immutable row of a battle's append-only narrative.
// Entries are write-once and totally ordered by creation time within a
// battle; they are the sole source of truth for reconnect replay.
type BattleLogEntry struct {
	ID       uint      `json:"id" gorm:"primarykey"`
	BattleID string    `json:"battle_id" gorm:"index:idx_battle_log_battle_created"`
	Turn     int       `json:"turn"`
	Kind     EventKind `json:"kind"`
	Message  string    `json:"message"`
	ActorID  string    `json:"actor_id,omitempty"`
	// Payload holds the kind-specific typed payload in memory and in JSON
	// responses; it is serialized into the payload column for persistence.
	Payload     interface{} `json:"payload,omitempty" gorm:"-"`
	PayloadJSON string      `json:"-" gorm:"column:payload;type:text"`
	CreatedAt   time.Time   `json:"created_at" gorm:"index:idx_battle_log_battle_created"`
}

func (BattleLogEntry) TableName() string { return "battle_log_entries" }

// BeforeSave serializes the typed payload into the persisted column.
func (e *BattleLogEntry) BeforeSave(tx *gorm.DB) error {
	if e.Payload == nil {
		return nil
	}
	b, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	e.PayloadJSON = string(b)
	return nil
}

// AfterFind restores the payload for replayed entries. The concrete type is
// not reconstructed; clients receive the same JSON shape either way.
func (e *BattleLogEntry) AfterFind(tx *gorm.DB) error {
	if e.PayloadJSON != "" {
		e.Payload = json.RawMessage(e.PayloadJSON)
	}
	return nil
}
