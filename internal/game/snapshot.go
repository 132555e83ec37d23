package game

// Snapshot is a participant-scoped view of battle state. Each viewer sees
// their own roster in full but only the opponent's revealed information, so
// pushing a snapshot never leaks unseen team composition.
type Snapshot struct {
	BattleID string       `json:"battle_id"`
	Turn     int          `json:"turn"`
	Status   string       `json:"status"`
	WinnerID string       `json:"winner_id,omitempty"`
	You      OwnView      `json:"you"`
	Opponent OpponentView `json:"opponent"`
}

// OwnView carries the viewer's full active combatant plus a roster summary.
type OwnView struct {
	Name        string           `json:"name"`
	Active      *Combatant       `json:"active,omitempty"`
	ActiveIndex int              `json:"active_index"`
	Roster      []RosterItemView `json:"roster"`
	MustSwitch  bool             `json:"must_switch"`
}

// OpponentView reduces the other side to what battle play has revealed:
// the active combatant's public detail and name/fainted flags for the rest.
type OpponentView struct {
	Name   string              `json:"name"`
	Active *OpponentActiveView `json:"active,omitempty"`
	Roster []OpponentRosterRef `json:"roster"`
}

type RosterItemView struct {
	Name      string `json:"name"`
	CurrentHP int    `json:"current_hp"`
	MaxHP     int    `json:"max_hp"`
	Fainted   bool   `json:"fainted"`
}

type OpponentActiveView struct {
	Name      string   `json:"name"`
	Types     []string `json:"types"`
	Level     int      `json:"level"`
	CurrentHP int      `json:"current_hp"`
	MaxHP     int      `json:"max_hp"`
}

type OpponentRosterRef struct {
	Name    string `json:"name"`
	Fainted bool   `json:"fainted"`
}

// SnapshotFor builds the state snapshot from the given viewer's point of
// view. The viewer must be a battle participant.
func SnapshotFor(b *Battle, viewerID string) (Snapshot, bool) {
	you, opp, ok := b.ParticipantByID(viewerID)
	if !ok {
		return Snapshot{}, false
	}

	own := OwnView{
		Name:        you.Name,
		Active:      you.Active(),
		ActiveIndex: you.ActiveIndex,
		Roster:      make([]RosterItemView, 0, len(you.Roster)),
		MustSwitch:  you.MustSwitch,
	}
	for i := range you.Roster {
		c := &you.Roster[i]
		own.Roster = append(own.Roster, RosterItemView{
			Name:      c.DisplayName(),
			CurrentHP: c.CurrentHP,
			MaxHP:     c.MaxHP,
			Fainted:   c.Fainted,
		})
	}

	other := OpponentView{
		Name:   opp.Name,
		Roster: make([]OpponentRosterRef, 0, len(opp.Roster)),
	}
	if active := opp.Active(); active != nil {
		other.Active = &OpponentActiveView{
			Name:      active.DisplayName(),
			Types:     active.Types,
			Level:     active.Level,
			CurrentHP: active.CurrentHP,
			MaxHP:     active.MaxHP,
		}
	}
	for i := range opp.Roster {
		c := &opp.Roster[i]
		other.Roster = append(other.Roster, OpponentRosterRef{
			Name:    c.DisplayName(),
			Fainted: c.Fainted,
		})
	}

	return Snapshot{
		BattleID: b.ID,
		Turn:     b.Turn,
		Status:   b.Status,
		WinnerID: b.WinnerID,
		You:      own,
		Opponent: other,
	}, true
}
