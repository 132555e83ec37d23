package game

// ActionKind is the type of a pending per-turn action.
type ActionKind string

const (
	ActionMove   ActionKind = "move"
	ActionSwitch ActionKind = "switch"
)

// Switches always outrank moves during turn ordering. Moves carry the
// priority of their catalog entry (usually zero).
const SwitchPriority = 6

// Action is a participant's choice for one turn. It is ephemeral: stored on
// the participant until the turn resolves, never persisted. Move and
// SwitchTo are mutually exclusive, selected by Kind.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Move     string     `json:"move,omitempty"`
	SwitchTo int        `json:"switch_to,omitempty"`
	// Priority and Speed are filled in at resolution time and order the
	// turn: priority desc, then speed desc, ties broken at random.
	Priority int `json:"-"`
	Speed    int `json:"-"`
}
