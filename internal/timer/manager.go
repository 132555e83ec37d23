package timer

import (
	"sort"
	"sync"
	"time"
)

// Notifier receives countdown events as they happen. The orchestration
// layer implements it to fan events out to the battle's broadcast group.
type Notifier interface {
	TimerStarted(battleID string, turn, seconds int)
	TimerTick(battleID, participantID string, remaining int)
	TimerWarning(battleID, participantID string, remaining int)
}

// ParticipantClock is the countdown state for one participant in one turn.
type ParticipantClock struct {
	Ready     bool `json:"ready"`
	Remaining int  `json:"remaining"`
	Warned    bool `json:"warned"`
}

// State is a point-in-time copy of a battle's timer, attached to rejoin
// snapshots so a reconnecting client can resume its local countdown.
type State struct {
	Turn     int                         `json:"turn"`
	Duration int                         `json:"duration"`
	Clocks   map[string]ParticipantClock `json:"clocks"`
}

// Manager owns one countdown per active battle. There is exactly one tick
// loop per battle, never per participant; the loop is cancelled
// synchronously when both participants are ready, on forced-switch
// completion, and on battle completion.
type Manager struct {
	mu     sync.Mutex
	timers map[string]*battleTimer

	turnSeconds    int
	warningSeconds int
	tickInterval   time.Duration
	notifier       Notifier
}

type battleTimer struct {
	mu        sync.Mutex
	battleID  string
	turn      int
	clocks    map[string]*ParticipantClock
	order     []string
	cancel    chan struct{}
	running   bool
	onTimeout func(participantID string)
}

// NewManager builds a timer manager ticking once per second. The tick
// interval is configurable so tests can run the countdown faster.
func NewManager(turnSeconds, warningSeconds int, tick time.Duration, notifier Notifier) *Manager {
	if tick <= 0 {
		tick = time.Second
	}
	return &Manager{
		timers:         make(map[string]*battleTimer),
		turnSeconds:    turnSeconds,
		warningSeconds: warningSeconds,
		tickInterval:   tick,
		notifier:       notifier,
	}
}

// StartBattle registers a countdown resource for a new battle. The first
// turn is started separately via StartTurn.
func (m *Manager) StartBattle(battleID string, participantIDs []string) {
	bt := &battleTimer{
		battleID: battleID,
		clocks:   make(map[string]*ParticipantClock, len(participantIDs)),
	}
	for _, pid := range participantIDs {
		bt.clocks[pid] = &ParticipantClock{Remaining: m.turnSeconds}
		bt.order = append(bt.order, pid)
	}
	sort.Strings(bt.order)

	m.mu.Lock()
	m.timers[battleID] = bt
	m.mu.Unlock()
}

// StartTurn resets every participant's readiness, remaining time and warned
// flag and begins the tick loop. onTimeout is invoked exactly once, with the
// participant whose clock reached zero, after the loop has stopped.
func (m *Manager) StartTurn(battleID string, turn int, onTimeout func(participantID string)) {
	bt := m.get(battleID)
	if bt == nil {
		return
	}

	bt.mu.Lock()
	bt.stopLocked()
	bt.turn = turn
	bt.onTimeout = onTimeout
	for _, c := range bt.clocks {
		c.Ready = false
		c.Remaining = m.turnSeconds
		c.Warned = false
	}
	cancel := make(chan struct{})
	bt.cancel = cancel
	bt.running = true
	bt.mu.Unlock()

	m.notifier.TimerStarted(battleID, turn, m.turnSeconds)
	go m.run(bt, cancel, onTimeout)
}

func (m *Manager) run(bt *battleTimer, cancel chan struct{}, onTimeout func(string)) {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			if timedOut := m.tick(bt, cancel); timedOut != "" {
				onTimeout(timedOut)
				return
			}
		}
	}
}

// tick advances every not-yet-ready clock by one second. It returns the id
// of a participant whose time ran out, after marking the loop stopped so
// the timeout fires only once. The cancel channel identifies the calling
// loop: a stale goroutine whose ticker raced a StartTurn reset must not
// touch the fresh clocks.
func (m *Manager) tick(bt *battleTimer, cancel chan struct{}) (timedOut string) {
	type event struct {
		pid       string
		remaining int
		warning   bool
	}
	var events []event

	bt.mu.Lock()
	if !bt.running || bt.cancel != cancel {
		bt.mu.Unlock()
		return ""
	}
	for _, pid := range bt.order {
		c := bt.clocks[pid]
		if c.Ready {
			continue
		}
		c.Remaining--
		if c.Remaining < 0 {
			c.Remaining = 0
		}
		events = append(events, event{pid: pid, remaining: c.Remaining})
		if c.Remaining <= m.warningSeconds && c.Remaining > 0 && !c.Warned {
			c.Warned = true
			events = append(events, event{pid: pid, remaining: c.Remaining, warning: true})
		}
		if c.Remaining == 0 {
			bt.running = false
			timedOut = pid
			break
		}
	}
	bt.mu.Unlock()

	for _, ev := range events {
		if ev.warning {
			m.notifier.TimerWarning(bt.battleID, ev.pid, ev.remaining)
		} else {
			m.notifier.TimerTick(bt.battleID, ev.pid, ev.remaining)
		}
	}
	return timedOut
}

// MarkReady flips a participant's readiness; once every participant is
// ready the tick loop stops immediately.
func (m *Manager) MarkReady(battleID, participantID string) {
	bt := m.get(battleID)
	if bt == nil {
		return
	}
	bt.mu.Lock()
	defer bt.mu.Unlock()
	c, ok := bt.clocks[participantID]
	if !ok {
		return
	}
	c.Ready = true
	for _, other := range bt.clocks {
		if !other.Ready {
			return
		}
	}
	bt.stopLocked()
}

// HandleDisconnect treats an ungraceful disconnect as the participant's
// clock reaching zero right now: the loop stops and the turn's timeout
// callback fires for them, instead of waiting out the countdown.
func (m *Manager) HandleDisconnect(battleID, participantID string) {
	bt := m.get(battleID)
	if bt == nil {
		return
	}
	bt.mu.Lock()
	c, ok := bt.clocks[participantID]
	if !ok || c.Ready || !bt.running {
		bt.mu.Unlock()
		return
	}
	c.Remaining = 0
	bt.stopLocked()
	cb := bt.onTimeout
	bt.mu.Unlock()

	if cb != nil {
		cb(participantID)
	}
}

// StopTurn cancels the tick loop without firing a timeout, used when a
// forced-switch sub-turn closes before the clock runs out.
func (m *Manager) StopTurn(battleID string) {
	bt := m.get(battleID)
	if bt == nil {
		return
	}
	bt.mu.Lock()
	bt.stopLocked()
	bt.mu.Unlock()
}

// StopBattle cancels any running loop and discards the countdown resource.
func (m *Manager) StopBattle(battleID string) {
	m.mu.Lock()
	bt := m.timers[battleID]
	delete(m.timers, battleID)
	m.mu.Unlock()
	if bt == nil {
		return
	}
	bt.mu.Lock()
	bt.stopLocked()
	bt.mu.Unlock()
}

// State returns a copy of the battle's current timer state.
func (m *Manager) State(battleID string) (State, bool) {
	bt := m.get(battleID)
	if bt == nil {
		return State{}, false
	}
	bt.mu.Lock()
	defer bt.mu.Unlock()
	st := State{
		Turn:     bt.turn,
		Duration: m.turnSeconds,
		Clocks:   make(map[string]ParticipantClock, len(bt.clocks)),
	}
	for pid, c := range bt.clocks {
		st.Clocks[pid] = *c
	}
	return st, true
}

func (m *Manager) get(battleID string) *battleTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timers[battleID]
}

// stopLocked cancels the tick loop if it is running. Callers hold bt.mu.
func (bt *battleTimer) stopLocked() {
	if bt.running {
		bt.running = false
		close(bt.cancel)
	}
}
