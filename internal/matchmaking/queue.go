package matchmaking

import (
	"sync"
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/game"
)

// Entry is one waiting participant. It lives only until the participant
// leaves, disconnects, or is consumed into a new battle.
type Entry struct {
	ParticipantID string
	Name          string
	Roster        []game.Combatant
	JoinedAt      time.Time
}

// Queue is the shared FIFO of waiting participants. All operations are
// serialized by a single mutex so two concurrent pairing attempts can never
// claim the same entry.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends an entry and returns the resulting queue size. A
// participant already waiting is replaced rather than duplicated.
func (q *Queue) Enqueue(e Entry) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(e.ParticipantID)
	if e.JoinedAt.IsZero() {
		e.JoinedAt = time.Now()
	}
	q.entries = append(q.entries, e)
	return len(q.entries)
}

// DequeuePair atomically removes and returns the two oldest entries. It
// returns ok=false when fewer than two participants are waiting.
func (q *Queue) DequeuePair() (first, second Entry, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) < 2 {
		return Entry{}, Entry{}, false
	}
	first, second = q.entries[0], q.entries[1]
	q.entries = append(q.entries[:0], q.entries[2:]...)
	return first, second, true
}

// Remove deletes the waiting entry for the given participant. It is a no-op
// when the participant is not queued.
func (q *Queue) Remove(participantID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(participantID)
}

func (q *Queue) removeLocked(participantID string) bool {
	for i := range q.entries {
		if q.entries[i].ParticipantID == participantID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of waiting participants.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
