package service

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/NurAbir/pokemon-battle-server/internal/catalog"
	"github.com/NurAbir/pokemon-battle-server/internal/game"
)

// memRepo is an in-memory stand-in for the sqlite repository.
type memRepo struct {
	mu       sync.Mutex
	records  map[string]*game.BattleRecord
	logs     []game.BattleLogEntry
	profiles map[string]*game.PlayerProfile
	nextID   uint
	base     time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		records:  make(map[string]*game.BattleRecord),
		profiles: make(map[string]*game.PlayerProfile),
		base:     time.Now(),
	}
}

func (r *memRepo) CreateBattleRecord(rec *game.BattleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[rec.BattleID] = &cp
	return nil
}

func (r *memRepo) UpdateBattleRecord(rec *game.BattleRecord) error {
	return r.CreateBattleRecord(rec)
}

func (r *memRepo) GetBattleRecord(battleID string) (*game.BattleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[battleID]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *rec
	return &cp, nil
}

func (r *memRepo) ListBattlesByParticipant(participantID string) ([]game.BattleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []game.BattleRecord
	for _, rec := range r.records {
		if rec.HasParticipant(participantID) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memRepo) CreateLogEntry(entry *game.BattleLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	// Strictly increasing timestamps keep replay ordering unambiguous.
	entry.CreatedAt = r.base.Add(time.Duration(r.nextID) * time.Millisecond)
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *memRepo) GetFullLog(battleID string) ([]game.BattleLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []game.BattleLogEntry
	for _, e := range r.logs {
		if e.BattleID == battleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memRepo) GetLogAfter(battleID string, after time.Time) ([]game.BattleLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []game.BattleLogEntry
	for _, e := range r.logs {
		if e.BattleID == battleID && e.CreatedAt.After(after) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memRepo) GetProfile(participantID string) (*game.PlayerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[participantID]
	if !ok {
		return nil, errors.New("profile not found")
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) UpdateStatsOnBattleEnd(rec *game.BattleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apply := func(id, name string) {
		p, ok := r.profiles[id]
		if !ok {
			p = &game.PlayerProfile{ParticipantID: id, Name: name}
			r.profiles[id] = p
		}
		p.BattlesPlayed++
		switch rec.WinnerID {
		case id:
			p.Wins++
		case "":
		default:
			p.Losses++
		}
	}
	apply(rec.Participant1ID, rec.Participant1Name)
	apply(rec.Participant2ID, rec.Participant2Name)
	return nil
}

// kinds returns the ordered event kinds logged for a battle.
func (r *memRepo) kinds(battleID string) []game.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []game.EventKind
	for _, e := range r.logs {
		if e.BattleID == battleID {
			out = append(out, e.Kind)
		}
	}
	return out
}

// actorsOf returns the actor ids of every entry of the given kind, in order.
func (r *memRepo) actorsOf(battleID string, kind game.EventKind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.logs {
		if e.BattleID == battleID && e.Kind == kind {
			out = append(out, e.ActorID)
		}
	}
	return out
}

func (r *memRepo) countKind(battleID string, kind game.EventKind) int {
	return len(r.actorsOf(battleID, kind))
}

// recorder is an in-memory Broadcaster capturing everything pushed out.
type recorder struct {
	mu     sync.Mutex
	sent   []sentMessage
	closed []string
}

type sentMessage struct {
	battleID      string
	participantID string
	msgType       string
	data          interface{}
}

func (r *recorder) SendToBattle(battleID, msgType string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{battleID: battleID, msgType: msgType, data: data})
}

func (r *recorder) SendToParticipant(battleID, participantID, msgType string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{battleID: battleID, participantID: participantID, msgType: msgType, data: data})
}

func (r *recorder) CloseBattle(battleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, battleID)
}

func (r *recorder) closedBattles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.closed...)
}

func (r *recorder) countType(msgType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.sent {
		if m.msgType == msgType {
			n++
		}
	}
	return n
}

const testSpeciesJSON = `{
  "swiftling": {"name": "Swiftling", "types": ["normal"],
    "base_stats": {"hp": 150, "attack": 30, "defense": 70, "sp_attack": 30, "sp_defense": 70, "speed": 130}},
  "plodder": {"name": "Plodder", "types": ["normal"],
    "base_stats": {"hp": 150, "attack": 30, "defense": 70, "sp_attack": 30, "sp_defense": 70, "speed": 10}},
  "glasscannon": {"name": "Glasscannon", "types": ["normal"],
    "base_stats": {"hp": 20, "attack": 150, "defense": 20, "sp_attack": 30, "sp_defense": 20, "speed": 60}}
}`

const testMovesJSON = `{
  "tap": {"name": "Tap", "type": "normal", "category": "physical", "power": 40},
  "megablast": {"name": "Megablast", "type": "normal", "category": "physical", "power": 250},
  "rally": {"name": "Rally", "type": "normal", "category": "status"}
}`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	sp := filepath.Join(dir, "species.json")
	mv := filepath.Join(dir, "moves.json")
	if err := os.WriteFile(sp, []byte(testSpeciesJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(mv, []byte(testMovesJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Load(sp, mv)
	if err != nil {
		t.Fatalf("failed to load test catalog: %v", err)
	}
	return cat
}

// newTestManager builds a manager with a long turn clock so timers never
// interfere with synchronous assertions.
func newTestManager(t *testing.T, seed int64) (*Manager, *memRepo, *recorder) {
	t.Helper()
	repo := newMemRepo()
	rec := &recorder{}
	m := NewManager(repo, testCatalog(t), rec, 300, 10, time.Second, rand.New(rand.NewSource(seed)))
	return m, repo, rec
}

func rosterOf(species ...string) []RosterSpec {
	out := make([]RosterSpec, 0, len(species))
	for _, sp := range species {
		out = append(out, RosterSpec{Species: sp, Level: 50, Moves: []string{"Tap", "Megablast", "Rally"}})
	}
	return out
}

// startTestBattle queues two participants and returns the created battle id
// with both participant ids, in join order.
func startTestBattle(t *testing.T, m *Manager, roster1, roster2 []RosterSpec) (battleID, pid1, pid2 string) {
	t.Helper()
	first, err := m.JoinMatchmaking("Ash", roster1)
	if err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if !first.Queued {
		t.Fatal("first participant should be queued")
	}
	second, err := m.JoinMatchmaking("Misty", roster2)
	if err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if second.BattleID == "" {
		t.Fatal("second join should start a battle")
	}
	return second.BattleID, first.ParticipantID, second.ParticipantID
}
