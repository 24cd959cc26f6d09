package runtime

import (
	"sync"
	"time"

	"courier/domain"
)

type presenceRecord struct {
	connections int
	lastSeen    time.Time
}

// Presence tracks aggregate online/offline state per user across all of
// that user's simultaneous connections (multi-device). A user is online
// iff at least one connection is open; the count never goes below zero,
// which makes the close path idempotent against the registry's own
// idempotent unregister.
type Presence struct {
	mu      sync.Mutex
	records map[string]*presenceRecord
	now     func() time.Time
}

func NewPresence() *Presence {
	return &Presence{
		records: make(map[string]*presenceRecord),
		now:     time.Now,
	}
}

func (p *Presence) ConnectionOpened(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	record, ok := p.records[userID]
	if !ok {
		record = &presenceRecord{}
		p.records[userID] = record
	}
	record.connections++
	record.lastSeen = p.now().UTC()
}

func (p *Presence) ConnectionClosed(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	record, ok := p.records[userID]
	if !ok || record.connections == 0 {
		return
	}
	record.connections--
	record.lastSeen = p.now().UTC()
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	record, ok := p.records[userID]
	return ok && record.connections > 0
}

func (p *Presence) Snapshot(userID string) domain.PresenceSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := domain.PresenceSnapshot{UserID: userID}
	if record, ok := p.records[userID]; ok {
		snapshot.Online = record.connections > 0
		snapshot.Connections = record.connections
		snapshot.LastSeen = record.lastSeen
	}
	return snapshot
}

// Online returns how many distinct users currently hold at least one
// open connection.
func (p *Presence) Online() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	online := 0
	for _, record := range p.records {
		if record.connections > 0 {
			online++
		}
	}
	return online
}
