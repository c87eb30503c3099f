package engine

import (
	"sync"

	"security-suite/internal/model"
)

// DefaultLogCapacity is the number of entries the firewall view retains.
const DefaultLogCapacity = 50

// TrafficLog keeps the most recent entries, newest first.
type TrafficLog struct {
	mu       sync.RWMutex
	capacity int
	entries  []model.NetworkLogEntry
}

func NewTrafficLog(capacity int) *TrafficLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &TrafficLog{
		capacity: capacity,
		entries:  make([]model.NetworkLogEntry, 0, capacity+1),
	}
}

// Add prepends the entry and drops whatever falls past the capacity.
func (l *TrafficLog) Add(entry model.NetworkLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, model.NetworkLogEntry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = entry
	if len(l.entries) > l.capacity {
		clear(l.entries[l.capacity:])
		l.entries = l.entries[:l.capacity]
	}
}

func (l *TrafficLog) Entries() []model.NetworkLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.NetworkLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *TrafficLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// CountStatus returns how many retained entries carry the given status.
func (l *TrafficLog) CountStatus(status model.Status) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, e := range l.entries {
		if e.Status == status {
			n++
		}
	}
	return n
}
