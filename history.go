package faultgate

import (
	"sync"
	"time"

	"github.com/faultgate/faultgate-go/contracts"
	"github.com/google/uuid"
)

// Entry is one recorded failure. History is diagnostics only and never
// drives recovery decisions.
type Entry struct {
	ID             string
	Err            error
	Context        contracts.ErrorContext
	Classification contracts.Classification
	Timestamp      time.Time
}

// errorHistory is a bounded FIFO buffer of failures with running counters.
// Counters and entries are kept consistent: clearing the history resets both.
type errorHistory struct {
	mu          sync.RWMutex
	entries     []Entry
	capacity    int
	total       int
	byType      map[string]int
	bySeverity  map[string]int
	byComponent map[string]int
}

func newErrorHistory(capacity int) *errorHistory {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &errorHistory{
		entries:     make([]Entry, 0, capacity),
		capacity:    capacity,
		byType:      make(map[string]int),
		bySeverity:  make(map[string]int),
		byComponent: make(map[string]int),
	}
}

// append records a failure, evicting the oldest entry beyond capacity
func (h *errorHistory) append(err error, ectx contracts.ErrorContext, class contracts.Classification) Entry {
	entry := Entry{
		ID:             uuid.New().String(),
		Err:            err,
		Context:        ectx,
		Classification: class,
		Timestamp:      time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) >= h.capacity {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, entry)

	h.total++
	h.byType[class.Type.String()]++
	h.bySeverity[class.Severity.String()]++
	h.byComponent[ectx.Component]++

	return entry
}

// recent returns up to limit entries, newest last. limit <= 0 returns all
// retained entries.
func (h *errorHistory) recent(limit int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.entries)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Entry, limit)
	copy(out, h.entries[n-limit:])
	return out
}

func (h *errorHistory) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// snapshot returns the running counters and the most recent entries
func (h *errorHistory) snapshot(recentLimit int) Statistics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Statistics{
		Total:       h.total,
		ByType:      make(map[string]int, len(h.byType)),
		BySeverity:  make(map[string]int, len(h.bySeverity)),
		ByComponent: make(map[string]int, len(h.byComponent)),
	}
	for k, v := range h.byType {
		stats.ByType[k] = v
	}
	for k, v := range h.bySeverity {
		stats.BySeverity[k] = v
	}
	for k, v := range h.byComponent {
		stats.ByComponent[k] = v
	}

	n := len(h.entries)
	if recentLimit > n {
		recentLimit = n
	}
	stats.Recent = make([]Entry, recentLimit)
	copy(stats.Recent, h.entries[n-recentLimit:])

	return stats
}

// clear drops all entries and resets the counters
func (h *errorHistory) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = h.entries[:0]
	h.total = 0
	h.byType = make(map[string]int)
	h.bySeverity = make(map[string]int)
	h.byComponent = make(map[string]int)
}

// Statistics summarizes recorded failures for diagnostics
type Statistics struct {
	Total       int
	ByType      map[string]int
	BySeverity  map[string]int
	ByComponent map[string]int
	Recent      []Entry
}
