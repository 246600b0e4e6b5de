// Package remote implements the line-based remote control protocol: a TCP
// server that accepts command lines, a hub that fans them out to every
// running launcher, and a small client for sending them.
package remote

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Target receives command lines. Submit must not block; the launcher
// queues the line for its next tick.
type Target interface {
	Submit(line string) bool
}

// Hub tracks the launchers that remote lines are delivered to.
// Thread-safe for concurrent access.
type Hub struct {
	mu      sync.RWMutex
	targets map[string]Target
	logger  *log.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		targets: make(map[string]Target),
		logger:  logger,
	}
}

// Register adds a target under id, replacing any previous one.
func (h *Hub) Register(id string, t Target) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.targets[id] = t
}

// Unregister removes a target.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.targets, id)
}

// Count returns the number of registered targets.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.targets)
}

// IDs returns the registered target ids, sorted.
func (h *Hub) IDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.targets))
	for id := range h.targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Broadcast delivers line to every target and returns how many accepted it.
func (h *Hub) Broadcast(line string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, t := range h.targets {
		if t.Submit(line) {
			delivered++
		} else {
			h.logger.Warn("target dropped line", "target", id, "line", line)
		}
	}
	return delivered
}
