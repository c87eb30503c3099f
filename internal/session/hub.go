package session

import (
	"sync"

	"security-suite/internal/model"
)

const subscriberBuffer = 16

// hub fans log entries out to live subscribers. A subscriber that falls
// behind loses entries rather than slowing the simulator down.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan model.NetworkLogEntry
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan model.NetworkLogEntry)}
}

func (h *hub) subscribe() (<-chan model.NetworkLogEntry, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan model.NetworkLogEntry, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		})
	}
}

func (h *hub) publish(e model.NetworkLogEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
