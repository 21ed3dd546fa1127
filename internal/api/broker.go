package api

import (
	"sync"
)

// SolveEvent is one progress message of a solver run, fanned out to SSE
// and WebSocket subscribers keyed by instance id.
type SolveEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan SolveEvent]struct{} // instanceId -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan SolveEvent]struct{}{}}
}

func (b *Broker) Subscribe(instanceID string) chan SolveEvent {
	ch := make(chan SolveEvent, 8)
	b.mu.Lock()
	if b.subs[instanceID] == nil {
		b.subs[instanceID] = map[chan SolveEvent]struct{}{}
	}
	b.subs[instanceID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(instanceID string, ch chan SolveEvent) {
	b.mu.Lock()
	if m := b.subs[instanceID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, instanceID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(instanceID string, evt SolveEvent) {
	b.mu.Lock()
	m := b.subs[instanceID]
	for ch := range m {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
