package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type EventBroker interface {
	Subscribe(instanceID string) chan SolveEvent
	Unsubscribe(instanceID string, ch chan SolveEvent)
	Publish(instanceID string, evt SolveEvent)
}

// RedisBroker implements EventBroker over Redis Pub/Sub so that solve
// progress reaches subscribers on any API replica.
type RedisBroker struct {
	rdb *redis.Client

	mu   sync.Mutex
	subs map[chan SolveEvent]*redis.PubSub
}

func NewRedisBroker(url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBroker{rdb: redis.NewClient(opt), subs: map[chan SolveEvent]*redis.PubSub{}}, nil
}

func (b *RedisBroker) Subscribe(instanceID string) chan SolveEvent {
	ch := make(chan SolveEvent, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.chanName(instanceID))
	// initial consume to ensure subscription
	_, _ = ps.Receive(ctx)
	b.mu.Lock()
	b.subs[ch] = ps
	b.mu.Unlock()
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt SolveEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

// Unsubscribe closes the underlying PubSub, which ends the fanout
// goroutine's range and closes the subscriber channel.
func (b *RedisBroker) Unsubscribe(instanceID string, ch chan SolveEvent) {
	b.mu.Lock()
	ps := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ps != nil {
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(instanceID string, evt SolveEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, b.chanName(instanceID), data).Err()
}

func (b *RedisBroker) chanName(instanceID string) string { return "solve:" + instanceID }
