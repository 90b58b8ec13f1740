// Package events provides the pub/sub channel between the polling
// tracker and the GUI.
package events

import (
	"sync"
	"time"
)

type subscription struct {
	id      SubscriptionID
	handler EventHandler
}

// Bus dispatches events to subscribers from a single background
// goroutine, so handlers never run on the polling goroutine and cannot
// slow a detection cycle down.
type Bus struct {
	subscribers map[EventType][]subscription
	mu          sync.RWMutex

	eventQueue chan Event
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup

	nextSubID SubscriptionID
}

// NewBus creates an event bus with the given queue size.
func NewBus(bufferSize int) *Bus {
	bus := &Bus{
		subscribers: make(map[EventType][]subscription),
		eventQueue:  make(chan Event, bufferSize),
		stopCh:      make(chan struct{}),
		nextSubID:   1,
	}

	bus.wg.Add(1)
	go bus.processEvents()

	return bus
}

// Subscribe registers a handler for a specific event type.
func (b *Bus) Subscribe(eventType EventType, handler EventHandler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSubID
	b.nextSubID++

	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{
		id:      id,
		handler: handler,
	})
	return id
}

// Unsubscribe removes a subscription by ID.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub.id == id {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish queues an event for dispatch. Events published after Stop
// are dropped.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventQueue <- event:
	case <-b.stopCh:
	}
}

// Stop stops the bus and drains the queue.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
	b.wg.Wait()
}

func (b *Bus) processEvents() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventQueue:
			b.dispatch(event)
		case <-b.stopCh:
			for {
				select {
				case event := <-b.eventQueue:
					b.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[event.Type]))
	copy(subs, b.subscribers[event.Type])
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(event)
	}
}
