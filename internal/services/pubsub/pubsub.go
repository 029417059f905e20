// Package pubsub fans workspace events out to UI subscribers.
package pubsub

import (
	"sync"

	"github.com/google/uuid"
)

// Topic represents a subscription topic.
type Topic string

const (
	TopicHistoryChanged Topic = "HISTORY_CHANGED"
	TopicScaleChanged   Topic = "SCALE_CHANGED"
	TopicViewChanged    Topic = "VIEW_CHANGED"
	TopicDesignSaved    Topic = "DESIGN_SAVED"
	TopicDesignLoaded   Topic = "DESIGN_LOADED"
	TopicRegionScanned  Topic = "REGION_SCANNED"
	TopicTakeoffLinked  Topic = "TAKEOFF_LINKED"
)

// AllTopics lists every topic, in a stable order.
var AllTopics = []Topic{
	TopicHistoryChanged,
	TopicScaleChanged,
	TopicViewChanged,
	TopicDesignSaved,
	TopicDesignLoaded,
	TopicRegionScanned,
	TopicTakeoffLinked,
}

// Event is the envelope delivered to subscribers.
type Event struct {
	Topic   Topic       `json:"topic"`
	Payload interface{} `json:"payload"`
}

// Subscriber represents a subscription channel.
type Subscriber struct {
	ID      string
	Topic   Topic
	Filter  string // Optional filter value (e.g., design id)
	Channel chan Event
}

// PubSub manages subscriptions and message distribution.
type PubSub struct {
	mu          sync.RWMutex
	subscribers map[Topic][]*Subscriber
}

// New creates a new PubSub instance.
func New() *PubSub {
	return &PubSub{
		subscribers: make(map[Topic][]*Subscriber),
	}
}

// Subscribe creates a new subscription for a topic.
func (ps *PubSub) Subscribe(topic Topic, filter string, bufferSize int) *Subscriber {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	sub := &Subscriber{
		ID:      uuid.NewString(),
		Topic:   topic,
		Filter:  filter,
		Channel: make(chan Event, bufferSize),
	}

	ps.subscribers[topic] = append(ps.subscribers[topic], sub)
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (ps *PubSub) Unsubscribe(sub *Subscriber) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	subs := ps.subscribers[sub.Topic]
	for i, s := range subs {
		if s.ID == sub.ID {
			close(s.Channel)
			ps.subscribers[sub.Topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends a message to all subscribers of a topic.
// If filter is non-empty, only sends to subscribers with matching filter or empty filter.
// Sends never block; a full subscriber misses the event.
func (ps *PubSub) Publish(topic Topic, filter string, payload interface{}) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	ev := Event{Topic: topic, Payload: payload}
	for _, sub := range ps.subscribers[topic] {
		if sub.Filter == "" || filter == "" || sub.Filter == filter {
			select {
			case sub.Channel <- ev:
			default:
			}
		}
	}
}

// PublishAll sends a message to all subscribers of a topic regardless of filter.
func (ps *PubSub) PublishAll(topic Topic, payload interface{}) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	ev := Event{Topic: topic, Payload: payload}
	for _, sub := range ps.subscribers[topic] {
		select {
		case sub.Channel <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of subscribers for a topic.
func (ps *PubSub) SubscriberCount(topic Topic) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}
