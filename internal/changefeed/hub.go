// Package changefeed is the in-process change-notification bus. Writers
// publish a record-type keyed event after each mutation; dashboard clients
// subscribe over SSE and refresh only the panel owning that record type.
// Publishing never touches selection state.
package changefeed

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Record types carried on the feed. One type per dependent data loader.
const (
	RecordKPIDefinition    = "kpi_definition"
	RecordKPIEntry         = "kpi_entry"
	RecordRock             = "rock"
	RecordTodo             = "todo"
	RecordMeeting          = "meeting"
	RecordDocument         = "document"
	RecordSignatureRequest = "signature_request"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

// Event describes a single record change.
type Event struct {
	RecordType   string    `json:"record_type"`
	RecordID     string    `json:"record_id"`
	StoreID      string    `json:"store_id"`
	DepartmentID string    `json:"department_id"`
	Action       string    `json:"action"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []Event
	subs   map[uint64]chan Event
	nextID uint64
}

type Subscription struct {
	hub        *Hub
	recordType string
	id         uint64
	ch         chan Event
	once       sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish delivers the event to current subscribers of the record type.
// Slow subscribers are skipped rather than blocking the writer.
func (h *Hub) Publish(recordType string, event Event) {
	if h == nil {
		return
	}
	key := strings.TrimSpace(recordType)
	if key == "" {
		return
	}
	event.RecordType = key

	h.mu.RLock()
	stream := h.streams[key]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	stream.buffer = append(stream.buffer, event)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
	subs := make([]chan Event, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a listener for the record type and returns the recent
// backlog so late joiners can catch up.
func (h *Hub) Subscribe(recordType string) (*Subscription, []Event, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	key := strings.TrimSpace(recordType)
	if key == "" {
		return nil, nil, errors.New("invalid_record_type")
	}

	stream := h.ensureStream(key)
	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan Event)
	}
	id := stream.nextID
	stream.nextID++
	ch := make(chan Event, h.subscriberBuffer)
	stream.subs[id] = ch
	buffer := append([]Event(nil), stream.buffer...)
	stream.mu.Unlock()

	return &Subscription{
		hub:        h,
		recordType: key,
		id:         id,
		ch:         ch,
	}, buffer, nil
}

func (h *Hub) ensureStream(recordType string) *stream {
	h.mu.RLock()
	current := h.streams[recordType]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[recordType]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan Event)}
		h.streams[recordType] = current
	}
	return current
}

func (h *Hub) unsubscribe(recordType string, id uint64) {
	if h == nil {
		return
	}
	key := strings.TrimSpace(recordType)
	if key == "" {
		return
	}

	h.mu.RLock()
	stream := h.streams[key]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	delete(stream.subs, id)
	remaining := len(stream.subs)
	stream.mu.Unlock()
	if remaining != 0 {
		return
	}

	h.mu.Lock()
	current := h.streams[key]
	if current != stream {
		h.mu.Unlock()
		return
	}
	stream.mu.Lock()
	empty := len(stream.subs) == 0
	stream.mu.Unlock()
	if empty {
		delete(h.streams, key)
	}
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.recordType, s.id)
	})
}
