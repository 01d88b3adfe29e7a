package narrowphase

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

const (
	CONTACT_ENTER EventType = iota
	CONTACT_STAY
	CONTACT_EXIT
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// ContactEnterEvent is sent the first Detect a pair penetrates
type ContactEnterEvent struct {
	Contact Contact
}

func (e ContactEnterEvent) Type() EventType { return CONTACT_ENTER }

// ContactStayEvent is sent for every following Detect the pair still penetrates
type ContactStayEvent struct {
	Contact Contact
}

func (e ContactStayEvent) Type() EventType { return CONTACT_STAY }

// ContactExitEvent is sent the first Detect a pair no longer penetrates, or
// is no longer part of the batch.
type ContactExitEvent struct {
	PairID uuid.UUID
}

func (e ContactExitEvent) Type() EventType { return CONTACT_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events tracks the penetrating pairs from one Detect to the next and sends
// enter/stay/exit events to its listeners
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	contacts            []Contact
	previousActivePairs map[uuid.UUID]bool
	currentActivePairs  map[uuid.UUID]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 64),
		previousActivePairs: make(map[uuid.UUID]bool),
		currentActivePairs:  make(map[uuid.UUID]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) recordContacts(contacts []Contact) {
	e.contacts = append(e.contacts[:0], contacts...)
}

func (e *Events) forget(id uuid.UUID) {
	delete(e.previousActivePairs, id)
}

// processContactEvents compares the recorded contacts with the previous ones.
// Enter and stay follow the order of the contacts, exits the order of the IDs.
func (e *Events) processContactEvents() {
	if e.currentActivePairs == nil {
		e.currentActivePairs = make(map[uuid.UUID]bool)
	}

	for _, contact := range e.contacts {
		if e.currentActivePairs[contact.PairID] {
			continue
		}
		e.currentActivePairs[contact.PairID] = true

		if e.previousActivePairs[contact.PairID] {
			e.buffer = append(e.buffer, ContactStayEvent{Contact: contact})
		} else {
			e.buffer = append(e.buffer, ContactEnterEvent{Contact: contact})
		}
	}

	exits := make([]uuid.UUID, 0)
	for id := range e.previousActivePairs {
		if !e.currentActivePairs[id] {
			exits = append(exits, id)
		}
	}
	slices.SortFunc(exits, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	for _, id := range exits {
		e.buffer = append(e.buffer, ContactExitEvent{PairID: id})
	}

	// Swap for next call and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
	e.contacts = e.contacts[:0]
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processContactEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
