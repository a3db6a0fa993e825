package hedra

import "github.com/akmonengine/hedra/actor"

const (
	OVERLAP_ENTER EventType = iota
	OVERLAP_STAY
	OVERLAP_EXIT
)

type pairKey struct {
	actorA *actor.Actor
	actorB *actor.Actor
}

// makePairKey orders a pair by actor ID.
func makePairKey(actorA, actorB *actor.Actor) pairKey {
	if actorB.ID < actorA.ID {
		actorA, actorB = actorB, actorA
	}
	return pairKey{actorA: actorA, actorB: actorB}
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// OverlapEnterEvent is sent when two actors start overlapping.
type OverlapEnterEvent struct {
	ActorA *actor.Actor
	ActorB *actor.Actor
}

func (e OverlapEnterEvent) Type() EventType { return OVERLAP_ENTER }

// OverlapStayEvent is sent on every update while two actors keep overlapping.
type OverlapStayEvent struct {
	ActorA *actor.Actor
	ActorB *actor.Actor
}

func (e OverlapStayEvent) Type() EventType { return OVERLAP_STAY }

// OverlapExitEvent is sent when two actors stop overlapping.
type OverlapExitEvent struct {
	ActorA *actor.Actor
	ActorB *actor.Actor
}

func (e OverlapExitEvent) Type() EventType { return OVERLAP_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events turns the overlapping pairs of successive updates into enter, stay
// and exit events.
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event

	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordOverlaps marks the pairs overlapping in the current update.
func (e *Events) recordOverlaps(pairs []Pair) {
	for _, p := range pairs {
		e.currentActivePairs[makePairKey(p.ActorA, p.ActorB)] = true
	}
}

// forget drops every tracked pair of a removed actor without an exit event.
func (e *Events) forget(a *actor.Actor) {
	for pair := range e.previousActivePairs {
		if pair.actorA == a || pair.actorB == a {
			delete(e.previousActivePairs, pair)
		}
	}
}

// processOverlapEvents compares current and previous pairs to detect Enter/Stay/Exit
func (e *Events) processOverlapEvents() {
	for pair := range e.currentActivePairs {
		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, OverlapStayEvent{ActorA: pair.actorA, ActorB: pair.actorB})
		} else {
			e.buffer = append(e.buffer, OverlapEnterEvent{ActorA: pair.actorA, ActorB: pair.actorB})
		}
	}

	for pair := range e.previousActivePairs {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, OverlapExitEvent{ActorA: pair.actorA, ActorB: pair.actorB})
		}
	}

	// Swap for next update and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processOverlapEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
