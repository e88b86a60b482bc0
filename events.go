package billiard

import (
	"github.com/akmonengine/billiard/actor"
	"github.com/akmonengine/billiard/constraint"
)

const (
	COLLISION_RESOLVED EventType = iota
	BALL_STOPPED
	BALL_MOVING
	BALL_RESET
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case COLLISION_RESOLVED:
		return "collision"
	case BALL_STOPPED:
		return "stopped"
	case BALL_MOVING:
		return "moving"
	case BALL_RESET:
		return "reset"
	}
	return "unknown"
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CollisionEvent is emitted once per resolved collision episode
type CollisionEvent struct {
	Participants []string
	Iterations   int
	Impulse      float64
	Forced       bool
}

func newCollisionEvent(res constraint.Resolution) CollisionEvent {
	return CollisionEvent{
		Participants: res.Participants,
		Iterations:   res.Iterations,
		Impulse:      res.Impulse,
		Forced:       res.Forced,
	}
}

func (e CollisionEvent) Type() EventType { return COLLISION_RESOLVED }

// Motion events
type BallStoppedEvent struct {
	Ball *actor.Ball
}

func (e BallStoppedEvent) Type() EventType { return BALL_STOPPED }

type BallMovingEvent struct {
	Ball *actor.Ball
}

func (e BallMovingEvent) Type() EventType { return BALL_MOVING }

// BallResetEvent is emitted when a ball leaving the table is parked again
type BallResetEvent struct {
	Ball *actor.Ball
}

func (e BallResetEvent) Type() EventType { return BALL_RESET }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	stoppedStates map[*actor.Ball]bool
}

func NewEvents() Events {
	return Events{
		listeners:     make(map[EventType][]EventListener),
		buffer:        make([]Event, 0, 256),
		stoppedStates: make(map[*actor.Ball]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		*e = NewEvents()
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// processMotionEvents compares the stopped state of every ball with the last tick
func (e *Events) processMotionEvents(balls []*actor.Ball) {
	if e.stoppedStates == nil {
		e.stoppedStates = make(map[*actor.Ball]bool)
	}

	for _, ball := range balls {
		trackedState, exists := e.stoppedStates[ball]
		if !exists {
			e.stoppedStates[ball] = ball.IsStopped
			continue
		}

		if !trackedState && ball.IsStopped {
			e.buffer = append(e.buffer, BallStoppedEvent{Ball: ball})
			e.stoppedStates[ball] = true
		} else if trackedState && !ball.IsStopped {
			e.buffer = append(e.buffer, BallMovingEvent{Ball: ball})
			e.stoppedStates[ball] = false
		}
	}
}

// forget drops the tracked state, so that the next tick starts from the current one
func (e *Events) forget() {
	clear(e.stoppedStates)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
