package anim

import "time"

type EventKind int

const (
	EventBegin EventKind = iota
	EventComplete
	EventCancel
	// EventForced marks a spring snapped to its target by the duration bound.
	EventForced
)

func (k EventKind) String() string {
	switch k {
	case EventBegin:
		return "begin"
	case EventComplete:
		return "complete"
	case EventCancel:
		return "cancel"
	case EventForced:
		return "forced"
	default:
		return "unknown"
	}
}

// Event reports a primitive's lifecycle. Cell is zero for delays.
type Event struct {
	Kind  EventKind
	Op    string
	Cell  CellID
	Token uint64
	At    time.Duration
	Value float64
}

// Observer is notified after every tick.
type Observer interface {
	OnStep(now time.Duration)
}

// Tracer receives primitive lifecycle events.
type Tracer interface {
	OnEvent(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(now time.Duration)

func (f ObserverFunc) OnStep(now time.Duration) { f(now) }

// TracerFunc adapts a function to Tracer.
type TracerFunc func(ev Event)

func (f TracerFunc) OnEvent(ev Event) { f(ev) }
