package syncer

import (
	"fmt"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the engine's primary state. Message is set only for PhaseError.
type State struct {
	Phase   Phase
	Message string
}

func (s State) String() string {
	if s.Phase == PhaseError {
		return fmt.Sprintf("error(%s)", s.Message)
	}
	return s.Phase.String()
}

type EventKind int

const (
	// EventStateChanged carries a new primary state.
	EventStateChanged EventKind = iota
	// EventNewHeadlines is sent when a silent refresh replaced the feed;
	// State is PhaseSuccess.
	EventNewHeadlines
	// EventRowsUpdated lists displayed rows whose saved flag flipped. The
	// primary state is unchanged.
	EventRowsUpdated
)

type Event struct {
	Kind  EventKind
	State State
	Rows  []int
}

// Toggle is the outcome of ToggleSaved.
type Toggle int

const (
	Removed Toggle = iota
	Added
)

func (t Toggle) String() string {
	if t == Added {
		return "added"
	}
	return "removed"
}
