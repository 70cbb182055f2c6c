package models

import "fmt"

// RideStatus is a closed state machine. A ride starts in searching and only
// moves forward: searching -> driver_assigned -> ongoing -> completed, with
// canceled reachable from any non-terminal state.
type RideStatus string

const (
	StatusSearching      RideStatus = "searching"
	StatusDriverAssigned RideStatus = "driver_assigned"
	StatusOngoing        RideStatus = "ongoing"
	StatusCompleted      RideStatus = "completed"
	StatusCanceled       RideStatus = "canceled"
)

var rideTransitions = map[RideStatus][]RideStatus{
	StatusSearching:      {StatusDriverAssigned, StatusCanceled},
	StatusDriverAssigned: {StatusOngoing, StatusCanceled},
	StatusOngoing:        {StatusCompleted, StatusCanceled},
	StatusCompleted:      {},
	StatusCanceled:       {},
}

type BadTransitionError struct {
	From, To RideStatus
}

func (e *BadTransitionError) Error() string {
	return fmt.Sprintf("ride status cannot move from %s to %s", e.From, e.To)
}

// Terminal reports whether no further transitions are possible.
func (s RideStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// CanTransition reports whether moving to next is allowed.
func (s RideStatus) CanTransition(next RideStatus) bool {
	for _, allowed := range rideTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next if the move is legal, or a *BadTransitionError.
func (s RideStatus) Transition(next RideStatus) (RideStatus, error) {
	if !s.CanTransition(next) {
		return s, &BadTransitionError{From: s, To: next}
	}
	return next, nil
}
