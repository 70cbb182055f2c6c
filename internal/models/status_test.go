package models

import "testing"

func TestRideStatusForwardPath(t *testing.T) {
	s := StatusSearching
	for _, next := range []RideStatus{StatusDriverAssigned, StatusOngoing, StatusCompleted} {
		got, err := s.Transition(next)
		if err != nil {
			t.Fatalf("transition %s -> %s: %v", s, next, err)
		}
		s = got
	}
	if !s.Terminal() {
		t.Fatalf("expected completed to be terminal")
	}
}

func TestRideStatusRejectsBackwardMoves(t *testing.T) {
	cases := []struct{ from, to RideStatus }{
		{StatusDriverAssigned, StatusSearching},
		{StatusOngoing, StatusDriverAssigned},
		{StatusCompleted, StatusOngoing},
		{StatusCompleted, StatusCanceled},
		{StatusCanceled, StatusSearching},
		{StatusSearching, StatusOngoing}, // cannot skip assignment
	}
	for _, c := range cases {
		if _, err := c.from.Transition(c.to); err == nil {
			t.Errorf("expected %s -> %s to be rejected", c.from, c.to)
		}
	}
}

func TestRideStatusCancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []RideStatus{StatusSearching, StatusDriverAssigned, StatusOngoing} {
		if _, err := from.Transition(StatusCanceled); err != nil {
			t.Errorf("expected %s -> canceled to be allowed: %v", from, err)
		}
	}
}
