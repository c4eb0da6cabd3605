package session

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to State
		ok       bool
	}{
		{Home, Login, true},
		{Home, Signup, true},
		{Home, Reviews, true},
		{Home, Dashboard, false},
		{Login, Dashboard, true},
		{Login, Login, true},
		{Login, Home, true},
		{Login, Signup, false},
		{Signup, Login, true},
		{Signup, Signup, true},
		{Signup, Home, true},
		{Signup, Dashboard, false},
		{Dashboard, Home, true},
		{Dashboard, Reviews, false},
		{Reviews, Home, true},
		{Reviews, Login, false},
		{"bogus", Home, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestSessionFlow(t *testing.T) {
	var s Session
	if err := s.Transition(Dashboard); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
	if err := s.LoggedIn("a@b.c"); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("login outside the login screen must fail, got %v", err)
	}
	if err := s.Transition(Login); err != nil {
		t.Fatal(err)
	}
	if err := s.LoggedIn("a@b.c"); err != nil {
		t.Fatal(err)
	}
	if !s.Authenticated() || s.User != "a@b.c" {
		t.Fatalf("expected authenticated session, got %+v", s)
	}
	s.Logout()
	if s.Authenticated() || s.State != Home {
		t.Fatalf("expected logged out on home, got %+v", s)
	}
}

func TestFlashIsOneShot(t *testing.T) {
	s := Session{Flash: "saved"}
	if s.TakeFlash() != "saved" || s.TakeFlash() != "" {
		t.Fatalf("flash must be returned once")
	}
}

func TestRegistry(t *testing.T) {
	n := 0
	r := NewRegistry(time.Hour, WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))

	s := r.Start()
	if s.ID != "id-1" || s.State != Home {
		t.Fatalf("unexpected session %+v", s)
	}

	if _, err := r.Update(s.ID, func(s *Session) error { return s.Transition(Login) }); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Update(s.ID, func(s *Session) error { return s.Transition(Reviews) }); err == nil {
		t.Fatalf("expected refused transition")
	}
	got, ok := r.Get(s.ID)
	if !ok || got.State != Login {
		t.Fatalf("failed update must not be stored, got %+v", got)
	}

	if other := r.Resume("unknown"); other.ID != "id-2" {
		t.Fatalf("expected fresh session, got %+v", other)
	}
	r.End(s.ID)
	if _, ok := r.Get(s.ID); ok {
		t.Fatalf("ended session still present")
	}
	if r.Len() != 1 {
		t.Fatalf("unexpected registry size %d", r.Len())
	}
}
