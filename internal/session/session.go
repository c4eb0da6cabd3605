// Package session tracks which screen a browser is on and who is logged in.
//
// Each browser gets a Session keyed by a random cookie value. The screen is
// an explicit state; moves between screens go through Transition so an
// out-of-order request (say, opening the dashboard before login) is refused
// instead of silently rendering.
package session

import (
	"errors"
	"fmt"
	"slices"
)

type State string

const (
	Home      State = "home"
	Login     State = "login"
	Signup    State = "signup"
	Dashboard State = "dashboard"
	Reviews   State = "reviews"
)

var ErrIllegalTransition = errors.New("illegal session transition")

// transitions lists the screens reachable from each screen. Staying on the
// same screen is always allowed (a failed form re-renders itself).
var transitions = map[State][]State{
	Home:      {Login, Signup, Reviews},
	Login:     {Dashboard, Home},
	Signup:    {Login, Home},
	Dashboard: {Home},
	Reviews:   {Home},
}

func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s State) String() string {
	return string(s)
}

// CanTransition reports whether to is reachable from s in one step.
func (s State) CanTransition(to State) bool {
	if !s.Valid() || !to.Valid() {
		return false
	}
	if s == to {
		return true
	}
	return slices.Contains(transitions[s], to)
}

// Session is the per-browser state. The zero value sits on Home.
type Session struct {
	ID    string
	State State
	User  string
	// Flash is a one-shot message shown on the next render.
	Flash string
}

func (s *Session) current() State {
	if s.State == "" {
		return Home
	}
	return s.State
}

// Transition moves the session to another screen.
func (s *Session) Transition(to State) error {
	from := s.current()
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	s.State = to
	return nil
}

// LoggedIn completes a login: only legal from the Login screen.
func (s *Session) LoggedIn(email string) error {
	if s.current() != Login {
		return fmt.Errorf("%w: login from %s", ErrIllegalTransition, s.current())
	}
	s.State = Dashboard
	s.User = email
	return nil
}

// Logout returns to Home and forgets the user.
func (s *Session) Logout() {
	s.State = Home
	s.User = ""
}

func (s *Session) Authenticated() bool {
	return s.User != "" && s.current() == Dashboard
}

// TakeFlash returns and clears the pending flash message.
func (s *Session) TakeFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}
