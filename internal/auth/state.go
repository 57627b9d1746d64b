package auth

import "github.com/matheus3301/disa/internal/credstore"

// Status is the session's authentication status.
type Status string

const (
	Unknown       Status = "UNKNOWN"
	Authenticated Status = "AUTHENTICATED"
	Anonymous     Status = "ANONYMOUS"
)

// validTransitions defines allowed status transitions.
var validTransitions = map[Status][]Status{
	Unknown:       {Authenticated, Anonymous},
	Authenticated: {Authenticated, Anonymous},
	Anonymous:     {Authenticated, Anonymous},
}

// State is a point-in-time view of the session.
type State struct {
	Status Status
	User   *credstore.Record
	Token  string
}

// IsAuthenticated reports whether protected operations may run.
func (s State) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// IsLoading reports whether the stored credentials have not been read yet.
func (s State) IsLoading() bool {
	return s.Status == Unknown
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
