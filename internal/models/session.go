package models

// Session carries the per-run state every remote operation needs. It is a
// value: deriving a new session never changes the one it came from.
type Session struct {
	Token     string
	AccountID int64
	// Force marks submitted transfers as validated.
	Force bool
	RunID string
}

// WithAccount returns a copy of the session bound to an account.
func (s Session) WithAccount(id int64) Session {
	s.AccountID = id
	return s
}

// Authenticated reports whether the session holds a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
