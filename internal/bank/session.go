package bank

// Session is the transient per-user state: who is logged in and whether the
// movements list is shown sorted. Handlers take it by value and return the
// updated copy.
type Session struct {
	CurrentID string
	Sorted    bool
}

// LoggedIn reports whether the session points at an account. The account may
// still have been closed since; handlers re-resolve it through the store.
func (s Session) LoggedIn() bool {
	return s.CurrentID != ""
}

// LoggedOut returns the empty session.
func LoggedOut() Session {
	return Session{}
}
