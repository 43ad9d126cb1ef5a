package bank

import (
	"github.com/google/uuid"

	"bankist/internal/core"
)

// Store is the ordered account collection. It is not safe for concurrent
// use; Bank serialises every access.
//
// User names are expected to be unique but this is not enforced: lookups
// return the first account in store order.
type Store struct {
	accounts []*core.Account
}

// NewStore adds accounts in order, see Add.
func NewStore(accounts ...*core.Account) *Store {
	s := &Store{}
	for _, a := range accounts {
		s.Add(a)
	}
	return s
}

// Add appends a, assigning a fresh id and deriving the user name when missing.
func (s *Store) Add(a *core.Account) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.UserName == "" {
		a.UserName = core.DeriveUserName(a.Owner)
	}
	s.accounts = append(s.accounts, a)
}

// FindByUserName returns the first account with the given user name.
func (s *Store) FindByUserName(userName string) (*core.Account, bool) {
	for _, a := range s.accounts {
		if a.UserName == userName {
			return a, true
		}
	}
	return nil, false
}

// Get returns the account with the given id.
func (s *Store) Get(id string) (*core.Account, bool) {
	if id == "" {
		return nil, false
	}
	for _, a := range s.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Remove deletes the account with the given id, keeping the order of the rest.
func (s *Store) Remove(id string) bool {
	for i, a := range s.accounts {
		if a.ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Len() int {
	return len(s.accounts)
}

// Snapshot returns deep copies of every account in store order.
func (s *Store) Snapshot() []*core.Account {
	out := make([]*core.Account, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = a.Clone()
	}
	return out
}
