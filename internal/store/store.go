// Package store defines the persistence contracts shared by the sqlite and
// badger-backed stores.
package store

import "errors"

// Sentinel errors returned by store implementations. Services translate
// these into domain errors; the stores themselves stay free of HTTP-shaped
// concerns.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// ThreadQuery is the typed filter shape for listing threads. Listing is
// always scoped to a user; the query only narrows within that scope.
type ThreadQuery struct {
	// Archived selects archived (true) or active (false) threads.
	// nil selects both.
	Archived *bool

	// IncludeHiatused includes threads whose owning character is on hiatus.
	IncludeHiatused bool

	// WithCharacter loads the owning character onto each thread.
	WithCharacter bool
}

// Bool returns a pointer to b, for building ThreadQuery literals.
func Bool(b bool) *bool {
	return &b
}
