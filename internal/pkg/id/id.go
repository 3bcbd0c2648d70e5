package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string for a new user record. ulid.Make draws from a
// process-wide monotonic source, so ids minted in the same millisecond
// still sort in creation order.
func New() string {
	return ulid.Make().String()
}
