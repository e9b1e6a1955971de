package session

import (
	"github.com/careaxis/hms/internal/platform/rbac"
)

// Guard decides whether a navigation into a role-scoped section may proceed.
// It trusts the in-memory store first and falls back to the persisted entry,
// restoring it into the store when valid. The outcome is a typed
// rbac.Decision; a Forbidden result must be surfaced as-is by callers, never
// reinterpreted as "please log in".
type Guard struct {
	store *Store
}

func NewGuard(store *Store) *Guard {
	return &Guard{store: store}
}

// Check runs the guard for a target path.
//
// The transition order is fixed: in-memory identity, then persisted entry
// (restored into the store on success), then the shared prefix table. Any
// unexpected restoration failure degrades to RedirectToLogin (the safe
// default is "signed out"), while role mismatches propagate as Forbidden.
func (g *Guard) Check(path string) rbac.Decision {
	id := g.store.User()
	if id == nil || id.Role == "" {
		restored, err := g.store.restore()
		if err != nil {
			// Covers the missing entry, unparsable entries, and any
			// unexpected storage failure alike: the caller is signed
			// out, and the prefix table decides whether the target
			// path needs a login at all.
			return rbac.Decide("", path)
		}
		id = restored
	}

	return rbac.Decide(id.NormalizedRole(), path)
}
