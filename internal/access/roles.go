// Package access implements the role predicate used by every authorization
// gate in the system.  A request carries a set of held roles (either the
// snapshot embedded in an access token or a fresh set loaded from the user
// store) and each protected operation declares a Spec describing the roles
// it requires.  The predicate is pure: no I/O, no clock, no state.
package access

// Role is the name of a permission bucket as stored in the roles table and
// embedded in token claims.
type Role string

// Superuser satisfies every access check unconditionally.  The bypass is
// evaluated in exactly one place, inside Allowed.
const Superuser Role = "superuser"

// Well-known roles referenced by the route tables.  Nothing in the predicate
// treats these specially; they exist so call sites do not scatter string
// literals.
const (
	Admin    Role = "admin"
	Manager  Role = "manager"
	Internal Role = "internal"
)

// RoleSet is the set of roles held by a subject.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from role names, e.g. the roles claim of a
// decoded token or the names column of a user's role rows.
func NewRoleSet(names ...string) RoleSet {
	s := make(RoleSet, len(names))
	for _, n := range names {
		s[Role(n)] = struct{}{}
	}
	return s
}

// Has reports whether the set contains r.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Spec describes the roles an operation requires.
//
//	Any       – OR group: at least one must be held (empty group passes).
//	All       – AND group: every role must be held (empty group passes).
//	Shorthand – sugar merged into the OR group before evaluation.
//
// An entirely empty Spec means "authenticated is enough".  The two groups
// combine with logical AND: a caller declaring both must satisfy both.
type Spec struct {
	Any       []Role
	All       []Role
	Shorthand []Role
}

// Allowed decides whether the held roles satisfy spec.  A held Superuser
// role short-circuits to true before any group is inspected.
func Allowed(held RoleSet, spec Spec) bool {
	if held.Has(Superuser) {
		return true
	}

	orRoles := spec.Any
	if len(spec.Shorthand) > 0 {
		orRoles = make([]Role, 0, len(spec.Any)+len(spec.Shorthand))
		orRoles = append(orRoles, spec.Any...)
		orRoles = append(orRoles, spec.Shorthand...)
	}

	orOK := len(orRoles) == 0
	for _, r := range orRoles {
		if held.Has(r) {
			orOK = true
			break
		}
	}

	andOK := true
	for _, r := range spec.All {
		if !held.Has(r) {
			andOK = false
			break
		}
	}

	return orOK && andOK
}

// Names converts a slice of roles back to plain strings, e.g. for token
// claims or wire messages.
func Names(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
