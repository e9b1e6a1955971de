// Package rbac is the single source of truth for role-based access rules.
// Both the server-side middleware and the client route guard consume the same
// prefix table, so the two sides cannot drift.
package rbac

import "strings"

// Role names. Roles are coarse permission classes gating access to
// path-scoped sections of the application.
const (
	RoleAdministrative = "administrative"
	RoleStaff          = "staff"
	RolePatient        = "patient"
	RolePartner        = "partner"
)

// Decision is the typed outcome of an authorization check. Callers dispatch
// on it deterministically instead of catching control-flow errors.
type Decision int

const (
	// Allowed – the caller's role permits the target path.
	Allowed Decision = iota
	// Forbidden – valid identity, wrong role. Surfaced as-is; never
	// reinterpreted as "please log in".
	Forbidden
	// RedirectToLogin – no usable identity; the caller should authenticate.
	RedirectToLogin
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	case RedirectToLogin:
		return "redirect-to-login"
	default:
		return "unknown"
	}
}

// Rule maps a path prefix to the roles permitted under it.
type Rule struct {
	Prefix string
	Roles  []string
}

// PrefixRules is the static role-gate table. Administrative access is
// permitted everywhere a gated prefix applies.
var PrefixRules = []Rule{
	{Prefix: "/admin", Roles: []string{RoleAdministrative}},
	{Prefix: "/staff", Roles: []string{RoleStaff, RoleAdministrative}},
	{Prefix: "/patient", Roles: []string{RolePatient, RoleAdministrative}},
}

// NormalizeRole lower-cases a role and folds the legacy "clinical-staff"
// spelling onto "staff".
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "clinical-staff" {
		return RoleStaff
	}
	return r
}

// ruleFor returns the rule whose prefix matches path, or nil when the path
// is not role-gated.
func ruleFor(path string) *Rule {
	for i := range PrefixRules {
		r := &PrefixRules[i]
		if path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r
		}
	}
	return nil
}

// RequiredRoles returns the permitted roles for path, or nil when the path
// is not gated.
func RequiredRoles(path string) []string {
	if r := ruleFor(path); r != nil {
		return r.Roles
	}
	return nil
}

// Decide resolves the access decision for a normalized role and target path.
// An empty role on a gated path means the caller is unauthenticated.
func Decide(role, path string) Decision {
	rule := ruleFor(path)
	if rule == nil {
		return Allowed
	}

	role = NormalizeRole(role)
	if role == "" {
		return RedirectToLogin
	}
	for _, permitted := range rule.Roles {
		if role == permitted {
			return Allowed
		}
	}
	return Forbidden
}
