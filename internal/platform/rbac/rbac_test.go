package rbac

import "testing"

func TestDecide_PrefixTable(t *testing.T) {
	tests := []struct {
		role string
		path string
		want Decision
	}{
		// /admin is administrative only.
		{"administrative", "/admin/users", Allowed},
		{"administrative", "/admin", Allowed},
		{"staff", "/admin/users", Forbidden},
		{"patient", "/admin/users", Forbidden},
		{"partner", "/admin/users", Forbidden},

		// /staff admits staff and administrative.
		{"staff", "/staff/appointments", Allowed},
		{"administrative", "/staff/appointments", Allowed},
		{"patient", "/staff/appointments", Forbidden},
		{"partner", "/staff/appointments", Forbidden},

		// /patient admits patient and administrative.
		{"patient", "/patient/records", Allowed},
		{"administrative", "/patient/records", Allowed},
		{"staff", "/patient/records", Forbidden},
		{"partner", "/patient/records", Forbidden},

		// Missing role on a gated path redirects, never forbids.
		{"", "/admin/users", RedirectToLogin},
		{"", "/staff/x", RedirectToLogin},

		// Ungated paths are open.
		{"", "/health", Allowed},
		{"partner", "/about", Allowed},

		// Prefix matching is segment-aware.
		{"patient", "/patients-export", Allowed},
		{"staff", "/staffing", Allowed},

		// Role normalization.
		{"Administrative", "/admin/users", Allowed},
		{"clinical-staff", "/staff/x", Allowed},
		{"CLINICAL-STAFF", "/staff/x", Allowed},
	}

	for _, tt := range tests {
		got := Decide(tt.role, tt.path)
		if got != tt.want {
			t.Errorf("Decide(%q, %q) = %v, want %v", tt.role, tt.path, got, tt.want)
		}
	}
}

func TestDecide_WrongRoleIsNeverRedirect(t *testing.T) {
	// Forbidden must stay distinguishable from "please log in".
	for _, role := range []string{"staff", "patient", "partner"} {
		if got := Decide(role, "/admin/x"); got == RedirectToLogin {
			t.Errorf("Decide(%q, /admin/x) yielded a login redirect", role)
		}
	}
}

func TestRequiredRoles(t *testing.T) {
	if roles := RequiredRoles("/admin/x"); len(roles) != 1 || roles[0] != RoleAdministrative {
		t.Errorf("RequiredRoles(/admin/x) = %v", roles)
	}
	if roles := RequiredRoles("/open/path"); roles != nil {
		t.Errorf("RequiredRoles(/open/path) = %v, want nil", roles)
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := map[string]string{
		"Staff":           "staff",
		" clinical-staff": "staff",
		"PATIENT":         "patient",
		"":                "",
	}
	for in, want := range tests {
		if got := NormalizeRole(in); got != want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", in, got, want)
		}
	}
}
