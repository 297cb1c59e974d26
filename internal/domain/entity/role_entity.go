package entity

// Role drives all downstream branching: activation rules, onboarding
// variant, and access gating. It is fixed at registration.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// Status gates access to protected resources.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"
)

// ValidRole reports whether r is one of the three marketplace roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return true
	}
	return false
}

// StatusForRole derives the registration status: admins and sellers are
// auto-approved, buyers start pending and are re-evaluated at onboarding
// completion.
func StatusForRole(r Role) Status {
	if r == RoleBuyer {
		return StatusPending
	}
	return StatusApproved
}

// FinalOnboardingStep returns the last step of the role's onboarding
// sequence: buyers have 3 steps, sellers 4. Admins have none.
func FinalOnboardingStep(r Role) int {
	switch r {
	case RoleBuyer:
		return 3
	case RoleSeller:
		return 4
	}
	return 0
}
