package service

// Capabilities gating the engine's mutating operations. Every operation is
// gated independently so e.g. a nurse can request a transfer without being
// able to approve it.
const (
	CapManageInventory  = "manage-inventory"
	CapAdmitPatient     = "admit-patient"
	CapTransferCreate   = "transfer.create"
	CapTransferApprove  = "transfer.approve"
	CapTransferComplete = "transfer.complete"
	CapTransferCancel   = "transfer.cancel"
	CapManageUsers      = "manage-users"
)

// CapabilityChecker decides whether a role holds a capability. It is the
// single permission port invoked once per operation at the engine boundary.
type CapabilityChecker interface {
	Allows(role, capability string) bool
}

// RoleCapabilityChecker is the default checker backed by a static
// role → capability map.
type RoleCapabilityChecker struct {
	grants map[string]map[string]bool
}

func NewRoleCapabilityChecker() *RoleCapabilityChecker {
	byRole := map[string][]string{
		"bed_manager": {
			CapManageInventory,
			CapTransferApprove,
			CapTransferComplete,
			CapTransferCancel,
		},
		"admitting_clerk": {
			CapAdmitPatient,
			CapTransferCreate,
			CapTransferCancel,
		},
		"nurse": {
			CapTransferCreate,
			CapTransferComplete,
		},
		"viewer": {},
	}

	grants := make(map[string]map[string]bool, len(byRole))
	for role, caps := range byRole {
		grants[role] = make(map[string]bool, len(caps))
		for _, cap := range caps {
			grants[role][cap] = true
		}
	}
	return &RoleCapabilityChecker{grants: grants}
}

// Allows reports whether the role holds the capability. Admin holds all.
func (c *RoleCapabilityChecker) Allows(role, capability string) bool {
	if role == "admin" {
		return true
	}
	return c.grants[role][capability]
}
