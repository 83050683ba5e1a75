package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	checker := NewRoleCapabilityChecker()

	cases := []struct {
		role       string
		capability string
		want       bool
	}{
		{"admin", CapManageInventory, true},
		{"admin", CapTransferApprove, true},
		{"admin", CapManageUsers, true},
		{"bed_manager", CapManageInventory, true},
		{"bed_manager", CapTransferApprove, true},
		{"bed_manager", CapTransferComplete, true},
		{"bed_manager", CapAdmitPatient, false},
		{"admitting_clerk", CapAdmitPatient, true},
		{"admitting_clerk", CapTransferCreate, true},
		{"admitting_clerk", CapTransferApprove, false},
		{"nurse", CapTransferCreate, true},
		{"nurse", CapTransferComplete, true},
		{"nurse", CapTransferApprove, false},
		{"nurse", CapManageInventory, false},
		{"viewer", CapTransferCreate, false},
		{"viewer", CapAdmitPatient, false},
		{"", CapTransferCreate, false},
		{"unknown_role", CapManageInventory, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, checker.Allows(tc.role, tc.capability),
			"role %q capability %q", tc.role, tc.capability)
	}
}
