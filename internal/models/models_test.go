package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOwnsOrElevated(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	member := &User{ID: owner, Role: RoleMember}
	assert.True(t, OwnsOrElevated(member, owner))
	assert.False(t, OwnsOrElevated(member, stranger))

	officer := &User{ID: stranger, Role: RoleOfficer}
	assert.True(t, OwnsOrElevated(officer, owner))

	admin := &User{ID: stranger, Role: RoleAdmin}
	assert.True(t, OwnsOrElevated(admin, owner))

	viewer := &User{ID: owner, Role: RoleViewer}
	assert.True(t, OwnsOrElevated(viewer, owner))
	assert.False(t, OwnsOrElevated(viewer, stranger))

	assert.False(t, OwnsOrElevated(nil, owner))
	assert.False(t, OwnsOrElevated(member, primitive.NilObjectID))
}

func TestWorkOrderTransitions(t *testing.T) {
	assert.True(t, WorkOrderOpen.CanTransition(WorkOrderAssigned))
	assert.True(t, WorkOrderAssigned.CanTransition(WorkOrderInProgress))
	assert.True(t, WorkOrderInProgress.CanTransition(WorkOrderCompleted))
	assert.True(t, WorkOrderOnHold.CanTransition(WorkOrderInProgress))

	// No skipping ahead and no leaving terminal states.
	assert.False(t, WorkOrderOpen.CanTransition(WorkOrderCompleted))
	assert.False(t, WorkOrderCompleted.CanTransition(WorkOrderInProgress))
	assert.False(t, WorkOrderCancelled.CanTransition(WorkOrderOpen))

	assert.True(t, WorkOrderCompleted.Terminal())
	assert.True(t, WorkOrderCancelled.Terminal())
	assert.False(t, WorkOrderInProgress.Terminal())
}

func TestReportWorkflowIsForwardOnly(t *testing.T) {
	assert.True(t, ReportDraft.CanTransition(ReportSubmitted))
	assert.True(t, ReportSubmitted.CanTransition(ReportReviewed))
	assert.True(t, ReportReviewed.CanTransition(ReportApproved))
	assert.True(t, ReportApproved.CanTransition(ReportArchived))

	assert.False(t, ReportSubmitted.CanTransition(ReportDraft))
	assert.False(t, ReportDraft.CanTransition(ReportApproved))
	assert.False(t, ReportArchived.CanTransition(ReportDraft))
}

func TestPartsTotal(t *testing.T) {
	assert.Equal(t, 0.0, PartsTotal(nil))
	parts := []PartUsed{
		{Name: "rope", Quantity: 2, UnitCost: 45.50},
		{Name: "karabiner", Quantity: 4, UnitCost: 12.25},
	}
	assert.InDelta(t, 140.0, PartsTotal(parts), 0.001)
}

func TestRoleValidation(t *testing.T) {
	for _, r := range AllRoles {
		assert.True(t, r.Valid())
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())

	assert.True(t, RoleAdmin.Elevated())
	assert.True(t, RoleOfficer.Elevated())
	assert.False(t, RoleMember.Elevated())
	assert.False(t, RoleViewer.Elevated())
}
