package service

import (
	"testing"
	"time"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestTransfer(t *testing.T, env *testEnv, admissionID uint, toBedID *uint) *models.TransferRequest {
	t.Helper()
	req, err := env.transfers.RequestTransfer(RequestTransferInput{
		AdmissionID:  admissionID,
		TransferType: models.TransferTypeWard,
		Reason:       "closer to nursing station",
		ToBedID:      toBedID,
	}, testUserID)
	require.NoError(t, err)
	return req
}

func TestTransferLifecycle(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	b3 := seedBed(t, env, models.RoomTypePrivate, "B3")

	admission := env.admit(t, 100, b1.ID)
	env.admit(t, 200, b2.ID)

	// Requesting the occupied bed soft-fails the reservation: the request is
	// created without a target.
	req := requestTransfer(t, env, admission.ID, &b2.ID)
	assert.Equal(t, models.TransferStatusRequested, req.Status)
	assert.Nil(t, req.ToBedID)

	approved, err := env.transfers.ApproveTransfer(req.ID, true, "ok", "", testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusApproved, approved.Status)

	assigned, err := env.transfers.AssignTransferBed(req.ID, b3.ID, nil, 0, testUserID)
	require.NoError(t, err)
	require.NotNil(t, assigned.ToBedID)
	assert.Equal(t, b3.ID, *assigned.ToBedID)

	reserved := env.bedState(t, b3.ID)
	assert.Equal(t, models.BedStateReserved, reserved.State)
	require.NotNil(t, reserved.ReservedUntil)

	completed, err := env.transfers.CompleteTransfer(req.ID, nil, nil,
		map[string]interface{}{"iv_lines": "checked"}, testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	assert.Equal(t, models.BedStateVacant, env.bedState(t, b1.ID).State)
	assert.Equal(t, models.BedStateOccupied, env.bedState(t, b3.ID).State)

	reloaded, err := env.admissions.GetAdmission(admission.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CurrentBedID)
	assert.Equal(t, b3.ID, *reloaded.CurrentBedID)

	events, err := env.transfers.ListTransferEvents(req.ID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, models.TransferStatusRequested, events[0].ToStatus)
	assert.Equal(t, models.TransferStatusCompleted, events[3].ToStatus)
}

func TestRequestTransferReservesNamedBed(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	admission := env.admit(t, 100, b1.ID)

	req := requestTransfer(t, env, admission.ID, &b2.ID)
	require.NotNil(t, req.ToBedID)
	assert.Equal(t, b2.ID, *req.ToBedID)

	bed := env.bedState(t, b2.ID)
	assert.Equal(t, models.BedStateReserved, bed.State)
	require.NotNil(t, bed.ReservedUntil)
	assert.True(t, bed.ReservedUntil.After(time.Now()))
}

func TestRequestTransferValidation(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, b1.ID)

	_, err := env.transfers.RequestTransfer(RequestTransferInput{
		AdmissionID:  admission.ID,
		TransferType: models.TransferTypeWard,
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = env.transfers.RequestTransfer(RequestTransferInput{
		AdmissionID: admission.ID,
		Reason:      "closer to nursing station",
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Target bed equal to the current bed is never a legal move.
	_, err = env.transfers.RequestTransfer(RequestTransferInput{
		AdmissionID:  admission.ID,
		TransferType: models.TransferTypeWard,
		Reason:       "closer to nursing station",
		ToBedID:      &b1.ID,
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestRequestTransferOnePerAdmission(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, b1.ID)

	requestTransfer(t, env, admission.ID, nil)

	_, err := env.transfers.RequestTransfer(RequestTransferInput{
		AdmissionID:  admission.ID,
		TransferType: models.TransferTypeWard,
		Reason:       "second attempt",
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRejectTransferReleasesReservation(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, &b2.ID)

	// Rejecting without a reason is refused.
	_, err := env.transfers.ApproveTransfer(req.ID, false, "", "", testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	rejected, err := env.transfers.ApproveTransfer(req.ID, false, "", "no staffing", testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusRejected, rejected.Status)
	assert.Equal(t, "no staffing", rejected.RejectedReason)
	assert.Equal(t, models.BedStateVacant, env.bedState(t, b2.ID).State)
}

func TestDoubleApprove(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, nil)

	_, err := env.transfers.ApproveTransfer(req.ID, true, "", "", testUserID)
	require.NoError(t, err)

	_, err = env.transfers.ApproveTransfer(req.ID, true, "", "", testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindPrecondition))
}

func TestAssignBedLosesRace(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	target := seedBed(t, env, models.RoomTypePrivate, "B3")

	a1 := env.admit(t, 100, b1.ID)
	a2 := env.admit(t, 200, b2.ID)

	t1 := requestTransfer(t, env, a1.ID, nil)
	t2 := requestTransfer(t, env, a2.ID, nil)
	_, err := env.transfers.ApproveTransfer(t1.ID, true, "", "", testUserID)
	require.NoError(t, err)
	_, err = env.transfers.ApproveTransfer(t2.ID, true, "", "", testUserID)
	require.NoError(t, err)

	_, err = env.transfers.AssignTransferBed(t1.ID, target.ID, nil, 0, testUserID)
	require.NoError(t, err)

	// The second assignment loses the claim and must pick a different bed.
	_, err = env.transfers.AssignTransferBed(t2.ID, target.ID, nil, 0, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindBedUnavailable))
}

func TestAssignBedSchedules(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, nil)

	_, err := env.transfers.ApproveTransfer(req.ID, true, "", "", testUserID)
	require.NoError(t, err)

	when := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	scheduled, err := env.transfers.AssignTransferBed(req.ID, b2.ID, &when, 0, testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusScheduled, scheduled.Status)
	require.NotNil(t, scheduled.ScheduledAt)

	completed, err := env.transfers.CompleteTransfer(req.ID, nil, nil, nil, testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCompleted, completed.Status)
}

func TestReassignWithoutNewScheduleKeepsSlot(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	b3 := seedBed(t, env, models.RoomTypeGeneral, "B3")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, nil)

	_, err := env.transfers.ApproveTransfer(req.ID, true, "", "", testUserID)
	require.NoError(t, err)

	slot := time.Now().Add(3 * time.Hour).Truncate(time.Second)
	scheduled, err := env.transfers.AssignTransferBed(req.ID, b2.ID, &slot, 0, testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusScheduled, scheduled.Status)

	// Switching beds without re-sending a time must not demote the request
	// or drop the stored slot.
	reassigned, err := env.transfers.AssignTransferBed(req.ID, b3.ID, nil, 0, testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusScheduled, reassigned.Status)
	require.NotNil(t, reassigned.ScheduledAt)
	assert.True(t, reassigned.ScheduledAt.Equal(slot))
	require.NotNil(t, reassigned.ToBedID)
	assert.Equal(t, b3.ID, *reassigned.ToBedID)
}

func TestRequestTransferReservationRollsBack(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	admission := env.admit(t, 100, b1.ID)

	// Block the insert so the reservation claimed in the same transaction
	// has to roll back with it.
	require.NoError(t, env.db.Exec(`CREATE TRIGGER block_transfer_insert
		BEFORE INSERT ON transfer_requests
		BEGIN SELECT RAISE(ABORT, 'insert blocked'); END`).Error)

	_, err := env.transfers.RequestTransfer(RequestTransferInput{
		AdmissionID:  admission.ID,
		TransferType: models.TransferTypeWard,
		Reason:       "closer to nursing station",
		ToBedID:      &b2.ID,
	}, testUserID)
	require.Error(t, err)
	assert.Equal(t, models.BedStateVacant, env.bedState(t, b2.ID).State)

	require.NoError(t, env.db.Exec("DROP TRIGGER block_transfer_insert").Error)

	req := requestTransfer(t, env, admission.ID, &b2.ID)
	require.NotNil(t, req.ToBedID)
	assert.Equal(t, models.BedStateReserved, env.bedState(t, b2.ID).State)
}

func TestReassignReleasesPreviousReservation(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	b3 := seedBed(t, env, models.RoomTypeGeneral, "B3")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, &b2.ID)

	_, err := env.transfers.ApproveTransfer(req.ID, true, "", "", testUserID)
	require.NoError(t, err)

	reassigned, err := env.transfers.AssignTransferBed(req.ID, b3.ID, nil, 0, testUserID)
	require.NoError(t, err)
	require.NotNil(t, reassigned.ToBedID)
	assert.Equal(t, b3.ID, *reassigned.ToBedID)

	assert.Equal(t, models.BedStateVacant, env.bedState(t, b2.ID).State)
	assert.Equal(t, models.BedStateReserved, env.bedState(t, b3.ID).State)
}

func TestCompleteWithoutTargetBed(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, nil)

	_, err := env.transfers.ApproveTransfer(req.ID, true, "", "", testUserID)
	require.NoError(t, err)

	_, err = env.transfers.CompleteTransfer(req.ID, nil, nil, nil, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindPrecondition))

	// A refused completion mutates nothing.
	assert.Equal(t, models.BedStateOccupied, env.bedState(t, b1.ID).State)
	reloaded, err := env.transfers.GetTransfer(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusApproved, reloaded.Status)
}

func TestCompleteRequestedTransfer(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, &b2.ID)

	// Completion requires an approval first.
	_, err := env.transfers.CompleteTransfer(req.ID, nil, nil, nil, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindPrecondition))
}

func TestCancelTransferIdempotent(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, &b2.ID)

	cancelled, err := env.transfers.CancelTransfer(req.ID, "patient declined", testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCancelled, cancelled.Status)
	assert.Equal(t, models.BedStateVacant, env.bedState(t, b2.ID).State)

	again, err := env.transfers.CancelTransfer(req.ID, "retry", testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCancelled, again.Status)
	assert.Equal(t, "patient declined", again.CancelReason)
}

func TestCancelCompletedTransfer(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, &b2.ID)

	_, err := env.transfers.ApproveTransfer(req.ID, true, "", "", testUserID)
	require.NoError(t, err)
	_, err = env.transfers.CompleteTransfer(req.ID, nil, nil, nil, testUserID)
	require.NoError(t, err)

	_, err = env.transfers.CancelTransfer(req.ID, "too late", testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindPrecondition))
}

func TestCancelRejectedTransfer(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, nil)

	_, err := env.transfers.ApproveTransfer(req.ID, false, "", "no staffing", testUserID)
	require.NoError(t, err)

	cancelled, err := env.transfers.CancelTransfer(req.ID, "closing out", testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCancelled, cancelled.Status)
}

func TestExpiredReservationIsClaimable(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, &b2.ID)
	require.NotNil(t, req.ToBedID)

	// Age the reservation past its TTL without running the sweeper.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, env.db.Model(&models.Bed{}).
		Where("id = ?", b2.ID).
		Update("reserved_until", past).Error)

	// A new admission claims the stale hold as if the bed were vacant.
	taken := env.admit(t, 200, b2.ID)
	assert.Equal(t, models.AdmissionStatusAdmitted, taken.Status)
	assert.Equal(t, models.BedStateOccupied, env.bedState(t, b2.ID).State)
}

func TestSweepExpiredReservations(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	b2 := seedBed(t, env, models.RoomTypeGeneral, "B2")
	admission := env.admit(t, 100, b1.ID)
	req := requestTransfer(t, env, admission.ID, &b2.ID)
	require.NotNil(t, req.ToBedID)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, env.db.Model(&models.Bed{}).
		Where("id = ?", b2.ID).
		Update("reserved_until", past).Error)

	swept, err := env.bedRepo.SweepExpiredReservations(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	bed := env.bedState(t, b2.ID)
	assert.Equal(t, models.BedStateVacant, bed.State)
	assert.Nil(t, bed.ReservedUntil)
}

func TestRequestTransferForTerminalAdmission(t *testing.T) {
	env := newTestEnv(t)
	b1 := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, b1.ID)
	_, err := env.admissions.DischargeAdmission(admission.ID, nil, testUserID)
	require.NoError(t, err)

	_, err = env.transfers.RequestTransfer(RequestTransferInput{
		AdmissionID:  admission.ID,
		TransferType: models.TransferTypeWard,
		Reason:       "closer to nursing station",
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindPrecondition))
}
