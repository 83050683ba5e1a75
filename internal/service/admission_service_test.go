package service

import (
	"context"
	"testing"
	"time"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdmissionOccupiesBed(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")

	admission := env.admit(t, 100, bed.ID)

	assert.Equal(t, models.AdmissionStatusAdmitted, admission.Status)
	require.NotNil(t, admission.CurrentBedID)
	assert.Equal(t, bed.ID, *admission.CurrentBedID)
	assert.Equal(t, models.BedStateOccupied, env.bedState(t, bed.ID).State)
}

func TestCreateAdmissionValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.admissions.CreateAdmission(context.Background(), CreateAdmissionInput{BedID: 1}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = env.admissions.CreateAdmission(context.Background(), CreateAdmissionInput{PatientID: 100}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateAdmissionUnknownPatient(t *testing.T) {
	env := newTestEnvWithPatients(t, stubPatients{missing: map[uint]bool{100: true}})
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")

	_, err := env.admissions.CreateAdmission(context.Background(), CreateAdmissionInput{
		PatientID: 100,
		BedID:     bed.ID,
	}, testUserID)

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Equal(t, models.BedStateVacant, env.bedState(t, bed.ID).State)
}

func TestCreateAdmissionBedNotVacant(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")
	env.admit(t, 100, bed.ID)

	_, err := env.admissions.CreateAdmission(context.Background(), CreateAdmissionInput{
		PatientID: 200,
		BedID:     bed.ID,
	}, testUserID)

	assert.True(t, apperr.IsKind(err, apperr.KindBedUnavailable))
}

func TestCreateAdmissionDuplicatePatientRollsBack(t *testing.T) {
	env := newTestEnv(t)
	first := seedBed(t, env, models.RoomTypeGeneral, "B1")
	second := seedBed(t, env, models.RoomTypeGeneral, "B2")
	env.admit(t, 100, first.ID)

	_, err := env.admissions.CreateAdmission(context.Background(), CreateAdmissionInput{
		PatientID: 100,
		BedID:     second.ID,
	}, testUserID)

	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	// The losing insert rolled back, so the claimed bed returns to vacant.
	assert.Equal(t, models.BedStateVacant, env.bedState(t, second.ID).State)
}

func TestReadmitAfterDischarge(t *testing.T) {
	env := newTestEnv(t)
	first := seedBed(t, env, models.RoomTypeGeneral, "B1")
	second := seedBed(t, env, models.RoomTypeGeneral, "B2")

	admission := env.admit(t, 100, first.ID)
	_, err := env.admissions.DischargeAdmission(admission.ID, nil, testUserID)
	require.NoError(t, err)

	// The terminal admission no longer blocks a new stay for the patient.
	readmit := env.admit(t, 100, second.ID)
	assert.Equal(t, models.AdmissionStatusAdmitted, readmit.Status)
}

func TestDischargeReleasesBed(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, bed.ID)

	when := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	discharged, err := env.admissions.DischargeAdmission(admission.ID, &when, testUserID)
	require.NoError(t, err)

	assert.Equal(t, models.AdmissionStatusDischarged, discharged.Status)
	require.NotNil(t, discharged.DischargedAt)
	assert.True(t, discharged.DischargedAt.Equal(when))
	assert.Equal(t, models.BedStateVacant, env.bedState(t, bed.ID).State)

	// Repeat discharge returns the terminal state without erroring.
	again, err := env.admissions.DischargeAdmission(admission.ID, nil, testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionStatusDischarged, again.Status)
}

func TestCancelAdmissionIdempotent(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, bed.ID)

	cancelled, err := env.admissions.CancelAdmission(admission.ID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionStatusCancelled, cancelled.Status)
	assert.Equal(t, models.BedStateVacant, env.bedState(t, bed.ID).State)

	again, err := env.admissions.CancelAdmission(admission.ID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.AdmissionStatusCancelled, again.Status)
}

func TestCancelDischargedAdmission(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, bed.ID)

	_, err := env.admissions.DischargeAdmission(admission.ID, nil, testUserID)
	require.NoError(t, err)

	_, err = env.admissions.CancelAdmission(admission.ID, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindPrecondition))
}

func TestTerminateBlockedByTransferInFlight(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")
	target := seedBed(t, env, models.RoomTypeICU, "B2")
	admission := env.admit(t, 100, bed.ID)

	_, err := env.transfers.RequestTransfer(RequestTransferInput{
		AdmissionID:  admission.ID,
		TransferType: models.TransferTypeICU,
		Reason:       "needs monitoring",
		ToBedID:      &target.ID,
	}, testUserID)
	require.NoError(t, err)

	_, err = env.admissions.DischargeAdmission(admission.ID, nil, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = env.admissions.CancelAdmission(admission.ID, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestUpdateAdmissionMetadata(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, bed.ID)

	practitioner := "Dr. Carter"
	diagnosis := "pneumonia"
	updated, err := env.admissions.UpdateAdmission(admission.ID, UpdateAdmissionInput{
		Practitioner: &practitioner,
		Diagnosis:    &diagnosis,
	}, testUserID)
	require.NoError(t, err)

	assert.Equal(t, "Dr. Carter", updated.Practitioner)
	assert.Equal(t, "pneumonia", updated.Diagnosis)
	// The bed binding never changes through a metadata update.
	require.NotNil(t, updated.CurrentBedID)
	assert.Equal(t, bed.ID, *updated.CurrentBedID)
}

func TestUpdateTerminalAdmission(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, bed.ID)

	_, err := env.admissions.CancelAdmission(admission.ID, testUserID)
	require.NoError(t, err)

	practitioner := "Dr. Carter"
	_, err = env.admissions.UpdateAdmission(admission.ID, UpdateAdmissionInput{
		Practitioner: &practitioner,
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindPrecondition))
}

func TestListAdmissionsFilters(t *testing.T) {
	env := newTestEnv(t)
	first := seedBed(t, env, models.RoomTypeGeneral, "B1")
	second := seedBed(t, env, models.RoomTypeGeneral, "B2")

	a1 := env.admit(t, 100, first.ID)
	env.admit(t, 200, second.ID)
	_, err := env.admissions.DischargeAdmission(a1.ID, nil, testUserID)
	require.NoError(t, err)

	admitted, err := env.admissions.ListAdmissions(models.AdmissionStatusAdmitted, 0)
	require.NoError(t, err)
	assert.Len(t, admitted, 1)

	byPatient, err := env.admissions.ListAdmissions("", 100)
	require.NoError(t, err)
	assert.Len(t, byPatient, 1)

	_, err = env.admissions.ListAdmissions("bogus", 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
