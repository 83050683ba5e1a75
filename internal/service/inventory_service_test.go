package service

import (
	"testing"
	"time"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWardValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.inventory.CreateWard(&models.Ward{Name: "East Wing"}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	ward, err := env.inventory.CreateWard(&models.Ward{Code: "EW", Name: "East Wing", Floor: 2}, testUserID)
	require.NoError(t, err)
	assert.True(t, ward.IsActive)

	// Ward codes are unique.
	_, err = env.inventory.CreateWard(&models.Ward{Code: "EW", Name: "Duplicate"}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestDeleteWardWithRooms(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")

	withRoom, err := env.inventory.bedRepo.GetBedByID(bed.ID)
	require.NoError(t, err)

	err = env.inventory.DeleteWard(withRoom.Room.WardID, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestDeleteRoomWithBeds(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")

	err := env.inventory.DeleteRoom(bed.RoomID, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateRoomUnknownWard(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.inventory.CreateRoom(&models.Room{
		WardID:   9999,
		Number:   "101",
		RoomType: models.RoomTypeGeneral,
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = env.inventory.CreateRoom(&models.Room{
		WardID:   1,
		Number:   "101",
		RoomType: "penthouse",
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateBedStartsVacant(t *testing.T) {
	env := newTestEnv(t)
	seeded := seedBed(t, env, models.RoomTypeGeneral, "B1")

	until := time.Now().Add(time.Hour)
	bed, err := env.inventory.CreateBed(&models.Bed{
		RoomID:        seeded.RoomID,
		Code:          "B2",
		State:         models.BedStateOccupied,
		ReservedUntil: &until,
	}, testUserID)
	require.NoError(t, err)

	// Whatever the caller sends, new beds always start vacant.
	assert.Equal(t, models.BedStateVacant, bed.State)
	assert.Nil(t, bed.ReservedUntil)
}

func TestDeleteBedGuards(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")
	admission := env.admit(t, 100, bed.ID)

	// Occupied, and referenced by the admission.
	err := env.inventory.DeleteBed(bed.ID, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = env.admissions.DischargeAdmission(admission.ID, nil, testUserID)
	require.NoError(t, err)

	// Vacant again, but the admission history still references it.
	err = env.inventory.DeleteBed(bed.ID, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	fresh := seedBed(t, env, models.RoomTypeGeneral, "B2")
	require.NoError(t, env.inventory.DeleteBed(fresh.ID, testUserID))

	_, err = env.inventory.GetBedByID(fresh.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestSetBedState(t *testing.T) {
	env := newTestEnv(t)
	bed := seedBed(t, env, models.RoomTypeGeneral, "B1")

	_, err := env.inventory.SetBedState(bed.ID, "broken", nil, "", testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = env.inventory.SetBedState(bed.ID, models.BedStateReserved, nil, "", testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	updated, err := env.inventory.SetBedState(bed.ID, models.BedStatePreoccupied, nil, "cleaning", testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.BedStatePreoccupied, updated.State)
	assert.Equal(t, "cleaning", updated.Note)

	until := time.Now().Add(time.Hour).Truncate(time.Second)
	reserved, err := env.inventory.SetBedState(bed.ID, models.BedStateReserved, &until, "", testUserID)
	require.NoError(t, err)
	assert.Equal(t, models.BedStateReserved, reserved.State)
	require.NotNil(t, reserved.ReservedUntil)
}

func TestCreateRateValidation(t *testing.T) {
	env := newTestEnv(t)

	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	_, err := env.inventory.CreateRate(&models.BedRate{
		RoomType:      "penthouse",
		DailyRate:     100,
		EffectiveFrom: jan1,
		EffectiveTo:   jan31,
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = env.inventory.CreateRate(&models.BedRate{
		RoomType:      models.RoomTypeGeneral,
		DailyRate:     -5,
		EffectiveFrom: jan1,
		EffectiveTo:   jan31,
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = env.inventory.CreateRate(&models.BedRate{
		RoomType:      models.RoomTypeGeneral,
		DailyRate:     100,
		EffectiveFrom: jan31,
		EffectiveTo:   jan1,
	}, testUserID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	rate, err := env.inventory.CreateRate(&models.BedRate{
		RoomType:      models.RoomTypeGeneral,
		DailyRate:     100,
		EffectiveFrom: jan1,
		EffectiveTo:   jan31,
	}, testUserID)
	require.NoError(t, err)
	assert.NotZero(t, rate.ID)
}
