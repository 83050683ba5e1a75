package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/internal/repository"
	"hospital-bed-management/pkg/apperr"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUserID = uint(7)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Ward{},
		&models.Room{},
		&models.Bed{},
		&models.Admission{},
		&models.TransferRequest{},
		&models.TransferEvent{},
		&models.BedRate{},
		&models.User{},
		&models.RefreshToken{},
		&models.AuditLog{},
	))
	return db
}

// stubPatients resolves every patient except the IDs listed as missing.
type stubPatients struct {
	missing map[uint]bool
}

func (s stubPatients) GetPatient(_ context.Context, id uint) (*Patient, error) {
	if s.missing[id] {
		return nil, apperr.NotFound("patient %d not found", id)
	}
	return &Patient{ID: id, FullName: "Test Patient"}, nil
}

func (s stubPatients) SearchPatients(_ context.Context, _ string) ([]Patient, error) {
	return nil, nil
}

type testEnv struct {
	db         *gorm.DB
	bedRepo    *repository.BedRepository
	inventory  *InventoryService
	admissions *AdmissionService
	transfers  *TransferService
	charges    *ChargeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithPatients(t, stubPatients{})
}

func newTestEnvWithPatients(t *testing.T, patients PatientDirectory) *testEnv {
	t.Helper()

	db := newTestDB(t)
	wardRepo := repository.NewWardRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	bedRepo := repository.NewBedRepo(db)
	rateRepo := repository.NewRateRepo(db)
	admissionRepo := repository.NewAdmissionRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	admissions := NewAdmissionService(db, admissionRepo, bedRepo, transferRepo, patients, auditRepo)

	return &testEnv{
		db:         db,
		bedRepo:    bedRepo,
		inventory:  NewInventoryService(wardRepo, roomRepo, bedRepo, rateRepo, auditRepo),
		admissions: admissions,
		transfers:  NewTransferService(db, transferRepo, admissionRepo, bedRepo, admissions, auditRepo),
		charges:    NewChargeService(admissionRepo, transferRepo, rateRepo),
	}
}

// seedBed creates a ward, a room of the given type and one vacant bed.
func seedBed(t *testing.T, env *testEnv, roomType, code string) *models.Bed {
	t.Helper()

	ward := &models.Ward{Code: "W-" + code, Name: "Ward " + code, Floor: 1, IsActive: true}
	require.NoError(t, env.db.Create(ward).Error)

	room := &models.Room{WardID: ward.ID, Number: "R-" + code, RoomType: roomType, IsActive: true}
	require.NoError(t, env.db.Create(room).Error)

	bed := &models.Bed{RoomID: room.ID, Code: code, State: models.BedStateVacant, IsActive: true}
	require.NoError(t, env.db.Create(bed).Error)
	return bed
}

func (env *testEnv) bedState(t *testing.T, bedID uint) *models.Bed {
	t.Helper()
	var bed models.Bed
	require.NoError(t, env.db.First(&bed, bedID).Error)
	return &bed
}

func (env *testEnv) admit(t *testing.T, patientID uint, bedID uint) *models.Admission {
	t.Helper()
	admission, err := env.admissions.CreateAdmission(context.Background(), CreateAdmissionInput{
		PatientID: patientID,
		BedID:     bedID,
	}, testUserID)
	require.NoError(t, err)
	return admission
}
