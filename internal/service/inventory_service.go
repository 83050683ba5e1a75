package service

import (
	"fmt"
	"time"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/internal/repository"
	"hospital-bed-management/pkg/apperr"
)

// InventoryService is the catalog of wards, rooms and beds: the
// authoritative source of bed identity and static attributes.
type InventoryService struct {
	wardRepo  *repository.WardRepository
	roomRepo  *repository.RoomRepository
	bedRepo   *repository.BedRepository
	rateRepo  *repository.RateRepository
	auditRepo *repository.AuditRepository
}

func NewInventoryService(
	wardRepo *repository.WardRepository,
	roomRepo *repository.RoomRepository,
	bedRepo *repository.BedRepository,
	rateRepo *repository.RateRepository,
	auditRepo *repository.AuditRepository,
) *InventoryService {
	return &InventoryService{
		wardRepo:  wardRepo,
		roomRepo:  roomRepo,
		bedRepo:   bedRepo,
		rateRepo:  rateRepo,
		auditRepo: auditRepo,
	}
}

// --- Wards ---

func (s *InventoryService) GetAllWards() ([]models.Ward, error) {
	return s.wardRepo.GetAllWards()
}

func (s *InventoryService) CreateWard(ward *models.Ward, userID uint) (*models.Ward, error) {
	if ward.Code == "" || ward.Name == "" {
		return nil, apperr.Validation("ward code and name are required")
	}
	ward.IsActive = true
	if err := s.wardRepo.CreateWard(ward); err != nil {
		return nil, err
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "ward_create",
		fmt.Sprintf("Created ward %s (code: %s)", ward.Name, ward.Code))

	return ward, nil
}

func (s *InventoryService) UpdateWard(ward *models.Ward, userID uint) (*models.Ward, error) {
	existing, err := s.wardRepo.GetWardByID(ward.ID)
	if err != nil {
		return nil, err
	}
	if ward.Code == "" || ward.Name == "" {
		return nil, apperr.Validation("ward code and name are required")
	}

	existing.Code = ward.Code
	existing.Name = ward.Name
	existing.Floor = ward.Floor
	if err := s.wardRepo.UpdateWard(existing); err != nil {
		return nil, fmt.Errorf("failed to update ward: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "ward_update",
		fmt.Sprintf("Updated ward %s (ID: %d)", existing.Name, existing.ID))

	return existing, nil
}

func (s *InventoryService) DeleteWard(wardID uint, userID uint) error {
	ward, err := s.wardRepo.GetWardByID(wardID)
	if err != nil {
		return err
	}

	count, err := s.wardRepo.CountRoomsInWard(wardID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("ward %d still has %d active rooms", wardID, count)
	}

	if err := s.wardRepo.SoftDeleteWard(wardID); err != nil {
		return fmt.Errorf("failed to delete ward: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "ward_delete",
		fmt.Sprintf("Deleted ward %s (ID: %d)", ward.Name, wardID))

	return nil
}

// --- Rooms ---

func (s *InventoryService) GetRooms(wardID uint) ([]models.Room, error) {
	if wardID != 0 {
		return s.roomRepo.GetRoomsByWardID(wardID)
	}
	return s.roomRepo.GetAllRooms()
}

func (s *InventoryService) CreateRoom(room *models.Room, userID uint) (*models.Room, error) {
	if room.Number == "" {
		return nil, apperr.Validation("room number is required")
	}
	if !models.ValidRoomType(room.RoomType) {
		return nil, apperr.Validation("invalid room type %q", room.RoomType)
	}
	if _, err := s.wardRepo.GetWardByID(room.WardID); err != nil {
		return nil, err
	}

	room.IsActive = true
	if err := s.roomRepo.CreateRoom(room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "room_create",
		fmt.Sprintf("Created room %s (type: %s, ward_id: %d)", room.Number, room.RoomType, room.WardID))

	return room, nil
}

func (s *InventoryService) UpdateRoom(room *models.Room, userID uint) (*models.Room, error) {
	existing, err := s.roomRepo.GetRoomByID(room.ID)
	if err != nil {
		return nil, err
	}
	if room.Number == "" {
		return nil, apperr.Validation("room number is required")
	}
	if !models.ValidRoomType(room.RoomType) {
		return nil, apperr.Validation("invalid room type %q", room.RoomType)
	}
	if room.WardID != existing.WardID {
		if _, err := s.wardRepo.GetWardByID(room.WardID); err != nil {
			return nil, err
		}
	}

	existing.WardID = room.WardID
	existing.Number = room.Number
	existing.RoomType = room.RoomType
	if err := s.roomRepo.UpdateRoom(existing); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "room_update",
		fmt.Sprintf("Updated room %s (ID: %d)", existing.Number, existing.ID))

	return existing, nil
}

func (s *InventoryService) DeleteRoom(roomID uint, userID uint) error {
	room, err := s.roomRepo.GetRoomByID(roomID)
	if err != nil {
		return err
	}

	count, err := s.roomRepo.CountBedsInRoom(roomID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("room %d still has %d active beds", roomID, count)
	}

	if err := s.roomRepo.SoftDeleteRoom(roomID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "room_delete",
		fmt.Sprintf("Deleted room %s (ID: %d)", room.Number, roomID))

	return nil
}

// --- Beds ---

func (s *InventoryService) GetBeds(roomID uint) ([]models.Bed, error) {
	if roomID != 0 {
		return s.bedRepo.GetBedsByRoomID(roomID)
	}
	return s.bedRepo.GetAllBeds()
}

func (s *InventoryService) GetBedByID(bedID uint) (*models.Bed, error) {
	return s.bedRepo.GetBedByID(bedID)
}

func (s *InventoryService) CreateBed(bed *models.Bed, userID uint) (*models.Bed, error) {
	if bed.Code == "" {
		return nil, apperr.Validation("bed code is required")
	}
	if _, err := s.roomRepo.GetRoomByID(bed.RoomID); err != nil {
		return nil, err
	}

	bed.State = models.BedStateVacant
	bed.ReservedUntil = nil
	bed.IsActive = true
	if err := s.bedRepo.CreateBed(bed); err != nil {
		return nil, fmt.Errorf("failed to create bed: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "bed_create",
		fmt.Sprintf("Created bed %s (room_id: %d)", bed.Code, bed.RoomID))

	return bed, nil
}

func (s *InventoryService) UpdateBed(bed *models.Bed, userID uint) (*models.Bed, error) {
	existing, err := s.bedRepo.GetBedByID(bed.ID)
	if err != nil {
		return nil, err
	}
	if bed.Code == "" {
		return nil, apperr.Validation("bed code is required")
	}
	if bed.RoomID != existing.RoomID {
		if _, err := s.roomRepo.GetRoomByID(bed.RoomID); err != nil {
			return nil, err
		}
	}

	// Static attributes only; state changes go through SetBedState or the
	// workflow claims.
	existing.RoomID = bed.RoomID
	existing.Code = bed.Code
	existing.Note = bed.Note
	if err := s.bedRepo.UpdateBed(existing); err != nil {
		return nil, fmt.Errorf("failed to update bed: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "bed_update",
		fmt.Sprintf("Updated bed %s (ID: %d)", existing.Code, existing.ID))

	return existing, nil
}

func (s *InventoryService) DeleteBed(bedID uint, userID uint) error {
	bed, err := s.bedRepo.GetBedByID(bedID)
	if err != nil {
		return err
	}

	// Beds referenced by admission or transfer history are never
	// hard-deleted, and soft-disable is refused too while history exists.
	refs, err := s.bedRepo.CountReferencesToBed(bedID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Conflict("bed %d is referenced by %d admission/transfer records", bedID, refs)
	}
	if bed.State == models.BedStateOccupied || bed.State == models.BedStateReserved {
		return apperr.Conflict("bed %d is currently %s", bedID, bed.State)
	}

	if err := s.bedRepo.SoftDeleteBed(bedID); err != nil {
		return fmt.Errorf("failed to delete bed: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "bed_delete",
		fmt.Sprintf("Deleted bed %s (ID: %d)", bed.Code, bedID))

	return nil
}

// SetBedState applies a manual state override outside the transfer workflow,
// e.g. marking a bed preoccupied for cleaning
func (s *InventoryService) SetBedState(bedID uint, state string, reservedUntil *time.Time, note string, userID uint) (*models.Bed, error) {
	if !models.ValidBedState(state) {
		return nil, apperr.Validation("invalid bed state %q", state)
	}
	if state == models.BedStateReserved && reservedUntil == nil {
		return nil, apperr.Validation("reserved_until is required when setting state to reserved")
	}
	if state != models.BedStateReserved {
		reservedUntil = nil
	}
	if _, err := s.bedRepo.GetBedByID(bedID); err != nil {
		return nil, err
	}

	reservedUntil = truncateToSecond(reservedUntil)
	if err := s.bedRepo.SetBedState(bedID, state, reservedUntil, note); err != nil {
		return nil, fmt.Errorf("failed to set bed state: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "bed_state_override",
		fmt.Sprintf("Set bed %d state to %s", bedID, state))

	return s.bedRepo.GetBedByID(bedID)
}

// --- Bed rates ---

func (s *InventoryService) GetAllRates() ([]models.BedRate, error) {
	return s.rateRepo.GetAllRates()
}

func (s *InventoryService) CreateRate(rate *models.BedRate, userID uint) (*models.BedRate, error) {
	if !models.ValidRoomType(rate.RoomType) {
		return nil, apperr.Validation("invalid room type %q", rate.RoomType)
	}
	if rate.DailyRate < 0 {
		return nil, apperr.Validation("daily rate must not be negative")
	}
	if rate.EffectiveTo.Before(rate.EffectiveFrom) {
		return nil, apperr.Validation("effective_to must not precede effective_from")
	}

	if err := s.rateRepo.CreateRate(rate); err != nil {
		return nil, fmt.Errorf("failed to create bed rate: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "bed_rate_create",
		fmt.Sprintf("Created %s rate %.2f effective %s to %s", rate.RoomType, rate.DailyRate,
			rate.EffectiveFrom.Format("2006-01-02"), rate.EffectiveTo.Format("2006-01-02")))

	return rate, nil
}
