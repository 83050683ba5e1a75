package repository

import (
	"errors"

	"hospital-bed-management/internal/models"
	"hospital-bed-management/pkg/apperr"

	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepo(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetAllRooms retrieves all active rooms
func (r *RoomRepository) GetAllRooms() ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Where("is_active = ?", true).
		Preload("Ward").
		Order("ward_id ASC, number ASC").
		Find(&rooms).Error
	return rooms, err
}

// GetRoomsByWardID retrieves all active rooms for a specific ward
func (r *RoomRepository) GetRoomsByWardID(wardID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Where("ward_id = ? AND is_active = ?", wardID, true).
		Order("number ASC").
		Find(&rooms).Error
	return rooms, err
}

// GetRoomByID retrieves a room by ID
func (r *RoomRepository) GetRoomByID(id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("room %d not found", id)
		}
		return nil, err
	}
	return &room, nil
}

// CreateRoom creates a new room
func (r *RoomRepository) CreateRoom(room *models.Room) error {
	return r.db.Create(room).Error
}

// UpdateRoom updates an existing room
func (r *RoomRepository) UpdateRoom(room *models.Room) error {
	return r.db.Save(room).Error
}

// SoftDeleteRoom soft deletes a room by setting is_active to false
func (r *RoomRepository) SoftDeleteRoom(id uint) error {
	return r.db.Model(&models.Room{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// CountBedsInRoom counts active beds that still reference the room
func (r *RoomRepository) CountBedsInRoom(roomID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Bed{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(&count).Error
	return count, err
}
