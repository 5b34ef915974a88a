package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"regatta/internal/models"
)

// GORMEquipmentRepository is a GORM implementation of EquipmentRepository.
type GORMEquipmentRepository struct {
	db *gorm.DB
}

// NewGORMEquipmentRepository creates a new instance of GORMEquipmentRepository.
func NewGORMEquipmentRepository(db *gorm.DB) *GORMEquipmentRepository {
	return &GORMEquipmentRepository{db: db}
}

// Create inserts new equipment, generating an id when absent.
func (r *GORMEquipmentRepository) Create(equipment *models.Equipment) error {
	if equipment.ID == "" {
		equipment.ID = uuid.New().String()
	}
	if err := r.db.Create(equipment).Error; err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}
	return nil
}

// GetByID retrieves equipment by id, or (nil, nil) when absent.
func (r *GORMEquipmentRepository) GetByID(id string) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := r.db.First(&equipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return &equipment, nil
}

// Update persists all mutable fields of existing equipment.
func (r *GORMEquipmentRepository) Update(equipment *models.Equipment) error {
	res := r.db.Model(&models.Equipment{}).Where("id = ?", equipment.ID).
		Select("Name", "Type", "Manufacturer", "Model", "PurchaseDate",
			"Notes", "Active", "Wear", "UpdatedAt").
		Updates(equipment)
	if res.Error != nil {
		return fmt.Errorf("failed to update equipment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete hard-deletes equipment by id.
func (r *GORMEquipmentRepository) Delete(id string) (bool, error) {
	res := r.db.Delete(&models.Equipment{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete equipment: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetByUser returns one user's equipment, sorted by name. When activeOnly is
// set, retired items are excluded.
func (r *GORMEquipmentRepository) GetByUser(userID string, activeOnly bool) ([]models.Equipment, error) {
	query := r.db.Where("owner_id = ?", userID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var equipment []models.Equipment
	if err := query.Order("name").Find(&equipment).Error; err != nil {
		return nil, fmt.Errorf("failed to get equipment for user %s: %w", userID, err)
	}
	return equipment, nil
}

// GetByType returns one user's equipment of a given type, sorted by name.
func (r *GORMEquipmentRepository) GetByType(userID string, equipmentType models.EquipmentType) ([]models.Equipment, error) {
	var equipment []models.Equipment
	err := r.db.Where("owner_id = ? AND type = ?", userID, equipmentType).
		Order("name").Find(&equipment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment by type: %w", err)
	}
	return equipment, nil
}

// Retire marks equipment inactive.
func (r *GORMEquipmentRepository) Retire(id string) (bool, error) {
	return r.setActive(id, false)
}

// Reactivate marks equipment active again.
func (r *GORMEquipmentRepository) Reactivate(id string) (bool, error) {
	return r.setActive(id, true)
}

func (r *GORMEquipmentRepository) setActive(id string, active bool) (bool, error) {
	res := r.db.Model(&models.Equipment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, fmt.Errorf("failed to set equipment active=%t: %w", active, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AddWear adjusts accumulated wear by delta in a single UPDATE, flooring the
// result at zero so concurrent adjustments cannot drive it negative.
func (r *GORMEquipmentRepository) AddWear(id string, delta float64) error {
	return addWear(r.db, id, delta)
}

// addWear is the shared wear UPDATE. It runs against a plain handle or a
// transaction, so session mutations can adjust wear inside their own
// transaction.
func addWear(db *gorm.DB, id string, delta float64) error {
	res := db.Model(&models.Equipment{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"wear":       gorm.Expr("CASE WHEN wear + ? < 0 THEN 0 ELSE wear + ? END", delta, delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to adjust wear for equipment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
