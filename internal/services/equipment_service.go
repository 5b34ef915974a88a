package services

import (
	"time"

	"regatta/internal/models"
	"regatta/internal/repositories"
)

// EquipmentStatistics summarizes a user's full inventory, retired gear
// included.
type EquipmentStatistics struct {
	TotalEquipment    int                `json:"total_equipment"`
	ActiveEquipment   int                `json:"active_equipment"`
	RetiredEquipment  int                `json:"retired_equipment"`
	EquipmentByType   map[string]int     `json:"equipment_by_type"`
	OldestEquipment   string             `json:"oldest_equipment,omitempty"`
	NewestEquipment   string             `json:"newest_equipment,omitempty"`
	MostWornEquipment map[string]float64 `json:"most_worn_equipment,omitempty"`
}

// EquipmentService handles business logic for a user's gear inventory.
type EquipmentService struct {
	equipmentRepo repositories.EquipmentRepository
}

// NewEquipmentService creates a new EquipmentService.
func NewEquipmentService(equipmentRepo repositories.EquipmentRepository) *EquipmentService {
	return &EquipmentService{equipmentRepo: equipmentRepo}
}

// Create validates and persists new equipment owned by the user.
func (s *EquipmentService) Create(userID string, equipment *models.Equipment) (*models.Equipment, error) {
	now := time.Now().UTC()
	equipment.ID = ""
	equipment.OwnerID = userID
	equipment.Active = true
	equipment.CreatedAt = now
	equipment.UpdatedAt = now
	if err := equipment.Validate(); err != nil {
		return nil, err
	}

	if err := s.equipmentRepo.Create(equipment); err != nil {
		return nil, err
	}
	return equipment, nil
}

// GetByID returns equipment the user owns, or (nil, nil) when it is absent
// or belongs to someone else.
func (s *EquipmentService) GetByID(equipmentID, userID string) (*models.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(equipmentID)
	if err != nil {
		return nil, err
	}
	if equipment == nil || equipment.OwnerID != userID {
		return nil, nil
	}
	return equipment, nil
}

// GetUserEquipment returns the user's inventory, optionally restricted to
// items still in service.
func (s *EquipmentService) GetUserEquipment(userID string, activeOnly bool) ([]models.Equipment, error) {
	return s.equipmentRepo.GetByUser(userID, activeOnly)
}

// GetByType returns the user's equipment of one type.
func (s *EquipmentService) GetByType(userID string, equipmentType models.EquipmentType) ([]models.Equipment, error) {
	return s.equipmentRepo.GetByType(userID, equipmentType)
}

// Update applies a patch to owned equipment, re-validating the whole entity.
func (s *EquipmentService) Update(equipmentID, userID string, patch models.EquipmentPatch) (*models.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(equipmentID)
	if err != nil {
		return nil, err
	}
	if equipment == nil || equipment.OwnerID != userID {
		return nil, nil
	}

	if err := equipment.ApplyPatch(patch); err != nil {
		return nil, err
	}
	if err := s.equipmentRepo.Update(equipment); err != nil {
		return nil, err
	}
	return equipment, nil
}

// Retire takes owned equipment out of service.
func (s *EquipmentService) Retire(equipmentID, userID string) (bool, error) {
	owned, err := s.owns(equipmentID, userID)
	if err != nil || !owned {
		return false, err
	}
	return s.equipmentRepo.Retire(equipmentID)
}

// Reactivate puts owned retired equipment back into service.
func (s *EquipmentService) Reactivate(equipmentID, userID string) (bool, error) {
	owned, err := s.owns(equipmentID, userID)
	if err != nil || !owned {
		return false, err
	}
	return s.equipmentRepo.Reactivate(equipmentID)
}

// Delete hard-deletes owned equipment.
func (s *EquipmentService) Delete(equipmentID, userID string) (bool, error) {
	owned, err := s.owns(equipmentID, userID)
	if err != nil || !owned {
		return false, err
	}
	return s.equipmentRepo.Delete(equipmentID)
}

// GetStatistics summarizes the user's inventory. Items without a purchase
// date count toward totals but are excluded from the oldest/newest pick;
// ties go to the earlier-listed item.
func (s *EquipmentService) GetStatistics(userID string) (*EquipmentStatistics, error) {
	all, err := s.equipmentRepo.GetByUser(userID, false)
	if err != nil {
		return nil, err
	}

	stats := &EquipmentStatistics{EquipmentByType: make(map[string]int)}
	if len(all) == 0 {
		return stats, nil
	}

	var oldest, newest, mostWorn *models.Equipment
	for i := range all {
		equipment := &all[i]
		stats.TotalEquipment++
		if equipment.Active {
			stats.ActiveEquipment++
		}
		stats.EquipmentByType[string(equipment.Type)]++

		if equipment.PurchaseDate != nil {
			if oldest == nil || equipment.PurchaseDate.Before(*oldest.PurchaseDate) {
				oldest = equipment
			}
			if newest == nil || equipment.PurchaseDate.After(*newest.PurchaseDate) {
				newest = equipment
			}
		}
		if mostWorn == nil || equipment.Wear > mostWorn.Wear {
			mostWorn = equipment
		}
	}
	stats.RetiredEquipment = stats.TotalEquipment - stats.ActiveEquipment
	if oldest != nil {
		stats.OldestEquipment = oldest.Name
	}
	if newest != nil {
		stats.NewestEquipment = newest.Name
	}
	if mostWorn != nil && mostWorn.Wear > 0 {
		stats.MostWornEquipment = map[string]float64{mostWorn.Name: mostWorn.Wear}
	}
	return stats, nil
}

func (s *EquipmentService) owns(equipmentID, userID string) (bool, error) {
	equipment, err := s.equipmentRepo.GetByID(equipmentID)
	if err != nil {
		return false, err
	}
	return equipment != nil && equipment.OwnerID == userID, nil
}
