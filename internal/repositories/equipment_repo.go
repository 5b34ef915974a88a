package repositories

import "regatta/internal/models"

// EquipmentRepository defines the interface for equipment data access.
// Lookup methods return (nil, nil) when no row matches.
type EquipmentRepository interface {
	Create(equipment *models.Equipment) error
	GetByID(id string) (*models.Equipment, error)
	Update(equipment *models.Equipment) error
	Delete(id string) (bool, error)
	GetByUser(userID string, activeOnly bool) ([]models.Equipment, error)
	GetByType(userID string, equipmentType models.EquipmentType) ([]models.Equipment, error)
	Retire(id string) (bool, error)
	Reactivate(id string) (bool, error)

	// AddWear adjusts accumulated wear by delta (which may be negative),
	// flooring the result at zero inside the store.
	AddWear(id string, delta float64) error
}
