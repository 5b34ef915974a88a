package repositories

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"regatta/internal/models"
)

// MockEquipmentRepository is an in-memory implementation of
// EquipmentRepository.
type MockEquipmentRepository struct {
	equipment map[string]models.Equipment
	order     []string // insertion order, for stable listings
	mu        sync.RWMutex
}

// NewMockEquipmentRepository creates a new instance of
// MockEquipmentRepository.
func NewMockEquipmentRepository() *MockEquipmentRepository {
	return &MockEquipmentRepository{equipment: make(map[string]models.Equipment)}
}

// Create adds new equipment, generating an id when absent.
func (r *MockEquipmentRepository) Create(equipment *models.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if equipment.ID == "" {
		equipment.ID = uuid.New().String()
	}
	r.equipment[equipment.ID] = *equipment
	r.order = append(r.order, equipment.ID)
	return nil
}

// GetByID returns equipment by id, or (nil, nil) when absent.
func (r *MockEquipmentRepository) GetByID(id string) (*models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	equipment, ok := r.equipment[id]
	if !ok {
		return nil, nil
	}
	return &equipment, nil
}

// Update replaces existing equipment.
func (r *MockEquipmentRepository) Update(equipment *models.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.equipment[equipment.ID]; !ok {
		return models.ErrNotFound
	}
	r.equipment[equipment.ID] = *equipment
	return nil
}

// Delete removes equipment by id.
func (r *MockEquipmentRepository) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.equipment[id]; !ok {
		return false, nil
	}
	delete(r.equipment, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// GetByUser returns one user's equipment in insertion order.
func (r *MockEquipmentRepository) GetByUser(userID string, activeOnly bool) ([]models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Equipment, 0)
	for _, id := range r.order {
		equipment := r.equipment[id]
		if equipment.OwnerID != userID {
			continue
		}
		if activeOnly && !equipment.Active {
			continue
		}
		result = append(result, equipment)
	}
	return result, nil
}

// GetByType returns one user's equipment of a given type, sorted by name.
func (r *MockEquipmentRepository) GetByType(userID string, equipmentType models.EquipmentType) ([]models.Equipment, error) {
	all, _ := r.GetByUser(userID, false)
	result := make([]models.Equipment, 0)
	for _, equipment := range all {
		if equipment.Type == equipmentType {
			result = append(result, equipment)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Retire marks equipment inactive.
func (r *MockEquipmentRepository) Retire(id string) (bool, error) {
	return r.setActive(id, false)
}

// Reactivate marks equipment active again.
func (r *MockEquipmentRepository) Reactivate(id string) (bool, error) {
	return r.setActive(id, true)
}

func (r *MockEquipmentRepository) setActive(id string, active bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	equipment, ok := r.equipment[id]
	if !ok {
		return false, nil
	}
	equipment.Active = active
	equipment.UpdatedAt = time.Now().UTC()
	r.equipment[id] = equipment
	return true, nil
}

// AddWear adjusts accumulated wear by delta, flooring the result at zero.
func (r *MockEquipmentRepository) AddWear(id string, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	equipment, ok := r.equipment[id]
	if !ok {
		return models.ErrNotFound
	}
	equipment.Wear += delta
	if equipment.Wear < 0 {
		equipment.Wear = 0
	}
	equipment.UpdatedAt = time.Now().UTC()
	r.equipment[id] = equipment
	return nil
}
