package repositories

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"regatta/internal/models"
)

// MockSessionRepository is an in-memory implementation of SessionRepository.
// Wear deltas are applied against the equipment repository with the same
// commit-or-nothing behavior as the GORM implementation.
type MockSessionRepository struct {
	sessions  map[string]models.SailingSession
	settings  map[string]models.EquipmentSettings // keyed by session id
	equipment *MockEquipmentRepository
	mu        sync.RWMutex
}

// NewMockSessionRepository creates a new instance of MockSessionRepository.
func NewMockSessionRepository(equipment *MockEquipmentRepository) *MockSessionRepository {
	return &MockSessionRepository{
		sessions:  make(map[string]models.SailingSession),
		settings:  make(map[string]models.EquipmentSettings),
		equipment: equipment,
	}
}

// Create adds a new session, generating an id when absent. When any wear
// delta fails the session is not stored.
func (r *MockSessionRepository) Create(session *models.SailingSession, wear []WearDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.applyWear(wear); err != nil {
		return err
	}
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	r.sessions[session.ID] = copySession(*session)
	return nil
}

// GetByID returns a session by id, or (nil, nil) when absent.
func (r *MockSessionRepository) GetByID(id string) (*models.SailingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	s := copySession(session)
	return &s, nil
}

// Update replaces an existing session. When any wear delta fails the stored
// session is left unchanged.
func (r *MockSessionRepository) Update(session *models.SailingSession, wear []WearDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return models.ErrNotFound
	}
	if err := r.applyWear(wear); err != nil {
		return err
	}
	r.sessions[session.ID] = copySession(*session)
	return nil
}

// Delete removes a session and its settings, applying the wear reversals
// first. When any wear delta fails the session stays.
func (r *MockSessionRepository) Delete(id string, wear []WearDelta) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false, nil
	}
	if err := r.applyWear(wear); err != nil {
		return false, err
	}
	delete(r.sessions, id)
	delete(r.settings, id)
	return true, nil
}

// applyWear adjusts equipment wear all-or-nothing: every referenced item is
// checked before the first adjustment is made.
func (r *MockSessionRepository) applyWear(wear []WearDelta) error {
	for _, delta := range wear {
		equipment, err := r.equipment.GetByID(delta.EquipmentID)
		if err != nil {
			return err
		}
		if equipment == nil {
			return models.ErrNotFound
		}
	}
	for _, delta := range wear {
		if err := r.equipment.AddWear(delta.EquipmentID, delta.Delta); err != nil {
			return err
		}
	}
	return nil
}

// ListAll returns sessions with pagination, most recent outing first.
func (r *MockSessionRepository) ListAll(skip, limit int) ([]models.SailingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.SailingSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		all = append(all, copySession(session))
	}
	sortByDateDesc(all)
	return paginate(all, skip, limit), nil
}

// GetByUser returns one user's sessions with pagination.
func (r *MockSessionRepository) GetByUser(userID string, skip, limit int) ([]models.SailingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.SailingSession, 0)
	for _, session := range r.sessions {
		if session.CreatedBy == userID {
			result = append(result, copySession(session))
		}
	}
	sortByDateDesc(result)
	return paginate(result, skip, limit), nil
}

// GetByDateRange returns one user's sessions within [start, end].
func (r *MockSessionRepository) GetByDateRange(userID string, start, end time.Time) ([]models.SailingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.SailingSession, 0)
	for _, session := range r.sessions {
		if session.CreatedBy != userID {
			continue
		}
		if session.Date.Before(start) || session.Date.After(end) {
			continue
		}
		result = append(result, copySession(session))
	}
	sortByDateDesc(result)
	return result, nil
}

// GetWithSettings returns a session and its settings, which may be nil.
func (r *MockSessionRepository) GetWithSettings(sessionID string) (*models.SailingSession, *models.EquipmentSettings, error) {
	session, err := r.GetByID(sessionID)
	if err != nil || session == nil {
		return nil, nil, err
	}
	settings, err := r.GetSettingsBySession(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, settings, nil
}

// CreateSettings adds equipment settings for a session.
func (r *MockSessionRepository) CreateSettings(settings *models.EquipmentSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if settings.ID == "" {
		settings.ID = uuid.New().String()
	}
	r.settings[settings.SessionID] = *settings
	return nil
}

// GetSettingsBySession returns the settings for a session, or (nil, nil).
func (r *MockSessionRepository) GetSettingsBySession(sessionID string) (*models.EquipmentSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings, ok := r.settings[sessionID]
	if !ok {
		return nil, nil
	}
	return &settings, nil
}

func copySession(session models.SailingSession) models.SailingSession {
	session.EquipmentIDs = append([]string(nil), session.EquipmentIDs...)
	return session
}

func sortByDateDesc(sessions []models.SailingSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})
}
