package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"regatta/internal/models"
)

// SessionEquipment is the join row linking a session to a piece of equipment
// used during it.
type SessionEquipment struct {
	SessionID   string `gorm:"primaryKey;type:varchar(36)"`
	EquipmentID string `gorm:"primaryKey;type:varchar(36)"`
}

// GORMSessionRepository is a GORM implementation of SessionRepository.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new instance of GORMSessionRepository.
func NewGORMSessionRepository(db *gorm.DB) *GORMSessionRepository {
	return &GORMSessionRepository{db: db}
}

// Create inserts a session, its equipment join rows, and the wear deltas in
// one transaction. A failed wear write rolls the session back.
func (r *GORMSessionRepository) Create(session *models.SailingSession, wear []WearDelta) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		if err := replaceEquipmentLinks(tx, session.ID, session.EquipmentIDs); err != nil {
			return err
		}
		return applyWearDeltas(tx, wear)
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by id, or (nil, nil) when absent.
func (r *GORMSessionRepository) GetByID(id string) (*models.SailingSession, error) {
	var session models.SailingSession
	if err := r.db.First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if err := r.loadEquipmentIDs(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Update persists the session fields, replaces its equipment links, and
// applies the wear deltas, all in one transaction.
func (r *GORMSessionRepository) Update(session *models.SailingSession, wear []WearDelta) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SailingSession{}).Where("id = ?", session.ID).
			Select("Date", "Location", "WindSpeedMin", "WindSpeedMax", "WaveType",
				"WaveDirection", "HoursOnWater", "PerformanceRating", "Notes", "UpdatedAt").
			Updates(session)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		if err := tx.Where("session_id = ?", session.ID).Delete(&SessionEquipment{}).Error; err != nil {
			return err
		}
		if err := replaceEquipmentLinks(tx, session.ID, session.EquipmentIDs); err != nil {
			return err
		}
		return applyWearDeltas(tx, wear)
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Delete removes a session together with its equipment links and settings
// and applies the wear reversals in the same transaction, so a failed delete
// never loses wear.
func (r *GORMSessionRepository) Delete(id string, wear []WearDelta) (bool, error) {
	deleted := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.SailingSession{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if err := tx.Where("session_id = ?", id).Delete(&SessionEquipment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&models.EquipmentSettings{}).Error; err != nil {
			return err
		}
		return applyWearDeltas(tx, wear)
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return deleted, nil
}

// ListAll returns sessions with pagination, most recent outing first. A
// limit of zero or less disables the cap.
func (r *GORMSessionRepository) ListAll(skip, limit int) ([]models.SailingSession, error) {
	if limit <= 0 {
		limit = -1
	}
	var sessions []models.SailingSession
	if err := r.db.Offset(skip).Limit(limit).Order("date DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if err := r.loadEquipmentIDsAll(sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetByUser returns one user's sessions with pagination. A limit of zero or
// less disables the cap.
func (r *GORMSessionRepository) GetByUser(userID string, skip, limit int) ([]models.SailingSession, error) {
	if limit <= 0 {
		limit = -1
	}
	var sessions []models.SailingSession
	err := r.db.Where("created_by = ?", userID).
		Offset(skip).Limit(limit).Order("date DESC").Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions for user %s: %w", userID, err)
	}
	if err := r.loadEquipmentIDsAll(sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetByDateRange returns one user's sessions within [start, end].
func (r *GORMSessionRepository) GetByDateRange(userID string, start, end time.Time) ([]models.SailingSession, error) {
	var sessions []models.SailingSession
	err := r.db.Where("created_by = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date DESC").Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by date range: %w", err)
	}
	if err := r.loadEquipmentIDsAll(sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetWithSettings returns a session and its settings, which may be nil.
func (r *GORMSessionRepository) GetWithSettings(sessionID string) (*models.SailingSession, *models.EquipmentSettings, error) {
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

// CreateSettings inserts equipment settings for a session.
func (r *GORMSessionRepository) CreateSettings(settings *models.EquipmentSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.New().String()
	}
	if err := r.db.Create(settings).Error; err != nil {
		return fmt.Errorf("failed to create equipment settings: %w", err)
	}
	return nil
}

// GetSettingsBySession retrieves the settings for a session, or (nil, nil).
func (r *GORMSessionRepository) GetSettingsBySession(sessionID string) (*models.EquipmentSettings, error) {
	var settings models.EquipmentSettings
	if err := r.db.First(&settings, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get equipment settings: %w", err)
	}
	return &settings, nil
}

func (r *GORMSessionRepository) loadEquipmentIDs(session *models.SailingSession) error {
	var links []SessionEquipment
	if err := r.db.Where("session_id = ?", session.ID).Find(&links).Error; err != nil {
		return fmt.Errorf("failed to load session equipment: %w", err)
	}
	session.EquipmentIDs = make([]string, 0, len(links))
	for _, link := range links {
		session.EquipmentIDs = append(session.EquipmentIDs, link.EquipmentID)
	}
	return nil
}

func (r *GORMSessionRepository) loadEquipmentIDsAll(sessions []models.SailingSession) error {
	for i := range sessions {
		if err := r.loadEquipmentIDs(&sessions[i]); err != nil {
			return err
		}
	}
	return nil
}

func applyWearDeltas(tx *gorm.DB, wear []WearDelta) error {
	for _, delta := range wear {
		if err := addWear(tx, delta.EquipmentID, delta.Delta); err != nil {
			return err
		}
	}
	return nil
}

func replaceEquipmentLinks(tx *gorm.DB, sessionID string, equipmentIDs []string) error {
	for _, equipmentID := range equipmentIDs {
		link := SessionEquipment{SessionID: sessionID, EquipmentID: equipmentID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}
