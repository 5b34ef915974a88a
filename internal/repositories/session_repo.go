package repositories

import (
	"time"

	"regatta/internal/models"
)

// WearDelta is an equipment wear adjustment that must commit together with
// the session mutation that caused it.
type WearDelta struct {
	EquipmentID string
	Delta       float64
}

// SessionRepository defines the interface for sailing session data access.
// Lookup methods return (nil, nil) when no row matches.
//
// Create, Update, and Delete apply the given wear deltas in the same
// transaction as the session write: either both commit or neither does.
type SessionRepository interface {
	Create(session *models.SailingSession, wear []WearDelta) error
	GetByID(id string) (*models.SailingSession, error)
	Update(session *models.SailingSession, wear []WearDelta) error
	Delete(id string, wear []WearDelta) (bool, error)
	ListAll(skip, limit int) ([]models.SailingSession, error)
	GetByUser(userID string, skip, limit int) ([]models.SailingSession, error)
	GetByDateRange(userID string, start, end time.Time) ([]models.SailingSession, error)

	// Equipment settings, one-to-one with a session.
	GetWithSettings(sessionID string) (*models.SailingSession, *models.EquipmentSettings, error)
	CreateSettings(settings *models.EquipmentSettings) error
	GetSettingsBySession(sessionID string) (*models.EquipmentSettings, error)
}
