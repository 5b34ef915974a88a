package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"regatta/internal/models"
	"regatta/internal/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.SailingSession{},
		&models.Equipment{},
		&models.EquipmentSettings{},
		&repositories.SessionEquipment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func storedSession(owner string, hours float64, equipmentIDs ...string) *models.SailingSession {
	return &models.SailingSession{
		Date:              time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		Location:          "Kiel",
		WindSpeedMin:      10,
		WindSpeedMax:      16,
		WaveType:          models.WaveChoppy,
		WaveDirection:     "NW",
		HoursOnWater:      hours,
		PerformanceRating: 4,
		CreatedBy:         owner,
		EquipmentIDs:      equipmentIDs,
	}
}

func TestGORMSessionRepository_CreateAppliesWearInSameTransaction(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	equipmentRepo := repositories.NewGORMEquipmentRepository(db)

	sail := &models.Equipment{Name: "Race Main", Type: models.EquipmentMainsail, OwnerID: "user-1", Active: true, Wear: 10}
	assert.NoError(t, equipmentRepo.Create(sail))

	session := storedSession("user-1", 2, sail.ID)
	err := sessionRepo.Create(session, []repositories.WearDelta{{EquipmentID: sail.ID, Delta: 2}})
	assert.NoError(t, err)

	stored, err := equipmentRepo.GetByID(sail.ID)
	assert.NoError(t, err)
	assert.InDelta(t, 12.0, stored.Wear, 1e-9)

	loaded, err := sessionRepo.GetByID(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{sail.ID}, loaded.EquipmentIDs)
}

func TestGORMSessionRepository_CreateRollsBackOnWearFailure(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	equipmentRepo := repositories.NewGORMEquipmentRepository(db)

	sail := &models.Equipment{Name: "Race Main", Type: models.EquipmentMainsail, OwnerID: "user-1", Active: true, Wear: 10}
	assert.NoError(t, equipmentRepo.Create(sail))

	// The second delta hits no row, so the whole create must roll back:
	// no session, and the first delta undone with it.
	session := storedSession("user-1", 2, sail.ID)
	err := sessionRepo.Create(session, []repositories.WearDelta{
		{EquipmentID: sail.ID, Delta: 2},
		{EquipmentID: "no-such-id", Delta: 2},
	})
	assert.Error(t, err)

	loaded, err := sessionRepo.GetByID(session.ID)
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	stored, err := equipmentRepo.GetByID(sail.ID)
	assert.NoError(t, err)
	assert.InDelta(t, 10.0, stored.Wear, 1e-9)
}

func TestGORMSessionRepository_UpdateRollsBackOnWearFailure(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	equipmentRepo := repositories.NewGORMEquipmentRepository(db)

	sail := &models.Equipment{Name: "Race Main", Type: models.EquipmentMainsail, OwnerID: "user-1", Active: true, Wear: 0}
	assert.NoError(t, equipmentRepo.Create(sail))

	session := storedSession("user-1", 2, sail.ID)
	err := sessionRepo.Create(session, []repositories.WearDelta{{EquipmentID: sail.ID, Delta: 2}})
	assert.NoError(t, err)

	changed := *session
	changed.HoursOnWater = 5
	changed.EquipmentIDs = append([]string(nil), session.EquipmentIDs...)
	err = sessionRepo.Update(&changed, []repositories.WearDelta{
		{EquipmentID: sail.ID, Delta: 3},
		{EquipmentID: "no-such-id", Delta: 5},
	})
	assert.Error(t, err)

	// Neither the field change nor the partial wear adjustment survived
	loaded, err := sessionRepo.GetByID(session.ID)
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, loaded.HoursOnWater, 1e-9)
	stored, err := equipmentRepo.GetByID(sail.ID)
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, stored.Wear, 1e-9)
}

func TestGORMSessionRepository_DeleteRollsBackOnWearFailure(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	equipmentRepo := repositories.NewGORMEquipmentRepository(db)

	sail := &models.Equipment{Name: "Race Main", Type: models.EquipmentMainsail, OwnerID: "user-1", Active: true, Wear: 0}
	assert.NoError(t, equipmentRepo.Create(sail))

	session := storedSession("user-1", 3, sail.ID)
	err := sessionRepo.Create(session, []repositories.WearDelta{{EquipmentID: sail.ID, Delta: 3}})
	assert.NoError(t, err)

	deleted, err := sessionRepo.Delete(session.ID, []repositories.WearDelta{
		{EquipmentID: sail.ID, Delta: -3},
		{EquipmentID: "no-such-id", Delta: -3},
	})
	assert.Error(t, err)
	assert.False(t, deleted)

	// Failed delete keeps both the session and its wear
	loaded, err := sessionRepo.GetByID(session.ID)
	assert.NoError(t, err)
	assert.NotNil(t, loaded)
	stored, err := equipmentRepo.GetByID(sail.ID)
	assert.NoError(t, err)
	assert.InDelta(t, 3.0, stored.Wear, 1e-9)

	deleted, err = sessionRepo.Delete(session.ID, []repositories.WearDelta{{EquipmentID: sail.ID, Delta: -3}})
	assert.NoError(t, err)
	assert.True(t, deleted)
	stored, err = equipmentRepo.GetByID(sail.ID)
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, stored.Wear, 1e-9)
}

func TestMockSessionRepository_WearIsAllOrNothing(t *testing.T) {
	equipmentRepo := repositories.NewMockEquipmentRepository()
	sessionRepo := repositories.NewMockSessionRepository(equipmentRepo)

	sail := &models.Equipment{Name: "Race Main", Type: models.EquipmentMainsail, OwnerID: "user-1", Active: true, Wear: 10}
	assert.NoError(t, equipmentRepo.Create(sail))

	session := storedSession("user-1", 2, sail.ID)
	err := sessionRepo.Create(session, []repositories.WearDelta{
		{EquipmentID: sail.ID, Delta: 2},
		{EquipmentID: "no-such-id", Delta: 2},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	loaded, err := sessionRepo.GetByID(session.ID)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
	stored, _ := equipmentRepo.GetByID(sail.ID)
	assert.InDelta(t, 10.0, stored.Wear, 1e-9)
}
