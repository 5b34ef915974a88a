package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"regatta/internal/models"
	"regatta/internal/repositories"
	"regatta/internal/services"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	events []string
}

func (p *capturePublisher) PublishEvent(event string, payload map[string]interface{}) error {
	p.events = append(p.events, event)
	return nil
}

func newSessionService() (*services.SessionService, *repositories.MockSessionRepository, *repositories.MockEquipmentRepository, *capturePublisher) {
	equipmentRepo := repositories.NewMockEquipmentRepository()
	sessionRepo := repositories.NewMockSessionRepository(equipmentRepo)
	events := &capturePublisher{}
	return services.NewSessionService(sessionRepo, equipmentRepo, events), sessionRepo, equipmentRepo, events
}

func seedEquipment(t *testing.T, repo *repositories.MockEquipmentRepository, owner, name string, wear float64, active bool) *models.Equipment {
	t.Helper()
	equipment := &models.Equipment{
		Name:    name,
		Type:    models.EquipmentMainsail,
		OwnerID: owner,
		Active:  active,
		Wear:    wear,
	}
	assert.NoError(t, repo.Create(equipment))
	return equipment
}

func newSession(owner string, hours float64, equipmentIDs ...string) *models.SailingSession {
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

func TestSessionService_Create_ChargesWear(t *testing.T) {
	svc, _, equipmentRepo, events := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 100, true)
	mast := seedEquipment(t, equipmentRepo, "user-1", "Spare Mast", 0, true)

	created, err := svc.Create("user-1", newSession("user-1", 2.5, sail.ID, mast.ID))
	assert.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	stored, _ := equipmentRepo.GetByID(sail.ID)
	assert.InDelta(t, 102.5, stored.Wear, 1e-9)
	stored, _ = equipmentRepo.GetByID(mast.ID)
	assert.InDelta(t, 2.5, stored.Wear, 1e-9)
	assert.Contains(t, events.events, "session.created")
}

func TestSessionService_Create_DeduplicatesEquipmentIDs(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 0, true)

	created, err := svc.Create("user-1", newSession("user-1", 2, sail.ID, sail.ID, sail.ID))
	assert.NoError(t, err)
	assert.Equal(t, []string{sail.ID}, created.EquipmentIDs)

	// One attachment, one charge
	stored, _ := equipmentRepo.GetByID(sail.ID)
	assert.InDelta(t, 2.0, stored.Wear, 1e-9)
}

func TestSessionService_Update_DeduplicatesEquipmentIDs(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 0, true)
	created, err := svc.Create("user-1", newSession("user-1", 2))
	assert.NoError(t, err)

	newIDs := []string{sail.ID, sail.ID}
	updated, err := svc.Update(created.ID, "user-1", models.SessionPatch{EquipmentIDs: &newIDs})
	assert.NoError(t, err)
	assert.Equal(t, []string{sail.ID}, updated.EquipmentIDs)

	stored, _ := equipmentRepo.GetByID(sail.ID)
	assert.InDelta(t, 2.0, stored.Wear, 1e-9)
}

func TestSessionService_Create_RejectsInvalidAttachments(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	foreign := seedEquipment(t, equipmentRepo, "user-2", "Their Jib", 0, true)
	retired := seedEquipment(t, equipmentRepo, "user-1", "Old Main", 300, false)

	var invalid *models.InvalidEquipmentError

	_, err := svc.Create("user-1", newSession("user-1", 2, foreign.ID))
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, foreign.ID, invalid.EquipmentID)
	assert.Contains(t, invalid.Reason, "not found or not owned")

	_, err = svc.Create("user-1", newSession("user-1", 2, "no-such-id"))
	assert.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "not found or not owned")

	_, err = svc.Create("user-1", newSession("user-1", 2, retired.ID))
	assert.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "retired")

	// Nothing was charged on the failed creates
	stored, _ := equipmentRepo.GetByID(retired.ID)
	assert.InDelta(t, 300, stored.Wear, 1e-9)
}

func TestSessionService_Create_WearAlert(t *testing.T) {
	svc, _, equipmentRepo, events := newSessionService()

	worn := seedEquipment(t, equipmentRepo, "user-1", "Tired Main", 499, true)

	_, err := svc.Create("user-1", newSession("user-1", 3, worn.ID))
	assert.NoError(t, err)
	assert.Contains(t, events.events, "equipment.wear_alert")
}

func TestSessionService_Update_WearAlgebra(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	removed := seedEquipment(t, equipmentRepo, "user-1", "Removed", 50, true)
	retained := seedEquipment(t, equipmentRepo, "user-1", "Retained", 50, true)
	added := seedEquipment(t, equipmentRepo, "user-1", "Added", 50, true)

	created, err := svc.Create("user-1", newSession("user-1", 2, removed.ID, retained.ID))
	assert.NoError(t, err)

	newHours := 5.0
	newIDs := []string{retained.ID, added.ID}
	updated, err := svc.Update(created.ID, "user-1", models.SessionPatch{
		HoursOnWater: &newHours,
		EquipmentIDs: &newIDs,
	})
	assert.NoError(t, err)
	assert.InDelta(t, 5.0, updated.HoursOnWater, 1e-9)

	// removed gives back the old 2h, retained absorbs +3h, added is charged 5h
	stored, _ := equipmentRepo.GetByID(removed.ID)
	assert.InDelta(t, 50, stored.Wear, 1e-9)
	stored, _ = equipmentRepo.GetByID(retained.ID)
	assert.InDelta(t, 55, stored.Wear, 1e-9)
	stored, _ = equipmentRepo.GetByID(added.ID)
	assert.InDelta(t, 55, stored.Wear, 1e-9)
}

func TestSessionService_Update_RetainedRetiredEquipmentGrandfathered(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 0, true)
	created, err := svc.Create("user-1", newSession("user-1", 2, sail.ID))
	assert.NoError(t, err)

	// Retiring the sail must not block updates that keep it attached
	_, err = equipmentRepo.Retire(sail.ID)
	assert.NoError(t, err)

	rating := 5
	updated, err := svc.Update(created.ID, "user-1", models.SessionPatch{PerformanceRating: &rating})
	assert.NoError(t, err)
	assert.Equal(t, 5, updated.PerformanceRating)

	// But attaching it to a fresh set is rejected
	newIDs := []string{sail.ID}
	fresh, err := svc.Create("user-1", newSession("user-1", 1, newIDs...))
	assert.Nil(t, fresh)
	var invalid *models.InvalidEquipmentError
	assert.ErrorAs(t, err, &invalid)
}

func TestSessionService_Update_OwnershipAndValidation(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 0, true)
	created, err := svc.Create("user-1", newSession("user-1", 2, sail.ID))
	assert.NoError(t, err)

	// Foreign user sees nothing
	rating := 5
	updated, err := svc.Update(created.ID, "user-2", models.SessionPatch{PerformanceRating: &rating})
	assert.NoError(t, err)
	assert.Nil(t, updated)

	// Invalid patch leaves session and wear untouched
	badHours := 20.0
	_, err = svc.Update(created.ID, "user-1", models.SessionPatch{HoursOnWater: &badHours})
	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "hours_on_water", validation.Field)

	session, _, err := svc.GetWithSettings(created.ID, "user-1")
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, session.HoursOnWater, 1e-9)
	stored, _ := equipmentRepo.GetByID(sail.ID)
	assert.InDelta(t, 2.0, stored.Wear, 1e-9)
}

func TestSessionService_Delete_ReversesWear(t *testing.T) {
	svc, _, equipmentRepo, events := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 1, true)
	created, err := svc.Create("user-1", newSession("user-1", 3, sail.ID))
	assert.NoError(t, err)

	deleted, err := svc.Delete(created.ID, "user-1")
	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.Contains(t, events.events, "session.deleted")

	// 1 + 3 - 3 = 1; a pre-existing balance survives the reversal
	stored, _ := equipmentRepo.GetByID(sail.ID)
	assert.InDelta(t, 1.0, stored.Wear, 1e-9)

	deleted, err = svc.Delete(created.ID, "user-1")
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestSessionService_Delete_WearFlooredAtZero(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 0, true)
	created, err := svc.Create("user-1", newSession("user-1", 4, sail.ID))
	assert.NoError(t, err)

	// Wear dropped out of band, e.g. after a manual correction
	assert.NoError(t, equipmentRepo.AddWear(sail.ID, -3))

	deleted, err := svc.Delete(created.ID, "user-1")
	assert.NoError(t, err)
	assert.True(t, deleted)

	stored, _ := equipmentRepo.GetByID(sail.ID)
	assert.InDelta(t, 0.0, stored.Wear, 1e-9)
}

func TestSessionService_Delete_ToleratesDeletedEquipment(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 0, true)
	created, err := svc.Create("user-1", newSession("user-1", 2, sail.ID))
	assert.NoError(t, err)

	// Hard-deleting attached gear must not make the session undeletable
	ok, err := equipmentRepo.Delete(sail.ID)
	assert.NoError(t, err)
	assert.True(t, ok)

	deleted, err := svc.Delete(created.ID, "user-1")
	assert.NoError(t, err)
	assert.True(t, deleted)
}

func TestSessionService_EquipmentSettings(t *testing.T) {
	svc, _, _, _ := newSessionService()

	created, err := svc.Create("user-1", newSession("user-1", 2))
	assert.NoError(t, err)

	settings := &models.EquipmentSettings{
		ForestayTension:   6,
		ShroudTension:     5,
		MainTension:       5,
		MastRake:          22,
		JibHalyardTension: models.TensionMedium,
		Cunningham:        4,
		Outhaul:           5,
		Vang:              6,
	}
	saved, err := svc.CreateEquipmentSettings(created.ID, "user-1", settings)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, saved.SessionID)
	assert.NotEmpty(t, saved.ID)

	// One snapshot per session
	_, err = svc.CreateEquipmentSettings(created.ID, "user-1", &models.EquipmentSettings{
		JibHalyardTension: models.TensionLoose,
		MastRake:          20,
	})
	var conflict *models.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, "session_id", conflict.Field)

	// Foreign user cannot even see the session
	saved, err = svc.CreateEquipmentSettings(created.ID, "user-2", &models.EquipmentSettings{
		JibHalyardTension: models.TensionLoose,
		MastRake:          20,
	})
	assert.NoError(t, err)
	assert.Nil(t, saved)

	session, got, err := svc.GetWithSettings(created.ID, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, session.ID)
	assert.InDelta(t, 22.0, got.MastRake, 1e-9)
}

func TestSessionService_GetSessionEquipment(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 0, true)
	withGear, err := svc.Create("user-1", newSession("user-1", 2, sail.ID))
	assert.NoError(t, err)
	bare, err := svc.Create("user-1", newSession("user-1", 2))
	assert.NoError(t, err)

	equipment, err := svc.GetSessionEquipment(withGear.ID, "user-1")
	assert.NoError(t, err)
	assert.Len(t, equipment, 1)
	assert.Equal(t, "Race Main", equipment[0].Name)

	equipment, err = svc.GetSessionEquipment(bare.ID, "user-1")
	assert.NoError(t, err)
	assert.NotNil(t, equipment)
	assert.Empty(t, equipment)

	equipment, err = svc.GetSessionEquipment(withGear.ID, "user-2")
	assert.NoError(t, err)
	assert.Nil(t, equipment)
}

func TestSessionService_GetPerformanceAnalytics(t *testing.T) {
	svc, _, equipmentRepo, _ := newSessionService()

	sail := seedEquipment(t, equipmentRepo, "user-1", "Race Main", 0, true)

	heavy := newSession("user-1", 2, sail.ID)
	heavy.WindSpeedMin, heavy.WindSpeedMax = 20, 25
	heavy.WaveType = models.WaveLarge
	heavy.PerformanceRating = 3
	heavy.Location = "Kiel"

	light := newSession("user-1", 3, sail.ID)
	light.WindSpeedMin, light.WindSpeedMax = 5, 8
	light.WaveType = models.WaveFlat
	light.PerformanceRating = 5
	light.Location = "Garda"

	medium := newSession("user-1", 4)
	medium.WindSpeedMin, medium.WindSpeedMax = 12, 15
	medium.WaveType = models.WaveChoppy
	medium.PerformanceRating = 4
	medium.Location = "Kiel"

	for _, session := range []*models.SailingSession{heavy, light, medium} {
		_, err := svc.Create("user-1", session)
		assert.NoError(t, err)
	}

	analytics, err := svc.GetPerformanceAnalytics("user-1", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, analytics.TotalSessions)
	assert.InDelta(t, 9.0, analytics.TotalHours, 1e-9)
	assert.InDelta(t, 4.0, analytics.AveragePerformance, 1e-9)
	assert.InDelta(t, 3.0, analytics.PerformanceByConditions["heavy"], 1e-9)
	assert.InDelta(t, 5.0, analytics.PerformanceByConditions["light"], 1e-9)
	assert.InDelta(t, 4.0, analytics.PerformanceByConditions["medium"], 1e-9)
	assert.Equal(t, map[string]int{"Kiel": 2, "Garda": 1}, analytics.SessionsByLocation)
	assert.Equal(t, map[string]int{"Race Main (Mainsail)": 2}, analytics.EquipmentUsage)
}

func TestSessionService_GetPerformanceAnalytics_DateRangeAndEmpty(t *testing.T) {
	svc, _, _, _ := newSessionService()

	inRange := newSession("user-1", 2)
	inRange.Date = time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	outOfRange := newSession("user-1", 3)
	outOfRange.Date = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	for _, session := range []*models.SailingSession{inRange, outOfRange} {
		_, err := svc.Create("user-1", session)
		assert.NoError(t, err)
	}

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	analytics, err := svc.GetPerformanceAnalytics("user-1", &start, &end)
	assert.NoError(t, err)
	assert.Equal(t, 1, analytics.TotalSessions)
	assert.InDelta(t, 2.0, analytics.TotalHours, 1e-9)

	// No sessions at all yields a zero record, never an error
	analytics, err = svc.GetPerformanceAnalytics("user-without-sessions", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, analytics.TotalSessions)
	assert.InDelta(t, 0.0, analytics.TotalHours, 1e-9)
	assert.InDelta(t, 0.0, analytics.AveragePerformance, 1e-9)
	assert.NotNil(t, analytics.PerformanceByConditions)
	assert.NotNil(t, analytics.SessionsByLocation)
	assert.NotNil(t, analytics.EquipmentUsage)
	assert.Empty(t, analytics.PerformanceByConditions)
}

func TestSessionService_GetUserSessions_Pagination(t *testing.T) {
	svc, _, _, _ := newSessionService()

	for day := 1; day <= 5; day++ {
		session := newSession("user-1", 1)
		session.Date = time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC)
		_, err := svc.Create("user-1", session)
		assert.NoError(t, err)
	}

	sessions, err := svc.GetUserSessions("user-1", 0, 2)
	assert.NoError(t, err)
	assert.Len(t, sessions, 2)
	// Most recent outing first
	assert.Equal(t, 5, sessions[0].Date.Day())
	assert.Equal(t, 4, sessions[1].Date.Day())

	sessions, err = svc.GetUserSessions("user-1", 4, 10)
	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].Date.Day())
}
