package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"regatta/internal/models"
	"regatta/internal/repositories"
)

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	PublishEvent(event string, payload map[string]interface{}) error
}

// wearAlertThreshold is the accumulated-hours level at which equipment is
// flagged for replacement.
const wearAlertThreshold = 500.0

// PerformanceAnalytics aggregates a user's sessions.
type PerformanceAnalytics struct {
	TotalSessions           int                `json:"total_sessions"`
	TotalHours              float64            `json:"total_hours"`
	AveragePerformance      float64            `json:"average_performance"`
	PerformanceByConditions map[string]float64 `json:"performance_by_conditions"`
	SessionsByLocation      map[string]int     `json:"sessions_by_location"`
	EquipmentUsage          map[string]int     `json:"equipment_usage"`
}

// SessionService handles business logic for sailing sessions, their rig
// settings, and the wear bookkeeping on attached equipment.
type SessionService struct {
	sessionRepo   repositories.SessionRepository
	equipmentRepo repositories.EquipmentRepository
	events        EventPublisher // optional; nil disables event publication
}

// NewSessionService creates a new SessionService. The equipment repository is
// mandatory; events may be nil.
func NewSessionService(
	sessionRepo repositories.SessionRepository,
	equipmentRepo repositories.EquipmentRepository,
	events EventPublisher,
) *SessionService {
	return &SessionService{
		sessionRepo:   sessionRepo,
		equipmentRepo: equipmentRepo,
		events:        events,
	}
}

// Create validates and persists a new session for the user, charging the
// session's hours as wear against every attached equipment item in the same
// transaction.
func (s *SessionService) Create(userID string, session *models.SailingSession) (*models.SailingSession, error) {
	session.EquipmentIDs = dedupe(session.EquipmentIDs)
	if err := s.validateAttachments(userID, session.EquipmentIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session.ID = ""
	session.CreatedBy = userID
	session.CreatedAt = now
	session.UpdatedAt = now
	if err := session.Validate(); err != nil {
		return nil, err
	}

	wear := make([]repositories.WearDelta, 0, len(session.EquipmentIDs))
	for _, equipmentID := range session.EquipmentIDs {
		wear = append(wear, repositories.WearDelta{EquipmentID: equipmentID, Delta: session.HoursOnWater})
	}
	if err := s.sessionRepo.Create(session, wear); err != nil {
		return nil, err
	}
	s.publishWearAlerts(session.EquipmentIDs)

	s.publish("session.created", map[string]interface{}{
		"session_id": session.ID,
		"user_id":    session.CreatedBy,
		"location":   session.Location,
		"hours":      session.HoursOnWater,
	})
	return session, nil
}

// GetUserSessions returns the user's sessions with pagination.
func (s *SessionService) GetUserSessions(userID string, skip, limit int) ([]models.SailingSession, error) {
	return s.sessionRepo.GetByUser(userID, skip, limit)
}

// GetWithSettings returns a session and its rig settings (which may be nil).
// An absent session and one owned by another user are both reported as
// (nil, nil, nil).
func (s *SessionService) GetWithSettings(sessionID, userID string) (*models.SailingSession, *models.EquipmentSettings, error) {
	session, settings, err := s.sessionRepo.GetWithSettings(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil || session.CreatedBy != userID {
		return nil, nil, nil
	}
	return session, settings, nil
}

// GetSessionEquipment returns the equipment attached to a session. The
// returned slice is nil when the session is absent or not owned by the user,
// and empty (non-nil) when the session has no equipment attached.
func (s *SessionService) GetSessionEquipment(sessionID, userID string) ([]models.Equipment, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.CreatedBy != userID {
		return nil, nil
	}

	equipment := make([]models.Equipment, 0, len(session.EquipmentIDs))
	for _, equipmentID := range session.EquipmentIDs {
		item, err := s.equipmentRepo.GetByID(equipmentID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			equipment = append(equipment, *item)
		}
	}
	return equipment, nil
}

// Update applies a patch to an owned session. Equipment ids added by the
// patch get the same ownership/active checks as on create; retained ids are
// grandfathered so retiring gear never invalidates its past attachments.
// Wear is adjusted per item: removed items give back the old hours, added
// items are charged the new hours, and retained items absorb the difference.
// The session write and all wear adjustments commit as one transaction.
func (s *SessionService) Update(sessionID, userID string, patch models.SessionPatch) (*models.SailingSession, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.CreatedBy != userID {
		return nil, nil
	}

	oldHours := session.HoursOnWater
	oldSet := toSet(session.EquipmentIDs)

	if patch.EquipmentIDs != nil {
		deduped := dedupe(*patch.EquipmentIDs)
		patch.EquipmentIDs = &deduped

		added := make([]string, 0)
		for _, equipmentID := range deduped {
			if !oldSet[equipmentID] {
				added = append(added, equipmentID)
			}
		}
		if err := s.validateAttachments(userID, added); err != nil {
			return nil, err
		}
	}

	if err := session.Apply(patch); err != nil {
		return nil, err
	}

	newHours := session.HoursOnWater
	newSet := toSet(session.EquipmentIDs)

	wear := make([]repositories.WearDelta, 0)
	for equipmentID := range oldSet {
		if !newSet[equipmentID] {
			wear = append(wear, repositories.WearDelta{EquipmentID: equipmentID, Delta: -oldHours})
		}
	}
	for equipmentID := range newSet {
		switch {
		case !oldSet[equipmentID]:
			wear = append(wear, repositories.WearDelta{EquipmentID: equipmentID, Delta: newHours})
		case newHours != oldHours:
			wear = append(wear, repositories.WearDelta{EquipmentID: equipmentID, Delta: newHours - oldHours})
		}
	}
	wear, err = s.pruneMissing(wear)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(session, wear); err != nil {
		return nil, err
	}
	s.publishWearAlerts(session.EquipmentIDs)

	return session, nil
}

// Delete removes an owned session, giving its hours back to every attached
// equipment item and cascading to the session's rig settings. The delete and
// the wear reversals commit as one transaction, so a failed delete never
// loses wear.
func (s *SessionService) Delete(sessionID, userID string) (bool, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return false, err
	}
	if session == nil || session.CreatedBy != userID {
		return false, nil
	}

	wear := make([]repositories.WearDelta, 0, len(session.EquipmentIDs))
	for _, equipmentID := range session.EquipmentIDs {
		wear = append(wear, repositories.WearDelta{EquipmentID: equipmentID, Delta: -session.HoursOnWater})
	}
	wear, err = s.pruneMissing(wear)
	if err != nil {
		return false, err
	}

	deleted, err := s.sessionRepo.Delete(sessionID, wear)
	if err != nil {
		return false, err
	}
	if deleted {
		s.publish("session.deleted", map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		})
	}
	return deleted, nil
}

// CreateEquipmentSettings records the rig-tuning snapshot for an owned
// session. A session carries at most one snapshot; a second create fails.
func (s *SessionService) CreateEquipmentSettings(sessionID, userID string, settings *models.EquipmentSettings) (*models.EquipmentSettings, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.CreatedBy != userID {
		return nil, nil
	}

	existing, err := s.sessionRepo.GetSettingsBySession(sessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &models.ConflictError{Field: "session_id", Value: sessionID}
	}

	settings.ID = ""
	settings.SessionID = sessionID
	settings.CreatedAt = time.Now().UTC()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.CreateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// GetPerformanceAnalytics aggregates the user's sessions, optionally
// restricted to a date range when both bounds are given. Zero sessions yield
// a zero-valued record, never an error.
func (s *SessionService) GetPerformanceAnalytics(userID string, startDate, endDate *time.Time) (*PerformanceAnalytics, error) {
	var sessions []models.SailingSession
	var err error
	if startDate != nil && endDate != nil {
		sessions, err = s.sessionRepo.GetByDateRange(userID, *startDate, *endDate)
	} else {
		sessions, err = s.sessionRepo.GetByUser(userID, 0, 0)
	}
	if err != nil {
		return nil, err
	}

	analytics := &PerformanceAnalytics{
		PerformanceByConditions: make(map[string]float64),
		SessionsByLocation:      make(map[string]int),
		EquipmentUsage:          make(map[string]int),
	}
	if len(sessions) == 0 {
		return analytics, nil
	}

	totalHours := 0.0
	totalRating := 0
	ratingsByCondition := make(map[string][]int)
	equipmentNames := make(map[string]string) // id -> "name (type)"

	for _, session := range sessions {
		totalHours += session.HoursOnWater
		totalRating += session.PerformanceRating

		// Heavy takes precedence over light for sessions matching both.
		condition := "medium"
		if session.IsHeavyWeather() {
			condition = "heavy"
		} else if session.IsLightWeather() {
			condition = "light"
		}
		ratingsByCondition[condition] = append(ratingsByCondition[condition], session.PerformanceRating)

		analytics.SessionsByLocation[session.Location]++

		for _, equipmentID := range session.EquipmentIDs {
			label, ok := equipmentNames[equipmentID]
			if !ok {
				item, err := s.equipmentRepo.GetByID(equipmentID)
				if err != nil {
					return nil, err
				}
				if item == nil {
					continue
				}
				label = fmt.Sprintf("%s (%s)", item.Name, item.Type)
				equipmentNames[equipmentID] = label
			}
			analytics.EquipmentUsage[label]++
		}
	}

	analytics.TotalSessions = len(sessions)
	analytics.TotalHours = math.Round(totalHours*10) / 10
	analytics.AveragePerformance = math.Round(float64(totalRating)/float64(len(sessions))*100) / 100
	for condition, ratings := range ratingsByCondition {
		sum := 0
		for _, rating := range ratings {
			sum += rating
		}
		analytics.PerformanceByConditions[condition] = float64(sum) / float64(len(ratings))
	}
	return analytics, nil
}

// validateAttachments checks that every referenced equipment item exists, is
// owned by the user, and is in service. Absent and foreign-owned items share
// one message so an attacker cannot probe other users' inventories.
func (s *SessionService) validateAttachments(userID string, equipmentIDs []string) error {
	for _, equipmentID := range equipmentIDs {
		equipment, err := s.equipmentRepo.GetByID(equipmentID)
		if err != nil {
			return err
		}
		if equipment == nil || equipment.OwnerID != userID {
			return &models.InvalidEquipmentError{EquipmentID: equipmentID, Reason: "not found or not owned"}
		}
		if !equipment.Active {
			return &models.InvalidEquipmentError{
				EquipmentID: equipmentID,
				Reason:      fmt.Sprintf("equipment '%s' is retired", equipment.Name),
			}
		}
	}
	return nil
}

func (s *SessionService) publishWearAlerts(equipmentIDs []string) {
	for _, equipmentID := range equipmentIDs {
		equipment, err := s.equipmentRepo.GetByID(equipmentID)
		if err != nil || equipment == nil {
			continue
		}
		if equipment.NeedsReplacement(wearAlertThreshold) {
			s.publish("equipment.wear_alert", map[string]interface{}{
				"equipment_id": equipment.ID,
				"name":         equipment.Name,
				"wear_hours":   equipment.Wear,
			})
		}
	}
}

func (s *SessionService) publish(event string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}

// pruneMissing drops wear adjustments for equipment that no longer exists,
// so hard-deleted gear cannot block a session update or delete.
func (s *SessionService) pruneMissing(wear []repositories.WearDelta) ([]repositories.WearDelta, error) {
	kept := wear[:0]
	for _, delta := range wear {
		equipment, err := s.equipmentRepo.GetByID(delta.EquipmentID)
		if err != nil {
			return nil, err
		}
		if equipment != nil {
			kept = append(kept, delta)
		}
	}
	return kept, nil
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
