package models

import "time"

// WaveType classifies the sea state during a session.
type WaveType string

const (
	WaveFlat   WaveType = "Flat"
	WaveChoppy WaveType = "Choppy"
	WaveMedium WaveType = "Medium"
	WaveLarge  WaveType = "Large"
)

// Valid reports whether the wave type is one of the known values.
func (w WaveType) Valid() bool {
	switch w {
	case WaveFlat, WaveChoppy, WaveMedium, WaveLarge:
		return true
	}
	return false
}

// SailingSession records one outing on the water.
type SailingSession struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Date              time.Time `json:"date"`
	Location          string    `json:"location" gorm:"type:varchar(255)"`
	WindSpeedMin      float64   `json:"wind_speed_min"`
	WindSpeedMax      float64   `json:"wind_speed_max"`
	WaveType          WaveType  `json:"wave_type" gorm:"type:varchar(20)"`
	WaveDirection     string    `json:"wave_direction" gorm:"type:varchar(50)"`
	HoursOnWater      float64   `json:"hours_on_water"`
	PerformanceRating int       `json:"performance_rating"`
	Notes             string    `json:"notes,omitempty"`
	CreatedBy         string    `json:"created_by" gorm:"index;type:varchar(36)"`
	EquipmentIDs      []string  `json:"equipment_ids" gorm:"-"` // Persisted via a join table
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SessionPatch lists the mutable session fields. Protected attributes
// (id, created_by, created_at) are deliberately not representable here.
type SessionPatch struct {
	Date              *time.Time
	Location          *string
	WindSpeedMin      *float64
	WindSpeedMax      *float64
	WaveType          *WaveType
	WaveDirection     *string
	HoursOnWater      *float64
	PerformanceRating *int
	Notes             *string
	EquipmentIDs      *[]string
}

// Validate checks every field invariant and returns the first violation.
func (s *SailingSession) Validate() error {
	if s.WindSpeedMin < 0 {
		return &ValidationError{Field: "wind_speed_min", Constraint: "cannot be negative"}
	}
	if s.WindSpeedMax < 0 {
		return &ValidationError{Field: "wind_speed_max", Constraint: "cannot be negative"}
	}
	if s.WindSpeedMin > s.WindSpeedMax {
		return &ValidationError{Field: "wind_speed_min", Constraint: "cannot exceed maximum wind speed"}
	}
	// Safety limit for dinghy sailing
	if s.WindSpeedMax > 60 {
		return &ValidationError{Field: "wind_speed_max", Constraint: "exceeds safe sailing conditions"}
	}
	if len(s.Location) < 1 || len(s.Location) > 255 {
		return &ValidationError{Field: "location", Constraint: "must be between 1 and 255 characters"}
	}
	if !s.WaveType.Valid() {
		return &ValidationError{Field: "wave_type", Constraint: "must be one of: Flat, Choppy, Medium, Large"}
	}
	if len(s.WaveDirection) < 1 || len(s.WaveDirection) > 50 {
		return &ValidationError{Field: "wave_direction", Constraint: "must be between 1 and 50 characters"}
	}
	if s.HoursOnWater <= 0 {
		return &ValidationError{Field: "hours_on_water", Constraint: "must be positive"}
	}
	if s.HoursOnWater > 12 {
		return &ValidationError{Field: "hours_on_water", Constraint: "exceeds reasonable daily limit"}
	}
	if s.PerformanceRating < 1 || s.PerformanceRating > 5 {
		return &ValidationError{Field: "performance_rating", Constraint: "must be between 1 and 5"}
	}
	return nil
}

// Apply merges the patch into the session and re-runs full validation.
// On failure every changed field is restored before the error is returned,
// so the session never remains in a partially-updated state.
func (s *SailingSession) Apply(patch SessionPatch) error {
	snapshot := *s
	snapshot.EquipmentIDs = append([]string(nil), s.EquipmentIDs...)

	if patch.Date != nil {
		s.Date = *patch.Date
	}
	if patch.Location != nil {
		s.Location = *patch.Location
	}
	if patch.WindSpeedMin != nil {
		s.WindSpeedMin = *patch.WindSpeedMin
	}
	if patch.WindSpeedMax != nil {
		s.WindSpeedMax = *patch.WindSpeedMax
	}
	if patch.WaveType != nil {
		s.WaveType = *patch.WaveType
	}
	if patch.WaveDirection != nil {
		s.WaveDirection = *patch.WaveDirection
	}
	if patch.HoursOnWater != nil {
		s.HoursOnWater = *patch.HoursOnWater
	}
	if patch.PerformanceRating != nil {
		s.PerformanceRating = *patch.PerformanceRating
	}
	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}
	if patch.EquipmentIDs != nil {
		s.EquipmentIDs = append([]string(nil), (*patch.EquipmentIDs)...)
	}

	if err := s.Validate(); err != nil {
		*s = snapshot
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// AverageWindSpeed is the midpoint of the recorded wind range.
func (s *SailingSession) AverageWindSpeed() float64 {
	return (s.WindSpeedMin + s.WindSpeedMax) / 2
}

// WindRange is the spread of the recorded wind range.
func (s *SailingSession) WindRange() float64 {
	return s.WindSpeedMax - s.WindSpeedMin
}

// IsHeavyWeather reports whether the session was sailed in heavy conditions.
func (s *SailingSession) IsHeavyWeather() bool {
	return s.AverageWindSpeed() > 20 || s.WaveType == WaveMedium || s.WaveType == WaveLarge
}

// IsLightWeather reports whether the session was sailed in light conditions.
func (s *SailingSession) IsLightWeather() bool {
	return s.AverageWindSpeed() < 8 && (s.WaveType == WaveFlat || s.WaveType == WaveChoppy)
}
