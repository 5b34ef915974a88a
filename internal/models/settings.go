package models

import "time"

// TensionLevel is a coarse halyard tension setting.
type TensionLevel string

const (
	TensionLoose  TensionLevel = "Loose"
	TensionMedium TensionLevel = "Medium"
	TensionTight  TensionLevel = "Tight"
)

// Valid reports whether the tension level is one of the known values.
func (t TensionLevel) Valid() bool {
	switch t {
	case TensionLoose, TensionMedium, TensionTight:
		return true
	}
	return false
}

// EquipmentSettings is a rig-tuning snapshot tied to exactly one session.
type EquipmentSettings struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID string `json:"session_id" gorm:"uniqueIndex;type:varchar(36)"`

	// Rig tensions, 0-10 scale unless noted
	ForestayTension float64 `json:"forestay_tension"`
	ShroudTension   float64 `json:"shroud_tension"`
	MainTension     float64 `json:"main_tension"`
	CapTension      float64 `json:"cap_tension"`
	LowersScale     float64 `json:"lowers_scale"`
	MainsScale      float64 `json:"mains_scale"`
	MastRake        float64 `json:"mast_rake"` // degrees
	CapHole         float64 `json:"cap_hole"`  // hole number or measurement
	PreBend         float64 `json:"pre_bend"`  // mm

	// Sail controls
	JibHalyardTension TensionLevel `json:"jib_halyard_tension" gorm:"type:varchar(10)"`
	Cunningham        float64      `json:"cunningham"`
	Outhaul           float64      `json:"outhaul"`
	Vang              float64      `json:"vang"`

	CreatedAt time.Time `json:"created_at"`
}

// Validate checks every field invariant and returns the first violation.
func (s *EquipmentSettings) Validate() error {
	scaled := []struct {
		field string
		value float64
	}{
		{"forestay_tension", s.ForestayTension},
		{"shroud_tension", s.ShroudTension},
		{"main_tension", s.MainTension},
		{"cap_tension", s.CapTension},
		{"lowers_scale", s.LowersScale},
		{"mains_scale", s.MainsScale},
		{"cunningham", s.Cunningham},
		{"outhaul", s.Outhaul},
		{"vang", s.Vang},
	}
	for _, f := range scaled {
		if f.value < 0 || f.value > 10 {
			return &ValidationError{Field: f.field, Constraint: "must be between 0 and 10"}
		}
	}
	if s.CapHole < 0 {
		return &ValidationError{Field: "cap_hole", Constraint: "cannot be negative"}
	}
	if s.PreBend < -50 || s.PreBend > 200 {
		return &ValidationError{Field: "pre_bend", Constraint: "must be between -50 and 200 mm"}
	}
	// Reasonable rake range for a 49er rig
	if s.MastRake < -5 || s.MastRake > 30 {
		return &ValidationError{Field: "mast_rake", Constraint: "must be between -5 and 30 degrees"}
	}
	if !s.JibHalyardTension.Valid() {
		return &ValidationError{Field: "jib_halyard_tension", Constraint: "must be one of: Loose, Medium, Tight"}
	}
	return nil
}

// IsHeavyWeatherSetup reports whether the rig is tuned for heavy weather.
func (s *EquipmentSettings) IsHeavyWeatherSetup() bool {
	return s.ForestayTension > 7 && s.Cunningham > 6 && s.Vang > 7 && s.MainTension > 6
}

// IsLightWeatherSetup reports whether the rig is tuned for light weather.
func (s *EquipmentSettings) IsLightWeatherSetup() bool {
	return s.ForestayTension < 4 && s.Cunningham < 3 &&
		s.JibHalyardTension == TensionLoose && s.MainTension < 3
}
