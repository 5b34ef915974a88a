package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"regatta/internal/models"
)

func validSettings() *models.EquipmentSettings {
	return &models.EquipmentSettings{
		ID:                "settings-1",
		SessionID:         "session-1",
		ForestayTension:   5,
		ShroudTension:     4,
		MainTension:       5,
		CapTension:        3,
		LowersScale:       4,
		MainsScale:        5,
		MastRake:          12,
		CapHole:           2,
		PreBend:           40,
		JibHalyardTension: models.TensionMedium,
		Cunningham:        4,
		Outhaul:           5,
		Vang:              5,
	}
}

func TestEquipmentSettings_Validate(t *testing.T) {
	assert.NoError(t, validSettings().Validate())

	cases := []struct {
		name   string
		mutate func(*models.EquipmentSettings)
		field  string
	}{
		{"forestay above scale", func(s *models.EquipmentSettings) { s.ForestayTension = 11 }, "forestay_tension"},
		{"negative shroud", func(s *models.EquipmentSettings) { s.ShroudTension = -0.1 }, "shroud_tension"},
		{"vang above scale", func(s *models.EquipmentSettings) { s.Vang = 10.5 }, "vang"},
		{"negative cap hole", func(s *models.EquipmentSettings) { s.CapHole = -1 }, "cap_hole"},
		{"pre-bend out of range", func(s *models.EquipmentSettings) { s.PreBend = 201 }, "pre_bend"},
		{"rake too far aft", func(s *models.EquipmentSettings) { s.MastRake = 31 }, "mast_rake"},
		{"rake too far forward", func(s *models.EquipmentSettings) { s.MastRake = -6 }, "mast_rake"},
		{"unknown halyard tension", func(s *models.EquipmentSettings) { s.JibHalyardTension = "Slack" }, "jib_halyard_tension"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := validSettings()
			tc.mutate(settings)
			err := settings.Validate()
			var validationErr *models.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestEquipmentSettings_WeatherSetups(t *testing.T) {
	settings := validSettings()
	assert.False(t, settings.IsHeavyWeatherSetup())
	assert.False(t, settings.IsLightWeatherSetup())

	settings.ForestayTension = 8
	settings.Cunningham = 7
	settings.Vang = 8
	settings.MainTension = 7
	assert.True(t, settings.IsHeavyWeatherSetup())

	settings = validSettings()
	settings.ForestayTension = 3
	settings.Cunningham = 2
	settings.MainTension = 2
	settings.JibHalyardTension = models.TensionLoose
	assert.True(t, settings.IsLightWeatherSetup())
}
