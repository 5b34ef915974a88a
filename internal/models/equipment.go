package models

import "time"

// EquipmentType classifies a piece of sailing gear.
type EquipmentType string

const (
	EquipmentMainsail    EquipmentType = "Mainsail"
	EquipmentJib         EquipmentType = "Jib"
	EquipmentGennaker    EquipmentType = "Gennaker"
	EquipmentMast        EquipmentType = "Mast"
	EquipmentBoom        EquipmentType = "Boom"
	EquipmentRudder      EquipmentType = "Rudder"
	EquipmentCenterboard EquipmentType = "Centerboard"
	EquipmentOther       EquipmentType = "Other"
)

// Valid reports whether the equipment type is one of the known values.
func (t EquipmentType) Valid() bool {
	switch t {
	case EquipmentMainsail, EquipmentJib, EquipmentGennaker, EquipmentMast,
		EquipmentBoom, EquipmentRudder, EquipmentCenterboard, EquipmentOther:
		return true
	}
	return false
}

// Equipment is a piece of gear owned by one user. Wear accumulates the hours
// the item has been sailed with.
type Equipment struct {
	ID           string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string        `json:"name" gorm:"type:varchar(100)"`
	Type         EquipmentType `json:"type" gorm:"type:varchar(20)"`
	Manufacturer string        `json:"manufacturer" gorm:"type:varchar(100)"`
	Model        string        `json:"model" gorm:"type:varchar(100)"`
	OwnerID      string        `json:"owner_id" gorm:"index;type:varchar(36)"`
	PurchaseDate *time.Time    `json:"purchase_date,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	Active       bool          `json:"active" gorm:"default:true"`
	Wear         float64       `json:"wear" gorm:"default:0"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// EquipmentPatch lists the mutable equipment fields. Protected attributes
// (id, owner_id, created_at) are deliberately not representable here.
type EquipmentPatch struct {
	Name         *string
	Type         *EquipmentType
	Manufacturer *string
	Model        *string
	PurchaseDate *time.Time
	Notes        *string
	Active       *bool
	Wear         *float64
}

// Validate checks every field invariant and returns the first violation.
func (e *Equipment) Validate() error {
	if len(e.Name) < 1 {
		return &ValidationError{Field: "name", Constraint: "cannot be empty"}
	}
	if len(e.Name) > 100 {
		return &ValidationError{Field: "name", Constraint: "must be at most 100 characters"}
	}
	if !e.Type.Valid() {
		return &ValidationError{Field: "type", Constraint: "must be one of: Mainsail, Jib, Gennaker, Mast, Boom, Rudder, Centerboard, Other"}
	}
	if e.Wear < 0 {
		return &ValidationError{Field: "wear", Constraint: "cannot be negative"}
	}
	return nil
}

// ApplyPatch merges the patch into the equipment and re-runs full validation.
// On failure every changed field is restored before the error is returned.
func (e *Equipment) ApplyPatch(patch EquipmentPatch) error {
	snapshot := *e

	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Type != nil {
		e.Type = *patch.Type
	}
	if patch.Manufacturer != nil {
		e.Manufacturer = *patch.Manufacturer
	}
	if patch.Model != nil {
		e.Model = *patch.Model
	}
	if patch.PurchaseDate != nil {
		e.PurchaseDate = patch.PurchaseDate
	}
	if patch.Notes != nil {
		e.Notes = *patch.Notes
	}
	if patch.Active != nil {
		e.Active = *patch.Active
	}
	if patch.Wear != nil {
		e.Wear = *patch.Wear
	}

	if err := e.Validate(); err != nil {
		*e = snapshot
		return err
	}
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Retire takes the equipment out of service. Retired gear stays attached to
// historical sessions but cannot be attached to new ones.
func (e *Equipment) Retire() {
	e.Active = false
	e.UpdatedAt = time.Now().UTC()
}

// Reactivate puts retired equipment back into service.
func (e *Equipment) Reactivate() {
	e.Active = true
	e.UpdatedAt = time.Now().UTC()
}

// AddWear records additional hours of use.
func (e *Equipment) AddWear(hours float64) error {
	if hours < 0 {
		return &ValidationError{Field: "wear", Constraint: "cannot add negative wear hours"}
	}
	e.Wear += hours
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// AgeInDays returns the days since purchase, or false when no purchase date
// is recorded.
func (e *Equipment) AgeInDays() (int, bool) {
	if e.PurchaseDate == nil {
		return 0, false
	}
	return int(time.Since(*e.PurchaseDate).Hours() / 24), true
}

// IsOld reports whether the equipment is older than thresholdDays.
func (e *Equipment) IsOld(thresholdDays int) bool {
	age, ok := e.AgeInDays()
	return ok && age > thresholdDays
}

// NeedsReplacement reports whether accumulated wear exceeds the threshold.
func (e *Equipment) NeedsReplacement(wearThreshold float64) bool {
	return e.Wear > wearThreshold
}
