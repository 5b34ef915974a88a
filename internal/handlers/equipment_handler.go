package handlers

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"regatta/internal/models"
	"regatta/internal/services"
)

// EquipmentHandler handles HTTP requests for the gear inventory.
type EquipmentHandler struct {
	equipmentService *services.EquipmentService
	validate         *validator.Validate
}

// NewEquipmentHandler creates a new EquipmentHandler.
func NewEquipmentHandler(equipmentService *services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentService: equipmentService,
		validate:         validator.New(),
	}
}

// RegisterRoutes registers the equipment routes with the Fiber app.
func (h *EquipmentHandler) RegisterRoutes(router fiber.Router) {
	equipmentRoutes := router.Group("/equipment")
	equipmentRoutes.Post("/", h.HandleCreate)
	equipmentRoutes.Get("/", h.HandleList)
	equipmentRoutes.Get("/statistics", h.HandleStatistics)
	equipmentRoutes.Get("/type/:type", h.HandleListByType)
	equipmentRoutes.Get("/:id", h.HandleGet)
	equipmentRoutes.Put("/:id", h.HandleUpdate)
	equipmentRoutes.Delete("/:id", h.HandleDelete)
	equipmentRoutes.Post("/:id/retire", h.HandleRetire)
	equipmentRoutes.Post("/:id/reactivate", h.HandleReactivate)
}

// EquipmentCreateRequest represents the request body for creating equipment.
type EquipmentCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=100"`
	Type         string  `json:"type" validate:"required,oneof=Mainsail Jib Gennaker Mast Boom Rudder Centerboard Other"`
	Manufacturer string  `json:"manufacturer" validate:"omitempty,max=100"`
	Model        string  `json:"model" validate:"omitempty,max=100"`
	PurchaseDate *string `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	Notes        string  `json:"notes" validate:"omitempty,max=1000"`
	Wear         float64 `json:"wear" validate:"gte=0"`
}

// EquipmentUpdateRequest represents the request body for updating equipment.
// Absent fields are left unchanged; the id, owner, and creation time cannot
// be expressed here at all.
type EquipmentUpdateRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Type         *string  `json:"type" validate:"omitempty,oneof=Mainsail Jib Gennaker Mast Boom Rudder Centerboard Other"`
	Manufacturer *string  `json:"manufacturer" validate:"omitempty,max=100"`
	Model        *string  `json:"model" validate:"omitempty,max=100"`
	PurchaseDate *string  `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	Notes        *string  `json:"notes" validate:"omitempty,max=1000"`
	Wear         *float64 `json:"wear" validate:"omitempty,gte=0"`
}

// HandleCreate adds a piece of equipment to the user's inventory.
func (h *EquipmentHandler) HandleCreate(c *fiber.Ctx) error {
	var req EquipmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	equipment := &models.Equipment{
		Name:         req.Name,
		Type:         models.EquipmentType(req.Type),
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
		Notes:        req.Notes,
		Wear:         req.Wear,
	}
	if req.PurchaseDate != nil {
		purchaseDate, _ := time.Parse(dateLayout, *req.PurchaseDate)
		equipment.PurchaseDate = &purchaseDate
	}

	created, err := h.equipmentService.Create(currentUserID(c), equipment)
	if err != nil {
		log.Printf("Error creating equipment: %v", err)
		return writeServiceError(c, "Could not create equipment", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"equipment": created})
}

// HandleList returns the user's inventory; ?active_only=true hides retired
// gear.
func (h *EquipmentHandler) HandleList(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active_only", false)

	equipment, err := h.equipmentService.GetUserEquipment(currentUserID(c), activeOnly)
	if err != nil {
		log.Printf("Error listing equipment: %v", err)
		return writeServiceError(c, "Could not list equipment", err)
	}
	return c.JSON(fiber.Map{"equipment": equipment})
}

// HandleListByType returns the user's equipment of one type.
func (h *EquipmentHandler) HandleListByType(c *fiber.Ctx) error {
	equipmentType := models.EquipmentType(c.Params("type"))
	if !equipmentType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown equipment type",
		})
	}

	equipment, err := h.equipmentService.GetByType(currentUserID(c), equipmentType)
	if err != nil {
		log.Printf("Error listing equipment by type: %v", err)
		return writeServiceError(c, "Could not list equipment", err)
	}
	return c.JSON(fiber.Map{"equipment": equipment})
}

// HandleGet returns one owned piece of equipment.
func (h *EquipmentHandler) HandleGet(c *fiber.Ctx) error {
	equipment, err := h.equipmentService.GetByID(c.Params("id"), currentUserID(c))
	if err != nil {
		log.Printf("Error getting equipment: %v", err)
		return writeServiceError(c, "Could not get equipment", err)
	}
	if equipment == nil {
		return writeNotFoundOrDenied(c, "Equipment")
	}
	return c.JSON(fiber.Map{"equipment": equipment})
}

// HandleUpdate applies a partial update to owned equipment.
func (h *EquipmentHandler) HandleUpdate(c *fiber.Ctx) error {
	var req EquipmentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	patch := models.EquipmentPatch{
		Name:         req.Name,
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
		Notes:        req.Notes,
		Wear:         req.Wear,
	}
	if req.Type != nil {
		equipmentType := models.EquipmentType(*req.Type)
		patch.Type = &equipmentType
	}
	if req.PurchaseDate != nil {
		purchaseDate, _ := time.Parse(dateLayout, *req.PurchaseDate)
		patch.PurchaseDate = &purchaseDate
	}

	equipment, err := h.equipmentService.Update(c.Params("id"), currentUserID(c), patch)
	if err != nil {
		log.Printf("Error updating equipment: %v", err)
		return writeServiceError(c, "Could not update equipment", err)
	}
	if equipment == nil {
		return writeNotFoundOrDenied(c, "Equipment")
	}
	return c.JSON(fiber.Map{"equipment": equipment})
}

// HandleRetire takes equipment out of service.
func (h *EquipmentHandler) HandleRetire(c *fiber.Ctx) error {
	return h.toggleActive(c, false)
}

// HandleReactivate puts retired equipment back into service.
func (h *EquipmentHandler) HandleReactivate(c *fiber.Ctx) error {
	return h.toggleActive(c, true)
}

func (h *EquipmentHandler) toggleActive(c *fiber.Ctx, active bool) error {
	var ok bool
	var err error
	if active {
		ok, err = h.equipmentService.Reactivate(c.Params("id"), currentUserID(c))
	} else {
		ok, err = h.equipmentService.Retire(c.Params("id"), currentUserID(c))
	}
	if err != nil {
		log.Printf("Error toggling equipment active state: %v", err)
		return writeServiceError(c, "Could not update equipment", err)
	}
	if !ok {
		return writeNotFoundOrDenied(c, "Equipment")
	}
	message := "Equipment retired"
	if active {
		message = "Equipment reactivated"
	}
	return c.JSON(fiber.Map{"success": true, "message": message})
}

// HandleDelete hard-deletes owned equipment.
func (h *EquipmentHandler) HandleDelete(c *fiber.Ctx) error {
	deleted, err := h.equipmentService.Delete(c.Params("id"), currentUserID(c))
	if err != nil {
		log.Printf("Error deleting equipment: %v", err)
		return writeServiceError(c, "Could not delete equipment", err)
	}
	if !deleted {
		return writeNotFoundOrDenied(c, "Equipment")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Equipment deleted successfully",
	})
}

// HandleStatistics summarizes the user's inventory.
func (h *EquipmentHandler) HandleStatistics(c *fiber.Ctx) error {
	stats, err := h.equipmentService.GetStatistics(currentUserID(c))
	if err != nil {
		log.Printf("Error computing equipment statistics: %v", err)
		return writeServiceError(c, "Could not compute statistics", err)
	}
	return c.JSON(fiber.Map{"statistics": stats})
}
