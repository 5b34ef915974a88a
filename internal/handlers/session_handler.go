package handlers

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"regatta/internal/models"
	"regatta/internal/services"
)

const dateLayout = "2006-01-02"

// SessionHandler handles HTTP requests for sailing sessions.
type SessionHandler struct {
	sessionService *services.SessionService
	validate       *validator.Validate
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the session routes with the Fiber app.
func (h *SessionHandler) RegisterRoutes(router fiber.Router) {
	sessionRoutes := router.Group("/sessions")
	sessionRoutes.Post("/", h.HandleCreate)
	sessionRoutes.Get("/", h.HandleList)
	sessionRoutes.Get("/analytics", h.HandleAnalytics)
	sessionRoutes.Get("/:id", h.HandleGet)
	sessionRoutes.Put("/:id", h.HandleUpdate)
	sessionRoutes.Delete("/:id", h.HandleDelete)
	sessionRoutes.Get("/:id/equipment", h.HandleGetEquipment)
	sessionRoutes.Post("/:id/settings", h.HandleCreateSettings)
}

// SessionCreateRequest represents the request body for creating a session.
type SessionCreateRequest struct {
	Date              string   `json:"date" validate:"required,datetime=2006-01-02"`
	Location          string   `json:"location" validate:"required,min=1,max=255"`
	WindSpeedMin      float64  `json:"wind_speed_min" validate:"gte=0,lte=60"`
	WindSpeedMax      float64  `json:"wind_speed_max" validate:"gte=0,lte=60"`
	WaveType          string   `json:"wave_type" validate:"required,oneof=Flat Choppy Medium Large"`
	WaveDirection     string   `json:"wave_direction" validate:"required,min=1,max=50"`
	HoursOnWater      float64  `json:"hours_on_water" validate:"required,gt=0,lte=12"`
	PerformanceRating int      `json:"performance_rating" validate:"required,min=1,max=5"`
	Notes             string   `json:"notes" validate:"omitempty,max=1000"`
	EquipmentIDs      []string `json:"equipment_ids" validate:"omitempty,dive,uuid"`
}

// SessionUpdateRequest represents the request body for updating a session.
// Absent fields are left unchanged.
type SessionUpdateRequest struct {
	Date              *string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Location          *string   `json:"location" validate:"omitempty,min=1,max=255"`
	WindSpeedMin      *float64  `json:"wind_speed_min" validate:"omitempty,gte=0,lte=60"`
	WindSpeedMax      *float64  `json:"wind_speed_max" validate:"omitempty,gte=0,lte=60"`
	WaveType          *string   `json:"wave_type" validate:"omitempty,oneof=Flat Choppy Medium Large"`
	WaveDirection     *string   `json:"wave_direction" validate:"omitempty,min=1,max=50"`
	HoursOnWater      *float64  `json:"hours_on_water" validate:"omitempty,gt=0,lte=12"`
	PerformanceRating *int      `json:"performance_rating" validate:"omitempty,min=1,max=5"`
	Notes             *string   `json:"notes" validate:"omitempty,max=1000"`
	EquipmentIDs      *[]string `json:"equipment_ids" validate:"omitempty,dive,uuid"`
}

// HandleCreate creates a new session for the authenticated user.
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	var req SessionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	date, _ := time.Parse(dateLayout, req.Date)
	session := &models.SailingSession{
		Date:              date,
		Location:          req.Location,
		WindSpeedMin:      req.WindSpeedMin,
		WindSpeedMax:      req.WindSpeedMax,
		WaveType:          models.WaveType(req.WaveType),
		WaveDirection:     req.WaveDirection,
		HoursOnWater:      req.HoursOnWater,
		PerformanceRating: req.PerformanceRating,
		Notes:             req.Notes,
		EquipmentIDs:      req.EquipmentIDs,
	}

	created, err := h.sessionService.Create(currentUserID(c), session)
	if err != nil {
		log.Printf("Error creating session: %v", err)
		return writeServiceError(c, "Could not create session", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": created})
}

// HandleList returns the authenticated user's sessions with pagination.
func (h *SessionHandler) HandleList(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	sessions, err := h.sessionService.GetUserSessions(currentUserID(c), skip, limit)
	if err != nil {
		log.Printf("Error listing sessions: %v", err)
		return writeServiceError(c, "Could not list sessions", err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

// HandleGet returns one session together with its rig settings.
func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	session, settings, err := h.sessionService.GetWithSettings(c.Params("id"), currentUserID(c))
	if err != nil {
		log.Printf("Error getting session: %v", err)
		return writeServiceError(c, "Could not get session", err)
	}
	if session == nil {
		return writeNotFoundOrDenied(c, "Session")
	}
	return c.JSON(fiber.Map{
		"session":            session,
		"equipment_settings": settings,
	})
}

// HandleGetEquipment returns the equipment used in a session.
func (h *SessionHandler) HandleGetEquipment(c *fiber.Ctx) error {
	equipment, err := h.sessionService.GetSessionEquipment(c.Params("id"), currentUserID(c))
	if err != nil {
		log.Printf("Error getting session equipment: %v", err)
		return writeServiceError(c, "Could not get session equipment", err)
	}
	if equipment == nil {
		return writeNotFoundOrDenied(c, "Session")
	}
	return c.JSON(fiber.Map{"equipment": equipment})
}

// HandleUpdate applies a partial update to a session.
func (h *SessionHandler) HandleUpdate(c *fiber.Ctx) error {
	var req SessionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	patch := models.SessionPatch{
		Location:          req.Location,
		WindSpeedMin:      req.WindSpeedMin,
		WindSpeedMax:      req.WindSpeedMax,
		WaveDirection:     req.WaveDirection,
		HoursOnWater:      req.HoursOnWater,
		PerformanceRating: req.PerformanceRating,
		Notes:             req.Notes,
		EquipmentIDs:      req.EquipmentIDs,
	}
	if req.Date != nil {
		date, _ := time.Parse(dateLayout, *req.Date)
		patch.Date = &date
	}
	if req.WaveType != nil {
		waveType := models.WaveType(*req.WaveType)
		patch.WaveType = &waveType
	}

	session, err := h.sessionService.Update(c.Params("id"), currentUserID(c), patch)
	if err != nil {
		log.Printf("Error updating session: %v", err)
		return writeServiceError(c, "Could not update session", err)
	}
	if session == nil {
		return writeNotFoundOrDenied(c, "Session")
	}
	return c.JSON(fiber.Map{"session": session})
}

// HandleDelete removes a session and reverses its equipment wear.
func (h *SessionHandler) HandleDelete(c *fiber.Ctx) error {
	deleted, err := h.sessionService.Delete(c.Params("id"), currentUserID(c))
	if err != nil {
		log.Printf("Error deleting session: %v", err)
		return writeServiceError(c, "Could not delete session", err)
	}
	if !deleted {
		return writeNotFoundOrDenied(c, "Session")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Session deleted successfully",
	})
}

// SettingsCreateRequest represents the request body for rig settings.
type SettingsCreateRequest struct {
	ForestayTension   float64 `json:"forestay_tension" validate:"gte=0,lte=10"`
	ShroudTension     float64 `json:"shroud_tension" validate:"gte=0,lte=10"`
	MainTension       float64 `json:"main_tension" validate:"gte=0,lte=10"`
	CapTension        float64 `json:"cap_tension" validate:"gte=0,lte=10"`
	LowersScale       float64 `json:"lowers_scale" validate:"gte=0,lte=10"`
	MainsScale        float64 `json:"mains_scale" validate:"gte=0,lte=10"`
	MastRake          float64 `json:"mast_rake" validate:"gte=-5,lte=30"`
	CapHole           float64 `json:"cap_hole" validate:"gte=0"`
	PreBend           float64 `json:"pre_bend" validate:"gte=-50,lte=200"`
	JibHalyardTension string  `json:"jib_halyard_tension" validate:"required,oneof=Loose Medium Tight"`
	Cunningham        float64 `json:"cunningham" validate:"gte=0,lte=10"`
	Outhaul           float64 `json:"outhaul" validate:"gte=0,lte=10"`
	Vang              float64 `json:"vang" validate:"gte=0,lte=10"`
}

// HandleCreateSettings records the rig-tuning snapshot for a session.
func (h *SessionHandler) HandleCreateSettings(c *fiber.Ctx) error {
	var req SettingsCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return writeValidationErrors(c, err)
	}

	settings := &models.EquipmentSettings{
		ForestayTension:   req.ForestayTension,
		ShroudTension:     req.ShroudTension,
		MainTension:       req.MainTension,
		CapTension:        req.CapTension,
		LowersScale:       req.LowersScale,
		MainsScale:        req.MainsScale,
		MastRake:          req.MastRake,
		CapHole:           req.CapHole,
		PreBend:           req.PreBend,
		JibHalyardTension: models.TensionLevel(req.JibHalyardTension),
		Cunningham:        req.Cunningham,
		Outhaul:           req.Outhaul,
		Vang:              req.Vang,
	}

	created, err := h.sessionService.CreateEquipmentSettings(c.Params("id"), currentUserID(c), settings)
	if err != nil {
		log.Printf("Error creating equipment settings: %v", err)
		return writeServiceError(c, "Could not create equipment settings", err)
	}
	if created == nil {
		return writeNotFoundOrDenied(c, "Session")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"equipment_settings": created})
}

// HandleAnalytics returns performance analytics, optionally date-filtered.
func (h *SessionHandler) HandleAnalytics(c *fiber.Ctx) error {
	var startDate, endDate *time.Time
	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid start_date, expected YYYY-MM-DD",
			})
		}
		startDate = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid end_date, expected YYYY-MM-DD",
			})
		}
		endDate = &parsed
	}

	analytics, err := h.sessionService.GetPerformanceAnalytics(currentUserID(c), startDate, endDate)
	if err != nil {
		log.Printf("Error computing analytics: %v", err)
		return writeServiceError(c, "Could not compute analytics", err)
	}
	return c.JSON(fiber.Map{"analytics": analytics})
}
